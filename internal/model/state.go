package model

// DocumentKey is the key of the shared aggregate in the remote store.
const DocumentKey = "restaurant_state"

// SystemState is the replicated aggregate. It is always written as a whole;
// there are no partial updates.
type SystemState struct {
	Products         []Product     `json:"products"`
	Transactions     []Transaction `json:"transactions"`
	Customers        []Customer    `json:"customers"`
	Users            []User        `json:"users"`
	Tables           []Table       `json:"tables"`
	Printers         []Printer     `json:"printers"`
	Connections      []Connection  `json:"connections"`
	LastGlobalUpdate int64         `json:"lastGlobalUpdate"`
}

// Clone returns a deep copy so callers can hold a snapshot without sharing
// slices with the replica that produced it.
func (s SystemState) Clone() SystemState {
	out := s
	out.Products = append(make([]Product, 0, len(s.Products)), s.Products...)
	out.Transactions = append(make([]Transaction, 0, len(s.Transactions)), s.Transactions...)
	out.Users = append(make([]User, 0, len(s.Users)), s.Users...)
	out.Printers = append(make([]Printer, 0, len(s.Printers)), s.Printers...)
	out.Connections = append(make([]Connection, 0, len(s.Connections)), s.Connections...)

	out.Customers = make([]Customer, len(s.Customers))
	for i, c := range s.Customers {
		out.Customers[i] = c.Clone()
	}
	out.Tables = make([]Table, len(s.Tables))
	for i, t := range s.Tables {
		out.Tables[i] = t.Clone()
	}
	return out
}

// WithoutPins returns a copy whose users carry no PIN hash, for anything
// leaving the terminal.
func (s SystemState) WithoutPins() SystemState {
	out := s
	out.Users = make([]User, len(s.Users))
	for i, u := range s.Users {
		u.Pin = ""
		out.Users[i] = u
	}
	return out
}

// Normalize replaces nil collections with empty ones. Documents written by
// other clients may omit empty arrays.
func (s *SystemState) Normalize() {
	if s.Products == nil {
		s.Products = []Product{}
	}
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Customers == nil {
		s.Customers = []Customer{}
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Tables == nil {
		s.Tables = []Table{}
	}
	if s.Printers == nil {
		s.Printers = []Printer{}
	}
	if s.Connections == nil {
		s.Connections = []Connection{}
	}
	for i := range s.Tables {
		if s.Tables[i].OrderItems == nil {
			s.Tables[i].OrderItems = []OrderItem{}
		}
	}
}

// FindTable returns the index of the table with the given id, or -1.
func (s SystemState) FindTable(id int) int {
	for i, t := range s.Tables {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// FindProduct looks a product up by id.
func (s SystemState) FindProduct(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

package operator

import "go-restaurant-sync/internal/model"

// upsert replaces the element with the same id or appends item.
func upsert[T any](list []T, item T, id func(T) string) []T {
	out := make([]T, 0, len(list)+1)
	replaced := false
	for _, existing := range list {
		if id(existing) == id(item) {
			out = append(out, item)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, item)
	}
	return out
}

// SaveProduct is the direct inventory edit. It is the only path that changes
// Stock and SalesVolume.
func SaveProduct(s model.SystemState, _ Env, p model.Product) Patch {
	if p.ID == "" {
		return miss("product id is empty")
	}
	return Patch{Products: upsert(s.Products, p, func(p model.Product) string { return p.ID })}
}

// SaveCustomer creates or edits a CRM record. Spent and Points of an existing
// customer are kept: they only move at payment time.
func SaveCustomer(s model.SystemState, _ Env, c model.Customer) Patch {
	if c.ID == "" {
		return miss("customer id is empty")
	}
	for _, existing := range s.Customers {
		if existing.ID == c.ID {
			c.Spent = existing.Spent
			c.Points = existing.Points
			if c.LastVisit == "" {
				c.LastVisit = existing.LastVisit
			}
			break
		}
	}
	if c.Prefs == nil {
		c.Prefs = []string{}
	}
	return Patch{Customers: upsert(s.Customers, c.Clone(), func(c model.Customer) string { return c.ID })}
}

// SaveUser creates or edits a staff member. An empty Pin keeps the existing
// hash.
func SaveUser(s model.SystemState, _ Env, u model.User) Patch {
	if u.ID == "" {
		return miss("user id is empty")
	}
	if u.Pin == "" {
		for _, existing := range s.Users {
			if existing.ID == u.ID {
				u.Pin = existing.Pin
				break
			}
		}
	}
	return Patch{Users: upsert(s.Users, u, func(u model.User) string { return u.ID })}
}

func SavePrinter(s model.SystemState, _ Env, p model.Printer) Patch {
	if p.ID == "" {
		return miss("printer id is empty")
	}
	return Patch{Printers: upsert(s.Printers, p, func(p model.Printer) string { return p.ID })}
}

func SaveConnection(s model.SystemState, _ Env, c model.Connection) Patch {
	if c.ID == "" {
		return miss("connection id is empty")
	}
	return Patch{Connections: upsert(s.Connections, c, func(c model.Connection) string { return c.ID })}
}

package model

// Role is a staff role. Each role owns a fixed set of sections.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleWaiter  Role = "WAITER"
	RoleChef    Role = "CHEF"
)

// Section is an area of the terminal UI.
type Section string

const (
	SectionPOS       Section = "POS"
	SectionKDS       Section = "KDS"
	SectionInventory Section = "INVENTORY"
	SectionCRM       Section = "CRM"
	SectionDashboard Section = "DASHBOARD"
	SectionSettings  Section = "SETTINGS"
)

// AllSections lists every section in menu order.
var AllSections = []Section{
	SectionPOS,
	SectionKDS,
	SectionInventory,
	SectionCRM,
	SectionDashboard,
	SectionSettings,
}

// roleSections is the capability table.
var roleSections = map[Role]map[Section]bool{
	RoleAdmin: {
		SectionPOS: true, SectionKDS: true, SectionInventory: true,
		SectionCRM: true, SectionDashboard: true, SectionSettings: true,
	},
	RoleManager: {
		SectionPOS: true, SectionKDS: true, SectionInventory: true,
		SectionCRM: true, SectionDashboard: true,
	},
	RoleWaiter: {SectionPOS: true, SectionCRM: true},
	RoleChef:   {SectionKDS: true},
}

// CanAccess is pure set membership; unknown roles see nothing.
func (r Role) CanAccess(section Section) bool {
	return roleSections[r][section]
}

// Sections returns the sections the role can open, in menu order.
func (r Role) Sections() []Section {
	out := []Section{}
	for _, s := range AllSections {
		if r.CanAccess(s) {
			out = append(out, s)
		}
	}
	return out
}

package model

import "github.com/shopspring/decimal"

// Customer is a CRM record. Spent and Points only grow, at payment time.
type Customer struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Spent     decimal.Decimal `json:"spent"`
	Points    int64           `json:"points"`
	LastVisit string          `json:"lastVisit"`
	Prefs     []string        `json:"prefs"`
}

func (c Customer) Clone() Customer {
	out := c
	out.Prefs = append(make([]string, 0, len(c.Prefs)), c.Prefs...)
	return out
}

// PointsFor returns the loyalty points earned for a payment of amount:
// one point per full 10 spent.
func PointsFor(amount decimal.Decimal) int64 {
	if amount.IsNegative() {
		return 0
	}
	return amount.Div(decimal.NewFromInt(10)).Floor().IntPart()
}

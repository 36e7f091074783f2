package domain

import "strings"

// Address holds the location fields of a stop as stored for an order or agent.
// Only the joined string is used: it keys travel metric lookups.
type Address struct {
	Line1 string
	Line2 string
	City  string
	State string
	Zip   string
}

// Full joins the address fields with single spaces, skipping empty fields.
func (a Address) Full() string {
	return strings.Join(strings.Fields(strings.Join([]string{a.Line1, a.Line2, a.City, a.State, a.Zip}, " ")), " ")
}

// Represents a delivery stop or the depot it is served from.
// A stop ID is either an order id or, for the depot, an agent id.
type Stop struct {
	ID      string
	Address Address
	IsDepot bool
}

// StopSet is the input of one planning request: a depot and the orders
// to deliver from it on a given date.
type StopSet struct {
	Agent  string
	Date   string
	Depot  Stop
	Orders []Stop
}

package domain

import "time"

// Location captures structured geo metadata attached to a transaction.
type Location struct {
	City    string
	Country string
	Lat     float64
	Lng     float64
}

// Empty reports whether no location field is populated.
func (l Location) Empty() bool {
	return l.City == "" && l.Country == "" && l.Lat == 0 && l.Lng == 0
}

// Transaction models a transaction node in the graph.
type Transaction struct {
	ID          string
	FromUserID  string
	ToUserID    string
	Amount      float64
	Currency    string
	Status      string
	Timestamp   time.Time
	IPAddress   string
	DeviceID    string
	Location    *Location
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

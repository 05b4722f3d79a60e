package domain

import "time"

// Address captures the structured address fields stored on a user.
type Address struct {
	Street  string
	City    string
	Country string
}

// Empty reports whether no address field is populated.
func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.Country == ""
}

// PaymentMethod represents a payment instrument associated with a user.
type PaymentMethod struct {
	Type     string
	Last4    string
	Provider string
}

// Empty reports whether no payment method field is populated.
func (pm PaymentMethod) Empty() bool {
	return pm.Type == "" && pm.Last4 == "" && pm.Provider == ""
}

// User aggregates the canonical user node data.
type User struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Address        *Address
	PaymentMethods []PaymentMethod
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

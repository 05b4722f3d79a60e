package domain

import "encoding/json"

// Canonical serialization backs the byte-equality matching used by link
// inference. Values are rendered as JSON maps, which encoding/json emits with
// sorted keys, and empty fields are omitted, so two structurally equal values
// always serialize to the same bytes regardless of how they were supplied.

// Canonical returns the deterministic serialized form of the address.
func (a Address) Canonical() string {
	m := map[string]any{}
	if a.Street != "" {
		m["street"] = a.Street
	}
	if a.City != "" {
		m["city"] = a.City
	}
	if a.Country != "" {
		m["country"] = a.Country
	}
	return marshalCanonical(m)
}

// Canonical returns the deterministic serialized form of the payment method.
func (pm PaymentMethod) Canonical() string {
	m := map[string]any{}
	if pm.Type != "" {
		m["type"] = pm.Type
	}
	if pm.Last4 != "" {
		m["last4"] = pm.Last4
	}
	if pm.Provider != "" {
		m["provider"] = pm.Provider
	}
	return marshalCanonical(m)
}

// Canonical returns the deterministic serialized form of the location.
func (l Location) Canonical() string {
	m := map[string]any{}
	if l.City != "" {
		m["city"] = l.City
	}
	if l.Country != "" {
		m["country"] = l.Country
	}
	if l.Lat != 0 {
		m["lat"] = l.Lat
	}
	if l.Lng != 0 {
		m["lng"] = l.Lng
	}
	return marshalCanonical(m)
}

// ParseAddress reconstructs an address from its canonical form. It returns
// nil when the input is empty or holds no fields.
func ParseAddress(s string) *Address {
	if s == "" {
		return nil
	}
	var a struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil
	}
	addr := Address{Street: a.Street, City: a.City, Country: a.Country}
	if addr.Empty() {
		return nil
	}
	return &addr
}

// ParsePaymentMethod reconstructs a payment method from its canonical form.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	if s == "" {
		return PaymentMethod{}, false
	}
	var pm struct {
		Type     string `json:"type"`
		Last4    string `json:"last4"`
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal([]byte(s), &pm); err != nil {
		return PaymentMethod{}, false
	}
	method := PaymentMethod{Type: pm.Type, Last4: pm.Last4, Provider: pm.Provider}
	return method, !method.Empty()
}

// ParseLocation reconstructs a location from its canonical form. It returns
// nil when the input is empty or holds no fields.
func ParseLocation(s string) *Location {
	if s == "" {
		return nil
	}
	var l struct {
		City    string  `json:"city"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lng     float64 `json:"lng"`
	}
	if err := json.Unmarshal([]byte(s), &l); err != nil {
		return nil
	}
	loc := Location{City: l.City, Country: l.Country, Lat: l.Lat, Lng: l.Lng}
	if loc.Empty() {
		return nil
	}
	return &loc
}

func marshalCanonical(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

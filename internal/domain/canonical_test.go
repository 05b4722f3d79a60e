package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressCanonicalIsDeterministic(t *testing.T) {
	a := Address{Street: "123 Market St", City: "San Francisco", Country: "US"}
	b := Address{Country: "US", Street: "123 Market St", City: "San Francisco"}

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.NotEmpty(t, a.Canonical())
}

func TestAddressCanonicalOmitsEmptyFields(t *testing.T) {
	partial := Address{City: "Austin"}
	full := Address{City: "Austin", Street: ""}

	assert.Equal(t, partial.Canonical(), full.Canonical())
	assert.NotContains(t, partial.Canonical(), "street")
}

func TestAddressCanonicalEmpty(t *testing.T) {
	assert.Empty(t, Address{}.Canonical())
}

func TestAddressRoundTrip(t *testing.T) {
	original := Address{Street: "5 Oak Ln", City: "Denver", Country: "US"}

	parsed := ParseAddress(original.Canonical())
	require.NotNil(t, parsed)
	assert.Equal(t, original, *parsed)
}

func TestParseAddressRejectsGarbage(t *testing.T) {
	assert.Nil(t, ParseAddress(""))
	assert.Nil(t, ParseAddress("not json"))
	assert.Nil(t, ParseAddress("{}"))
}

func TestPaymentMethodCanonicalDistinguishesValues(t *testing.T) {
	visa := PaymentMethod{Type: "card", Last4: "1111", Provider: "visa"}
	amex := PaymentMethod{Type: "card", Last4: "1111", Provider: "amex"}

	assert.NotEqual(t, visa.Canonical(), amex.Canonical())
}

func TestPaymentMethodRoundTrip(t *testing.T) {
	original := PaymentMethod{Type: "wallet", Provider: "paypal"}

	parsed, ok := ParsePaymentMethod(original.Canonical())
	require.True(t, ok)
	assert.Equal(t, original, parsed)
}

func TestLocationCanonicalTreatsZeroAsAbsent(t *testing.T) {
	loc := Location{City: "Miami", Country: "US"}

	canonical := loc.Canonical()
	assert.NotContains(t, canonical, "lat")
	assert.NotContains(t, canonical, "lng")

	parsed := ParseLocation(canonical)
	require.NotNil(t, parsed)
	assert.Equal(t, loc, *parsed)
}

func TestLocationCanonicalEmpty(t *testing.T) {
	assert.Empty(t, Location{}.Canonical())
	assert.Nil(t, ParseLocation(""))
}

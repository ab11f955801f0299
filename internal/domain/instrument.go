package domain

import "fmt"

// Instrument a watched market instrument.
type Instrument struct {
	// Name is the display name used in alerts, e.g. XAUUSD.
	Name string
	// Code is the provider-specific identifier, e.g. XAU_USD.
	Code string
}

// String returns the string representation.
func (i Instrument) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Code)
}

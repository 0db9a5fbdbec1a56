package enums

import (
	"fmt"
	"strings"
)

// Carrier maps to the carrier check constraint on quote_requests.
type Carrier string

const (
	CarrierSKT    Carrier = "SKT"
	CarrierKT     Carrier = "KT"
	CarrierLGU    Carrier = "LGU+"
	CarrierBudget Carrier = "알뜰폰"
)

var validCarriers = []Carrier{
	CarrierSKT,
	CarrierKT,
	CarrierLGU,
	CarrierBudget,
}

// IsValid reports whether the value matches the canonical carrier set.
func (c Carrier) IsValid() bool {
	for _, candidate := range validCarriers {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCarrier converts raw input into Carrier. Display labels that differ
// from the stored value ("LG U+") normalize to the canonical form.
func ParseCarrier(value string) (Carrier, error) {
	normalized := strings.TrimSpace(value)
	if strings.EqualFold(normalized, "LG U+") {
		normalized = string(CarrierLGU)
	}
	for _, candidate := range validCarriers {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid carrier %q", value)
}

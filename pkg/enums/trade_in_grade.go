package enums

import "fmt"

// TradeInGrade is the condition grade for a trade-in handset.
type TradeInGrade string

const (
	TradeInGradeS TradeInGrade = "S"
	TradeInGradeA TradeInGrade = "A"
	TradeInGradeB TradeInGrade = "B"
	TradeInGradeC TradeInGrade = "C"
)

var validTradeInGrades = []TradeInGrade{
	TradeInGradeS,
	TradeInGradeA,
	TradeInGradeB,
	TradeInGradeC,
}

// IsValid reports whether the value is a known TradeInGrade.
func (g TradeInGrade) IsValid() bool {
	for _, candidate := range validTradeInGrades {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseTradeInGrade converts raw input into a TradeInGrade.
func ParseTradeInGrade(value string) (TradeInGrade, error) {
	for _, candidate := range validTradeInGrades {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trade-in grade %q", value)
}

package enums

import "fmt"

// DeviceBrand maps to the brand check constraint on devices.
type DeviceBrand string

const (
	DeviceBrandSamsung DeviceBrand = "samsung"
	DeviceBrandApple   DeviceBrand = "apple"
	DeviceBrandGoogle  DeviceBrand = "google"
	DeviceBrandOther   DeviceBrand = "other"
)

var validDeviceBrands = []DeviceBrand{
	DeviceBrandSamsung,
	DeviceBrandApple,
	DeviceBrandGoogle,
	DeviceBrandOther,
}

// IsValid reports whether the value is a known DeviceBrand.
func (b DeviceBrand) IsValid() bool {
	for _, candidate := range validDeviceBrands {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseDeviceBrand converts raw input into a DeviceBrand.
func ParseDeviceBrand(value string) (DeviceBrand, error) {
	for _, candidate := range validDeviceBrands {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device brand %q", value)
}

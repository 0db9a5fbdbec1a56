package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray is a list of strings persisted as JSONB, used for device
// storage and color option lists.
type StringArray []string

// Value marshals the slice into JSON for Postgres.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the slice.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("stringarray: unsupported scan type %T", value)
	}

	var result StringArray
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*a = result
	return nil
}

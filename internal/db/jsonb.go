package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray is a []string stored as a JSONB array.
type StringArray []string

// Scan implements sql.Scanner for StringArray
func (s *StringArray) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = []string{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	out := []string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// Value implements driver.Valuer for StringArray
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// jsonArray converts a slice for a JSONB column, never producing JSON null.
func jsonArray(values []string) StringArray {
	if values == nil {
		return StringArray{}
	}
	return StringArray(values)
}

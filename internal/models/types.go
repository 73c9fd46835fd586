package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CurrencySet is a list of ISO 4217 codes stored as a JSON array column.
type CurrencySet []string

// Value implements the driver.Valuer interface
func (c CurrencySet) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (c *CurrencySet) Scan(value interface{}) error {
	if value == nil {
		*c = CurrencySet{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal currency set:", value))
	}

	if len(bytes) == 0 {
		*c = CurrencySet{}
		return nil
	}

	var result []string
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*c = CurrencySet(result).Normalize()
	return nil
}

// Normalize upper-cases codes and drops blanks and duplicates, keeping order.
func (c CurrencySet) Normalize() CurrencySet {
	seen := make(map[string]struct{}, len(c))
	out := make(CurrencySet, 0, len(c))
	for _, code := range c {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

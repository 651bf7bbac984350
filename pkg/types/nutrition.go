package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Nutrient is a single measured value on a product label.
type Nutrient struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// NutritionalInfo maps a nutrient name (e.g. "calories") to its measurement.
// It is persisted as a JSON document.
type NutritionalInfo map[string]Nutrient

// Value marshals the map into JSON text. A nil map is stored as "{}".
func (n NutritionalInfo) Value() (driver.Value, error) {
	if n == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]Nutrient(n))
	if err != nil {
		return nil, fmt.Errorf("nutritional info: %w", err)
	}
	return string(raw), nil
}

// Scan decodes a JSON document produced by Value.
func (n *NutritionalInfo) Scan(value interface{}) error {
	if value == nil {
		*n = NutritionalInfo{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("nutritional info: unsupported type %T", value)
	}
	if len(raw) == 0 {
		*n = NutritionalInfo{}
		return nil
	}
	decoded := map[string]Nutrient{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("nutritional info: %w", err)
	}
	*n = decoded
	return nil
}

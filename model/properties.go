package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Properties represents the JSONB properties column of a catalog entity
type Properties map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (p Properties) Value() (driver.Value, error) {
	return p.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (p *Properties) Scan(value interface{}) error {
	return p.Unmarshal(value)
}

// Marshal converts Properties to JSON bytes
func (p Properties) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal converts JSON bytes or Properties to Properties
func (p *Properties) Unmarshal(value interface{}) error {
	if value == nil {
		*p = Properties{}
		return nil
	}

	if s, ok := value.(Properties); ok {
		*p = s
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("error in byte assertion: %w", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, p)
}

package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EntityType discriminates catalog rows. The catalog is a flat sum type:
// Section and WorkType drive resolution, Note and Standard only surface in
// messages and counts.
type EntityType string

const (
	EntityTypeSection  EntityType = "Section"
	EntityTypeWorkType EntityType = "WorkType"
	EntityTypeNote     EntityType = "Note"
	EntityTypeStandard EntityType = "Standard"
)

// Entity represents one catalog row. A WorkType belongs to the Section whose
// id equals SourceSection; there is no enforced foreign key, the association
// is by matching string id.
type Entity struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Type          EntityType `json:"entity_type"`
	SourceSection string     `json:"source_section,omitempty"`
	Properties    Properties `json:"properties,omitempty"`
	Embedding     []float32  `json:"embedding,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
	Score      int     `json:"score,omitempty"`
}

// SubSection returns the sub_section grouping value, or "" when the entity
// is not grouped. Sub sections are never first-class entities, only a shared
// property value.
func (e *Entity) SubSection() string {
	if e.Properties == nil {
		return ""
	}
	if s, ok := e.Properties["sub_section"].(string); ok {
		return s
	}
	return ""
}

// SubSectionNo returns the ordering number of the entity's sub_section
// group. Entities without one sort last.
func (e *Entity) SubSectionNo() int {
	if e.Properties == nil {
		return 99
	}
	switch v := e.Properties["sub_section_no"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 99
}

// Alias returns the korean_alias property, the alternate search name a
// WorkType can be matched under.
func (e *Entity) Alias() string {
	if e.Properties == nil {
		return ""
	}
	if s, ok := e.Properties["korean_alias"].(string); ok {
		return s
	}
	return ""
}

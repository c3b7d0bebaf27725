package model

import "github.com/google/uuid"

// OptionType tells the caller what a clarification option drills into.
type OptionType string

const (
	OptionTypeSection  OptionType = "section"
	OptionTypeWorkType OptionType = "worktype"
	OptionTypeFullView OptionType = "full_view"
)

// Option is one selectable clarification choice. Query is re-submittable
// text; EntityID is set for work type options, SectionID for section and
// full view options (sub_section encoded via SectionScope).
type Option struct {
	Label         string     `json:"label"`
	Query         string     `json:"query"`
	EntityID      uuid.UUID  `json:"entity_id,omitempty"`
	SectionID     string     `json:"section_id,omitempty"`
	SourceSection string     `json:"source_section,omitempty"`
	Type          OptionType `json:"option_type"`
}

// FilterAxis is one specification dimension inferred from option labels,
// e.g. nominal diameter, exposed for UI filtering.
type FilterAxis struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// SelectorItem is one option of the faceted selector panel with its parsed
// specification values.
type SelectorItem struct {
	Label         string            `json:"label"`
	Query         string            `json:"query"`
	EntityID      uuid.UUID         `json:"entity_id,omitempty"`
	SectionID     string            `json:"section_id,omitempty"`
	SourceSection string            `json:"source_section,omitempty"`
	Type          OptionType        `json:"option_type"`
	Specs         map[string]string `json:"specs"`
}

// SelectorPanel is the faceted specification selector built when a plain
// option list gets too long.
type SelectorPanel struct {
	Title         string         `json:"title"`
	Filters       []FilterAxis   `json:"filters"`
	Items         []SelectorItem `json:"items"`
	OriginalQuery string         `json:"original_query"`
}

// ClarifyResult is the user-facing clarification: a message, the options
// that actually exist in the catalog, and an optional selector panel.
type ClarifyResult struct {
	Message  string         `json:"message"`
	Options  []Option       `json:"options"`
	Selector *SelectorPanel `json:"selector,omitempty"`
}

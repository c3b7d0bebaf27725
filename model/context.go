package model

import "strings"

// Level is the terminal classification of a resolution call. Exactly one
// level is produced per call.
type Level string

const (
	// LevelMultiSection means candidates span more than one section.
	LevelMultiSection Level = "multi_section"
	// LevelSubSectionDrill means one section with enough work types that its
	// sub_section groups should be offered first.
	LevelSubSectionDrill Level = "sub_section"
	// LevelWorkTypeMany means one section with more than three work types
	// and no usable sub_section grouping.
	LevelWorkTypeMany Level = "worktype_many"
	// LevelWorkTypeFew means one section context with one to three work
	// types, close enough to answer or list directly.
	LevelWorkTypeFew Level = "worktype_few"
	// LevelEmpty means no candidates were found.
	LevelEmpty Level = "empty"
)

// ResolveContext is the per-call input of a resolution. It is created fresh
// per call; the engine never stores it.
type ResolveContext struct {
	// WorkName is the canonical work item name extracted upstream, "" when
	// the caller only has keywords.
	WorkName string `json:"work_name,omitempty"`
	// Keywords are the remaining extracted search terms.
	Keywords []string `json:"keywords,omitempty"`
	// RawQuery is the original user text, used to re-derive terms when the
	// extracted WorkName is unusable.
	RawQuery string `json:"raw_query,omitempty"`
	// Scope restricts resolution to a previously chosen section.
	Scope SectionScope `json:"scope,omitempty"`
	// PreMatchedSections injects section candidates found by an upstream
	// vector search so strategy one does not query the store again.
	PreMatchedSections []*Entity `json:"-"`
	// AutoResolve lets Resolve return a ResolvedEntitySet instead of a
	// clarification when exactly one work type remains.
	AutoResolve bool `json:"auto_resolve,omitempty"`
}

// Breadcrumb is the department/chapter/title path of a section, resolved
// from the source document metadata.
type Breadcrumb struct {
	Department string `json:"department"`
	Chapter    string `json:"chapter"`
	Title      string `json:"title"`
}

// Path renders the breadcrumb as "department > chapter > title", skipping
// levels that did not resolve.
func (b Breadcrumb) Path() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{b.Department, b.Chapter, b.Title} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " > ")
}

// ChildSection is a section found by prefix lookup under a parent section.
type ChildSection struct {
	SectionID  string `json:"section_id"`
	Title      string `json:"title"`
	Department string `json:"department"`
}

// ResolveResult is the classified output of a resolution call, the input of
// the clarification presenter.
type ResolveResult struct {
	Level Level `json:"level"`

	Sections  []*Entity `json:"sections"`
	WorkTypes []*Entity `json:"work_types"`
	// SubSectionGroups maps sub_section name to its work types; set only for
	// LevelSubSectionDrill. GroupOrder preserves the presentation order.
	SubSectionGroups map[string][]*Entity `json:"sub_section_groups,omitempty"`
	GroupOrder       []string             `json:"group_order,omitempty"`

	// Breadcrumbs maps section id to its resolved path metadata.
	Breadcrumbs map[string]Breadcrumb `json:"breadcrumbs,omitempty"`

	// SectionPath, SectionName and PrimarySectionID describe the single
	// section context when one exists.
	SectionPath      string `json:"section_path,omitempty"`
	SectionName      string `json:"section_name,omitempty"`
	PrimarySectionID string `json:"primary_section_id,omitempty"`

	// FreeTextResults holds the strategy five candidates so the classifier
	// can give them precedence.
	FreeTextResults []*Entity `json:"free_text_results,omitempty"`
	// MatchedSectionIDs is the set of section ids found by strategy one.
	MatchedSectionIDs map[string]bool `json:"-"`

	// ChildSections holds the prefix lookup results of a scoped call.
	ChildSections []*ChildSection `json:"child_sections,omitempty"`
	// SubFilter echoes the sub_section filter of a scoped call.
	SubFilter string `json:"sub_filter,omitempty"`
	// NoteCount is the auxiliary note count probed for the empty level.
	NoteCount int `json:"note_count,omitempty"`

	// SearchTerms echoes the normalized terms the call ran with.
	SearchTerms []string `json:"search_terms,omitempty"`

	// EmptyQuery marks a call that carried no usable terms at all, so the
	// presenter can ask for a new query instead of reporting a miss.
	EmptyQuery bool `json:"empty_query,omitempty"`
}

// ResolvedEntitySet is the direct answer form of Resolve, returned only when
// exactly one work type remains and the caller asked to skip clarification.
type ResolvedEntitySet struct {
	WorkTypes []*Entity `json:"work_types"`
	SectionID string    `json:"section_id,omitempty"`
}

// Resolution is the output of Resolve. Exactly one of Resolved and Clarify
// is set.
type Resolution struct {
	Level    Level              `json:"level"`
	Resolved *ResolvedEntitySet `json:"resolved,omitempty"`
	Clarify  *ClarifyResult     `json:"clarify,omitempty"`
}

package resolve

import (
	"context"
	"errors"

	"github.com/jkwon/costbook/model"
)

// ErrStoreUnavailable is returned when every cascade strategy failed
// against the entity store and no candidate could be produced. A partial
// store failure only degrades the failing strategy.
var ErrStoreUnavailable = errors.New("entity store unavailable")

// Store is the entity store consumed by the resolution engine. The engine
// only reads; all entities are created and owned by the store. Pattern
// arguments are SQL LIKE patterns including wildcards, plain arguments are
// raw terms.
type Store interface {
	// SectionsByNamePattern returns sections matching the pattern or any
	// synonym pattern.
	SectionsByNamePattern(ctx context.Context, pattern string, synonymPatterns []string) ([]*model.Entity, error)
	// SectionsByAllTokens returns sections whose name matches every token
	// pattern.
	SectionsByAllTokens(ctx context.Context, tokenPatterns []string) ([]*model.Entity, error)
	// WorkTypesBySection returns the work types of one section.
	WorkTypesBySection(ctx context.Context, sectionID string) ([]*model.Entity, error)
	// WorkTypesByNamePattern returns work types whose name or alias
	// property matches any pattern.
	WorkTypesByNamePattern(ctx context.Context, patterns []string) ([]*model.Entity, error)
	// EntitiesByKeyword returns work types and sections matching one
	// keyword in name or alias.
	EntitiesByKeyword(ctx context.Context, keyword string) ([]*model.Entity, error)
	// ByFreeText searches the underlying source document text for the
	// compound terms, in order, and maps matched documents back to their
	// work types, or their sections when no work types exist.
	ByFreeText(ctx context.Context, compoundTerms []string) ([]*model.Entity, error)
	// CountNotes counts the auxiliary notes of a section.
	CountNotes(ctx context.Context, sectionID string) (int, error)
	// Breadcrumb returns the department/chapter/title path of a section,
	// nil when unknown.
	Breadcrumb(ctx context.Context, sectionID string) (*model.Breadcrumb, error)
	// Breadcrumbs resolves many breadcrumbs at once, keyed by section id.
	Breadcrumbs(ctx context.Context, sectionIDs []string) (map[string]model.Breadcrumb, error)
	// ChildSections returns sections whose id textually extends the prefix.
	ChildSections(ctx context.Context, prefix string, department string) ([]*model.ChildSection, error)
}

package database

import (
	"context"

	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
)

// Result size limits of the catalog store. Wide enough for the biggest real
// sections, narrow enough to keep a single resolution cheap.
const (
	maxSections          = 10
	maxWorkTypes         = 200
	maxPerKeyword        = 10
	maxFreeTextWorkTypes = 15
	maxFreeTextSections  = 10
	maxChildWorkTypes    = 50
	maxChildSections     = 20
)

// CatalogStore composes the entity and chunk handlers into the read-only
// store the resolution engine consumes.
type CatalogStore struct {
	entities EntitiesDBHandlerFunctions
	chunks   ChunksDBHandlerFunctions
}

// NewCatalogStore creates a new catalog store over existing handlers.
func NewCatalogStore(entities EntitiesDBHandlerFunctions, chunks ChunksDBHandlerFunctions) *CatalogStore {
	return &CatalogStore{
		entities: entities,
		chunks:   chunks,
	}
}

func (s *CatalogStore) SectionsByNamePattern(ctx context.Context, pattern string, synonymPatterns []string) ([]*model.Entity, error) {
	return s.entities.SelectSectionsByNamePattern(ctx, pattern, synonymPatterns, maxSections)
}

func (s *CatalogStore) SectionsByAllTokens(ctx context.Context, tokenPatterns []string) ([]*model.Entity, error) {
	return s.entities.SelectSectionsByAllTokens(ctx, tokenPatterns, maxSections)
}

func (s *CatalogStore) WorkTypesBySection(ctx context.Context, sectionID string) ([]*model.Entity, error) {
	return s.entities.SelectWorkTypesBySection(ctx, sectionID, maxWorkTypes)
}

func (s *CatalogStore) WorkTypesByNamePattern(ctx context.Context, patterns []string) ([]*model.Entity, error) {
	return s.entities.SelectWorkTypesByNamePatterns(ctx, patterns, maxWorkTypes)
}

func (s *CatalogStore) EntitiesByKeyword(ctx context.Context, keyword string) ([]*model.Entity, error) {
	return s.entities.SelectEntitiesByKeyword(ctx, keyword, maxPerKeyword)
}

// ByFreeText searches the catalog source text for the compound terms in
// order, stopping at the first one with hits, and maps the matched sections
// back to their work types, or to the sections themselves when none of them
// carries work types.
func (s *CatalogStore) ByFreeText(ctx context.Context, compoundTerms []string) ([]*model.Entity, error) {
	for _, term := range compoundTerms {
		matches, err := s.chunks.SelectSectionsByText(ctx, "%"+term+"%", maxFreeTextSections)
		if err != nil {
			return nil, helper.NewError("searching catalog text", err)
		}
		if len(matches) == 0 {
			continue
		}

		sectionIDs := make([]string, 0, len(matches))
		for _, m := range matches {
			sectionIDs = append(sectionIDs, m.SectionID)
		}

		workTypes, err := s.entities.SelectEntitiesBySections(ctx, sectionIDs, model.EntityTypeWorkType, maxFreeTextWorkTypes)
		if err != nil {
			return nil, helper.NewError("loading work types of matched text", err)
		}
		if len(workTypes) > 0 {
			return workTypes, nil
		}

		sections, err := s.entities.SelectEntitiesBySections(ctx, sectionIDs, model.EntityTypeSection, maxFreeTextSections)
		if err != nil {
			return nil, helper.NewError("loading sections of matched text", err)
		}
		return sections, nil
	}
	return nil, nil
}

func (s *CatalogStore) CountNotes(ctx context.Context, sectionID string) (int, error) {
	return s.entities.CountNotes(ctx, sectionID)
}

func (s *CatalogStore) Breadcrumb(ctx context.Context, sectionID string) (*model.Breadcrumb, error) {
	return s.chunks.SelectBreadcrumb(ctx, sectionID)
}

func (s *CatalogStore) Breadcrumbs(ctx context.Context, sectionIDs []string) (map[string]model.Breadcrumb, error) {
	return s.chunks.SelectBreadcrumbs(ctx, sectionIDs)
}

// ChildSections lists the sections one level under the given id, matched by
// the textual id prefix within the same department.
func (s *CatalogStore) ChildSections(ctx context.Context, prefix string, department string) ([]*model.ChildSection, error) {
	return s.chunks.SelectChildSections(ctx, prefix+"-", department, maxChildSections)
}

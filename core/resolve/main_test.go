package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jkwon/costbook/model"
)

// fakeStore is an in-memory Store with per-method stubs and a call counter,
// used by the engine and strategy tests.
type fakeStore struct {
	mu    sync.Mutex
	calls int

	sections         []*model.Entity
	sectionsByTokens []*model.Entity
	workTypes        map[string][]*model.Entity
	byNamePattern    []*model.Entity
	byKeyword        map[string][]*model.Entity
	freeText         []*model.Entity
	notes            map[string]int
	breadcrumbs      map[string]model.Breadcrumb
	children         map[string][]*model.ChildSection

	failAll      bool
	failKeywords map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workTypes:    map[string][]*model.Entity{},
		byKeyword:    map[string][]*model.Entity{},
		notes:        map[string]int{},
		breadcrumbs:  map[string]model.Breadcrumb{},
		children:     map[string][]*model.ChildSection{},
		failKeywords: map[string]bool{},
	}
}

func (f *fakeStore) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) err() error {
	if f.failAll {
		return fmt.Errorf("store down")
	}
	return nil
}

func (f *fakeStore) SectionsByNamePattern(ctx context.Context, pattern string, synonymPatterns []string) ([]*model.Entity, error) {
	f.count()
	return f.sections, f.err()
}

func (f *fakeStore) SectionsByAllTokens(ctx context.Context, tokenPatterns []string) ([]*model.Entity, error) {
	f.count()
	return f.sectionsByTokens, f.err()
}

func (f *fakeStore) WorkTypesBySection(ctx context.Context, sectionID string) ([]*model.Entity, error) {
	f.count()
	return f.workTypes[sectionID], f.err()
}

func (f *fakeStore) WorkTypesByNamePattern(ctx context.Context, patterns []string) ([]*model.Entity, error) {
	f.count()
	return f.byNamePattern, f.err()
}

func (f *fakeStore) EntitiesByKeyword(ctx context.Context, keyword string) ([]*model.Entity, error) {
	f.count()
	if f.failKeywords[keyword] {
		return nil, fmt.Errorf("keyword lookup down")
	}
	return f.byKeyword[keyword], f.err()
}

func (f *fakeStore) ByFreeText(ctx context.Context, compoundTerms []string) ([]*model.Entity, error) {
	f.count()
	return f.freeText, f.err()
}

func (f *fakeStore) CountNotes(ctx context.Context, sectionID string) (int, error) {
	f.count()
	return f.notes[sectionID], f.err()
}

func (f *fakeStore) Breadcrumb(ctx context.Context, sectionID string) (*model.Breadcrumb, error) {
	f.count()
	if b, ok := f.breadcrumbs[sectionID]; ok {
		return &b, f.err()
	}
	return nil, f.err()
}

func (f *fakeStore) Breadcrumbs(ctx context.Context, sectionIDs []string) (map[string]model.Breadcrumb, error) {
	f.count()
	result := map[string]model.Breadcrumb{}
	for _, id := range sectionIDs {
		if b, ok := f.breadcrumbs[id]; ok {
			result[id] = b
		}
	}
	return result, f.err()
}

func (f *fakeStore) ChildSections(ctx context.Context, prefix string, department string) ([]*model.ChildSection, error) {
	f.count()
	return f.children[prefix], f.err()
}

func newSection(name, sectionID string) *model.Entity {
	return &model.Entity{
		ID:            uuid.New(),
		Name:          name,
		Type:          model.EntityTypeSection,
		SourceSection: sectionID,
	}
}

func newWorkType(name, sectionID string) *model.Entity {
	return &model.Entity{
		ID:            uuid.New(),
		Name:          name,
		Type:          model.EntityTypeWorkType,
		SourceSection: sectionID,
	}
}

func newGroupedWorkType(name, sectionID, subSection string, subSectionNo int) *model.Entity {
	workType := newWorkType(name, sectionID)
	workType.Properties = model.Properties{
		"sub_section":    subSection,
		"sub_section_no": subSectionNo,
	}
	return workType
}

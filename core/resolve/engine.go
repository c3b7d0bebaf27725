package resolve

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
)

// childDrillThreshold is the work type count above which a scoped result
// also offers the child sections as a narrower entry point.
const childDrillThreshold = 10

// Engine runs the five strategy search cascade against an entity store and
// classifies the merged candidates into a clarification level.
type Engine struct {
	store      Store
	dict       *Dictionary
	strategies []Strategy
	freeText   Strategy
	log        *slog.Logger
}

// NewEngine creates a new resolution engine. The free text fallback runs
// strictly after the other strategies because its trigger condition reads
// their merged results.
func NewEngine(store Store, dict *Dictionary, logger *slog.Logger) *Engine {
	return &Engine{
		store: store,
		dict:  dict,
		strategies: []Strategy{
			&sectionSearch{dict: dict},
			&tokenSplit{},
			&directMatch{dict: dict},
			&keywordSearch{},
		},
		freeText: &freeText{},
		log:      logger,
	}
}

// Resolve runs one resolution call. It never returns an error for an
// ambiguous or empty outcome, only when the entity store was unreachable
// for every strategy that needed it.
func (e *Engine) Resolve(ctx context.Context, rc *model.ResolveContext) (*model.ResolveResult, error) {
	if !rc.Scope.IsZero() {
		return e.resolveScoped(ctx, rc)
	}

	terms := NormalizeTerms(rc.WorkName, rc.Keywords, rc.RawQuery)
	if len(terms) == 0 && len(rc.PreMatchedSections) == 0 {
		return &model.ResolveResult{Level: model.LevelEmpty, EmptyQuery: true}, nil
	}

	q := &Query{
		Terms:              terms,
		RawQuery:           rc.RawQuery,
		PreMatchedSections: rc.PreMatchedSections,
		MatchedSectionIDs:  map[string]bool{},
	}

	ran, failed := 0, 0
	runStrategy := func(s Strategy) {
		consulted, err := s.Resolve(ctx, e.store, q)
		if consulted {
			ran++
		}
		if err != nil {
			failed++
			e.log.Warn("cascade strategy degraded", "strategy", s.Name(), "error", err)
		}
	}
	for _, s := range e.strategies {
		runStrategy(s)
	}
	// the free text trigger depends on the merged results of the others
	runStrategy(e.freeText)

	if ran > 0 && failed == ran {
		return nil, helper.NewError("resolving query", ErrStoreUnavailable)
	}

	res := &model.ResolveResult{
		Sections:          dedupeEntities(q.Sections),
		WorkTypes:         dedupeEntities(q.WorkTypes),
		FreeTextResults:   dedupeEntities(q.FreeTextResults),
		MatchedSectionIDs: q.MatchedSectionIDs,
		SearchTerms:       terms,
	}
	ScoreCandidates(res.Sections, q.MatchedSectionIDs, terms)
	ScoreCandidates(res.WorkTypes, q.MatchedSectionIDs, terms)
	Classify(res)

	e.attachBreadcrumbs(ctx, res)
	return res, nil
}

// resolveScoped handles the re-entry turn after the caller already picked a
// section. The multi section check is skipped, the work types are read
// straight off the chosen section.
func (e *Engine) resolveScoped(ctx context.Context, rc *model.ResolveContext) (*model.ResolveResult, error) {
	scope := rc.Scope
	sectionID := scope.BaseSectionID()

	workTypes, err := e.store.WorkTypesBySection(ctx, sectionID)
	if err != nil {
		return nil, helper.NewError("loading work types of scoped section "+sectionID, err)
	}

	if scope.SubSection != "" {
		var filtered []*model.Entity
		for _, w := range workTypes {
			if w.SubSection() == scope.SubSection {
				filtered = append(filtered, w)
			}
		}
		workTypes = filtered
	}
	workTypes = dedupeEntities(workTypes)

	res := &model.ResolveResult{
		PrimarySectionID: sectionID,
		SubFilter:        scope.SubSection,
	}

	breadcrumb, err := e.store.Breadcrumb(ctx, sectionID)
	if err != nil {
		e.log.Warn("breadcrumb lookup degraded", "section", sectionID, "error", err)
	}
	if breadcrumb != nil {
		res.Breadcrumbs = map[string]model.Breadcrumb{sectionID: *breadcrumb}
		res.SectionPath = breadcrumb.Path()
		res.SectionName = breadcrumb.Title
	} else {
		res.SectionPath = model.DisplayCode(sectionID)
		res.SectionName = model.DisplayCode(sectionID)
	}

	if len(workTypes) == 0 {
		return e.resolveScopedEmpty(ctx, res, breadcrumb)
	}

	res.WorkTypes = workTypes
	matched := map[string]bool{sectionID: true}
	terms := NormalizeTerms(rc.WorkName, rc.Keywords, rc.RawQuery)
	res.SearchTerms = terms
	ScoreCandidates(res.WorkTypes, matched, terms)
	classifySingleSection(res, res.WorkTypes)

	if len(res.WorkTypes) > childDrillThreshold {
		children, err := e.childSections(ctx, sectionID, breadcrumb)
		if err != nil {
			e.log.Warn("child section lookup degraded", "section", sectionID, "error", err)
		}
		res.ChildSections = children
	}

	return res, nil
}

// resolveScopedEmpty handles a scoped section without matching work types.
// It reaches one level deeper first. When the child sections carry the work
// types, they become the candidates and the child list is kept so the
// presenter can offer the children as narrower entry points.
func (e *Engine) resolveScopedEmpty(ctx context.Context, res *model.ResolveResult, breadcrumb *model.Breadcrumb) (*model.ResolveResult, error) {
	sectionID := res.PrimarySectionID

	children, err := e.childSections(ctx, sectionID, breadcrumb)
	if err != nil {
		e.log.Warn("child section lookup degraded", "section", sectionID, "error", err)
	}
	if len(children) > 0 {
		res.ChildSections = children
		res.WorkTypes = dedupeEntities(e.workTypesOfChildren(ctx, children))
		if len(res.WorkTypes) > 0 {
			classifySingleSection(res, res.WorkTypes)
			return res, nil
		}
	}

	notes, err := e.store.CountNotes(ctx, sectionID)
	if err != nil {
		e.log.Warn("note count degraded", "section", sectionID, "error", err)
	}
	if notes > 0 {
		res.Level = model.LevelEmpty
		res.NoteCount = notes
		return res, nil
	}

	// nothing below the section, offer the section itself
	name := res.SectionName
	if name == "" {
		name = model.DisplayCode(sectionID)
	}
	res.Level = model.LevelWorkTypeFew
	res.WorkTypes = []*model.Entity{{
		ID:            uuid.New(),
		Name:          name,
		Type:          model.EntityTypeSection,
		SourceSection: sectionID,
	}}
	return res, nil
}

// workTypesOfChildren collects the work types of the child sections,
// concurrently, tolerating failures of single children.
func (e *Engine) workTypesOfChildren(ctx context.Context, children []*model.ChildSection) []*model.Entity {
	var wg sync.WaitGroup
	results := make([][]*model.Entity, len(children))
	for i, child := range children {
		wg.Add(1)
		go func() {
			defer wg.Done()
			workTypes, err := e.store.WorkTypesBySection(ctx, child.SectionID)
			if err != nil {
				e.log.Warn("child work type lookup degraded", "section", child.SectionID, "error", err)
				return
			}
			results[i] = workTypes
		}()
	}
	wg.Wait()

	var all []*model.Entity
	for _, workTypes := range results {
		all = append(all, workTypes...)
	}
	return all
}

func (e *Engine) childSections(ctx context.Context, sectionID string, breadcrumb *model.Breadcrumb) ([]*model.ChildSection, error) {
	department := ""
	if breadcrumb != nil {
		department = breadcrumb.Department
	}
	return e.store.ChildSections(ctx, sectionID, department)
}

// attachBreadcrumbs batch resolves the path metadata of every section the
// candidates refer to. A failing lookup leaves the labels bare, it never
// fails the resolution.
func (e *Engine) attachBreadcrumbs(ctx context.Context, res *model.ResolveResult) {
	seen := map[string]bool{}
	var ids []string
	collect := func(entities []*model.Entity) {
		for _, entity := range entities {
			if entity.SourceSection != "" && !seen[entity.SourceSection] {
				seen[entity.SourceSection] = true
				ids = append(ids, entity.SourceSection)
			}
		}
	}
	collect(res.Sections)
	collect(res.WorkTypes)
	if len(ids) == 0 {
		return
	}

	breadcrumbs, err := e.store.Breadcrumbs(ctx, ids)
	if err != nil {
		e.log.Warn("breadcrumb lookup degraded", "error", err)
		return
	}
	res.Breadcrumbs = breadcrumbs

	if res.PrimarySectionID != "" {
		if b, ok := breadcrumbs[res.PrimarySectionID]; ok {
			res.SectionPath = b.Path()
			res.SectionName = b.Title
		}
	}
}

// dedupeEntities drops candidates already seen under the same id or the
// same whitespace stripped name, keeping the first occurrence. Identical
// input always yields identical output, re-running it changes nothing.
func dedupeEntities(entities []*model.Entity) []*model.Entity {
	if len(entities) < 2 {
		return entities
	}
	seenID := map[uuid.UUID]bool{}
	seenName := map[string]bool{}
	var deduped []*model.Entity
	for _, entity := range entities {
		name := strings.ReplaceAll(entity.Name, " ", "") + "|" + string(entity.Type)
		if seenID[entity.ID] || seenName[name] {
			continue
		}
		seenID[entity.ID] = true
		seenName[name] = true
		deduped = append(deduped, entity)
	}
	return deduped
}

package resolve

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jkwon/costbook/helper"
	"github.com/jkwon/costbook/model"
)

// Query carries the normalized terms of one resolution call and the
// candidate state the cascade strategies accumulate into it.
type Query struct {
	// Terms are the normalized search terms, Terms[0] is the canonical
	// work name.
	Terms    []string
	RawQuery string
	// PreMatchedSections lets a caller seed the section search with
	// sections found by an embedding pre match instead of name patterns.
	PreMatchedSections []*model.Entity

	Sections  []*model.Entity
	WorkTypes []*model.Entity
	// MatchedSectionIDs records which sections the section search found,
	// so the scorer can reward their work types.
	MatchedSectionIDs map[string]bool
	// FreeTextResults are kept apart from WorkTypes because the
	// classifier gives them precedence.
	FreeTextResults []*model.Entity
}

// Lead returns the canonical work name of the query.
func (q *Query) Lead() string {
	if len(q.Terms) == 0 {
		return ""
	}
	return q.Terms[0]
}

func (q *Query) candidateNames() []string {
	names := make([]string, 0, len(q.Sections)+len(q.WorkTypes))
	for _, s := range q.Sections {
		names = append(names, s.Name)
	}
	for _, w := range q.WorkTypes {
		names = append(names, w.Name)
	}
	return names
}

// Strategy is one step of the resolution cascade. A strategy reads the
// query state left by the strategies before it, decides whether it applies,
// and appends its candidates. The bool reports whether the strategy
// consulted the store at all; an error degrades the strategy without
// aborting the cascade.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, store Store, q *Query) (bool, error)
}

func likePattern(term string) string {
	return "%" + term + "%"
}

func likePatterns(terms []string) []string {
	patterns := make([]string, 0, len(terms))
	for _, t := range terms {
		patterns = append(patterns, likePattern(t))
	}
	return patterns
}

// sectionSearch matches the lead term against section names, expanded with
// the loanword dictionary, and pulls in every work type of each matched
// section. Pre matched sections from an embedding search take the place of
// the name lookup when the caller provides them.
type sectionSearch struct {
	dict *Dictionary
}

func (s *sectionSearch) Name() string { return "section_search" }

func (s *sectionSearch) Resolve(ctx context.Context, store Store, q *Query) (bool, error) {
	lead := q.Lead()
	if lead == "" && len(q.PreMatchedSections) == 0 {
		return false, nil
	}

	sections := q.PreMatchedSections
	if len(sections) == 0 {
		synonyms := s.dict.Expand([]string{lead})
		found, err := store.SectionsByNamePattern(ctx, likePattern(lead), likePatterns(synonyms))
		if err != nil {
			return true, helper.NewError("searching sections by name", err)
		}
		sections = found
	}

	return true, expandSections(ctx, store, q, sections)
}

// expandSections records the sections on the query and fetches their work
// types concurrently, one store call per section.
func expandSections(ctx context.Context, store Store, q *Query, sections []*model.Entity) error {
	if len(sections) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	children := make([][]*model.Entity, len(sections))
	for i, section := range sections {
		g.Go(func() error {
			workTypes, err := store.WorkTypesBySection(gctx, section.SourceSection)
			if err != nil {
				return helper.NewError("loading work types of section "+section.SourceSection, err)
			}
			children[i] = workTypes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, section := range sections {
		q.Sections = append(q.Sections, section)
		q.MatchedSectionIDs[section.SourceSection] = true
		q.WorkTypes = append(q.WorkTypes, children[i]...)
	}
	return nil
}

// tokenSplit retries the section search with the lead term broken into its
// tokens, matched conjunctively. Runs only when the section search came up
// empty and the lead is long enough to carry more than one token.
type tokenSplit struct{}

func (s *tokenSplit) Name() string { return "token_split" }

func (s *tokenSplit) Resolve(ctx context.Context, store Store, q *Query) (bool, error) {
	lead := q.Lead()
	if len(q.Sections) > 0 || len([]rune(lead)) < 4 {
		return false, nil
	}

	tokens := splitLeadTokens(lead)
	if len(tokens) < 2 {
		return false, nil
	}

	sections, err := store.SectionsByAllTokens(ctx, likePatterns(tokens))
	if err != nil {
		return true, helper.NewError("searching sections by tokens", err)
	}
	return true, expandSections(ctx, store, q, sections)
}

// directMatch looks the terms up against work type names and aliases,
// with dictionary expansion and relaxed patterns for mixed script terms.
type directMatch struct {
	dict *Dictionary
}

func (s *directMatch) Name() string { return "direct_match" }

// searchableTerm reports whether a term is specific enough for a direct
// name lookup. Pure Latin terms under four characters are abbreviations
// too short to be meaningful on their own.
func searchableTerm(term string) bool {
	runes := []rune(term)
	if len(runes) < 2 {
		return false
	}
	if !hangulRegex.MatchString(term) && len(runes) < 4 {
		return false
	}
	return true
}

func (s *directMatch) Resolve(ctx context.Context, store Store, q *Query) (bool, error) {
	var terms []string
	for _, t := range q.Terms {
		if searchableTerm(t) {
			terms = append(terms, t)
		}
	}

	// Terms too short for a literal lookup still expand, most abbreviation
	// keys are three letter Latin trade terms like TIG or MIG.
	expansions := s.dict.Expand(q.Terms)
	if len(terms) == 0 && len(expansions) == 0 {
		return false, nil
	}

	patterns := likePatterns(terms)
	patterns = append(patterns, likePatterns(expansions)...)
	patterns = append(patterns, MixedScriptPatterns(terms)...)

	workTypes, err := store.WorkTypesByNamePattern(ctx, patterns)
	if err != nil {
		return true, helper.NewError("searching work types by name", err)
	}
	q.WorkTypes = append(q.WorkTypes, workTypes...)
	return true, nil
}

// keywordSearch runs one lookup per keyword concurrently. Generic action
// verbs are skipped, a single failing keyword only drops that keyword.
type keywordSearch struct{}

func (s *keywordSearch) Name() string { return "keyword_search" }

func (s *keywordSearch) Resolve(ctx context.Context, store Store, q *Query) (bool, error) {
	var keywords []string
	for _, t := range q.Terms {
		if !actionVerbs[t] && len([]rune(t)) >= 2 {
			keywords = append(keywords, t)
		}
	}
	if len(keywords) == 0 {
		return false, nil
	}

	var wg sync.WaitGroup
	results := make([][]*model.Entity, len(keywords))
	errs := make([]error, len(keywords))
	for i, keyword := range keywords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = store.EntitiesByKeyword(ctx, keyword)
		}()
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			continue
		}
		for _, e := range results[i] {
			if e.Type == model.EntityTypeSection {
				q.Sections = append(q.Sections, e)
			} else {
				q.WorkTypes = append(q.WorkTypes, e)
			}
		}
	}
	if failed == len(keywords) {
		return true, helper.NewError("searching entities by keyword", errs[0])
	}
	return true, nil
}

// freeText falls back to the source document text with the compound
// two grams of the raw query. Skipped when an earlier strategy already
// matched one of the compounds, for those the name search is authoritative.
type freeText struct{}

func (s *freeText) Name() string { return "free_text" }

// compoundTerms builds the adjacent Hangul two grams of the raw query plus
// the full concatenation, longest first.
func compoundTerms(rawQuery string) []string {
	tokens := hangulTokenRegex.FindAllString(rawQuery, -1)
	if len(tokens) < 2 {
		return nil
	}

	var compounds []string
	seen := map[string]bool{}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			compounds = append(compounds, c)
		}
	}
	add(strings.Join(tokens, ""))
	for i := 0; i+1 < len(tokens); i++ {
		add(tokens[i] + tokens[i+1])
	}
	return compounds
}

func (s *freeText) Resolve(ctx context.Context, store Store, q *Query) (bool, error) {
	compounds := compoundTerms(q.RawQuery)
	if len(compounds) == 0 {
		return false, nil
	}

	for _, name := range q.candidateNames() {
		for _, c := range compounds {
			if strings.Contains(name, c) {
				return false, nil
			}
		}
	}

	found, err := store.ByFreeText(ctx, compounds)
	if err != nil {
		return true, helper.NewError("searching source text", err)
	}
	q.FreeTextResults = append(q.FreeTextResults, found...)
	return true, nil
}

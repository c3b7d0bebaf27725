package resolve

import (
	"sort"

	"github.com/jkwon/costbook/model"
)

// Thresholds of the hierarchy classifier. Up to three work types are shown
// directly, more than that forces a drill down step.
const (
	fewWorkTypesMax = 3
	minDrillGroups  = 2
)

// Classify derives the clarification level from the scored candidate sets.
// Free text matches are authoritative when present because they are more
// specific than name pattern hits. Pure, the auxiliary notes probe for the
// empty level is the engine's job.
func Classify(res *model.ResolveResult) {
	workTypes := res.WorkTypes
	sections := res.Sections

	// free text precedence
	if wts := workTypesOf(res.FreeTextResults); len(wts) > 0 {
		res.WorkTypes = wts
		res.Sections = nil
		classifySingleSection(res, wts)
		return
	}

	if len(sections) == 0 && len(workTypes) == 0 {
		res.Level = model.LevelEmpty
		return
	}

	if distinctSections(sections, workTypes) > 1 {
		res.Level = model.LevelMultiSection
		return
	}

	if len(workTypes) == 0 {
		// a bare section with no work types becomes its own candidate
		res.Level = model.LevelWorkTypeFew
		return
	}

	classifySingleSection(res, workTypes)
}

// classifySingleSection decides between the drill down, many and few levels
// for work types sharing one section context.
func classifySingleSection(res *model.ResolveResult, workTypes []*model.Entity) {
	if len(workTypes) == 0 {
		res.Level = model.LevelEmpty
		return
	}
	if res.PrimarySectionID == "" {
		res.PrimarySectionID = workTypes[0].SourceSection
	}

	if len(workTypes) <= fewWorkTypesMax {
		res.Level = model.LevelWorkTypeFew
		return
	}

	groups, order := groupBySubSection(workTypes)
	if len(order) >= minDrillGroups {
		res.Level = model.LevelSubSectionDrill
		res.SubSectionGroups = groups
		res.GroupOrder = order
		return
	}

	res.Level = model.LevelWorkTypeMany
}

func workTypesOf(entities []*model.Entity) []*model.Entity {
	var wts []*model.Entity
	for _, e := range entities {
		if e.Type == model.EntityTypeWorkType {
			wts = append(wts, e)
		}
	}
	return wts
}

func distinctSections(sections, workTypes []*model.Entity) int {
	seen := map[string]bool{}
	for _, s := range sections {
		if s.SourceSection != "" {
			seen[s.SourceSection] = true
		}
	}
	for _, w := range workTypes {
		if w.SourceSection != "" {
			seen[w.SourceSection] = true
		}
	}
	return len(seen)
}

// groupBySubSection groups work types by their sub_section property and
// orders the groups by their sub_section_no, then name. Ungrouped work
// types do not form a group of their own.
func groupBySubSection(workTypes []*model.Entity) (map[string][]*model.Entity, []string) {
	groups := map[string][]*model.Entity{}
	groupNo := map[string]int{}
	for _, w := range workTypes {
		sub := w.SubSection()
		if sub == "" {
			continue
		}
		groups[sub] = append(groups[sub], w)
		if no, ok := groupNo[sub]; !ok || w.SubSectionNo() < no {
			groupNo[sub] = w.SubSectionNo()
		}
	}
	if len(groups) < minDrillGroups {
		return nil, nil
	}

	order := make([]string, 0, len(groups))
	for sub := range groups {
		order = append(order, sub)
	}
	sort.Slice(order, func(i, j int) bool {
		if groupNo[order[i]] != groupNo[order[j]] {
			return groupNo[order[i]] < groupNo[order[j]]
		}
		return order[i] < order[j]
	})
	return groups, order
}

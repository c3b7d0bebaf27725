// Package clarify turns classified resolution results into the user facing
// clarification step: a Korean guidance message, the options that actually
// exist in the catalog, and a faceted selector panel for long lists.
package clarify

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jkwon/costbook/model"
)

// maxOptions caps the flat option list. The selector panel keeps the full
// item set, the cap only bounds the plain buttons.
const maxOptions = 10

// childOptionThreshold is the work type count above which a scoped result
// offers its child sections instead of individual work types.
const childOptionThreshold = 10

// PresentEmptyQuery is the canned response for a call that carried no
// usable terms. Built without any catalog lookup.
func PresentEmptyQuery() *model.ClarifyResult {
	return &model.ClarifyResult{
		Message: "검색하고 싶은 품셈 항목을 좀 더 구체적으로 알려주세요.\n예: \"강관용접 200mm SCH 40\", \"콘크리트 타설\", \"거푸집 설치\"",
		Options: []model.Option{
			{Label: "강관용접", Query: "강관용접 품셈"},
			{Label: "콘크리트 타설", Query: "콘크리트 타설 품셈"},
			{Label: "거푸집 설치", Query: "거푸집 설치 품셈"},
		},
	}
}

// Present converts a classified resolution result into the clarification
// shown to the user. Pure, every option offered is backed by a candidate
// the cascade actually found.
func Present(res *model.ResolveResult) *model.ClarifyResult {
	if res.EmptyQuery {
		return PresentEmptyQuery()
	}

	switch res.Level {
	case model.LevelEmpty:
		return presentEmpty(res)
	case model.LevelSubSectionDrill:
		return presentSubSectionDrill(res)
	case model.LevelMultiSection:
		return presentMultiSection(res)
	case model.LevelWorkTypeMany, model.LevelWorkTypeFew:
		return presentWorkTypes(res)
	}
	return notFound(res)
}

func notFound(res *model.ResolveResult) *model.ClarifyResult {
	return &model.ClarifyResult{
		Message: "\"" + joinedTerms(res) + "\"와 관련된 품셈 항목을 찾지 못했습니다.\n정확한 공종명을 입력해 주세요.",
		Options: []model.Option{},
	}
}

func joinedTerms(res *model.ResolveResult) string {
	return strings.Join(res.SearchTerms, " ")
}

func leadTerm(res *model.ResolveResult) string {
	if len(res.SearchTerms) == 0 {
		return ""
	}
	return res.SearchTerms[0]
}

// sectionLabel formats a section reference as department > chapter > title
// with the section code, falling back to a bracketed code prefix when no
// breadcrumb resolved.
func sectionLabel(res *model.ResolveResult, sectionID string, fallbackName string) string {
	code := model.DisplayCode(sectionID)
	if b, ok := res.Breadcrumbs[sectionID]; ok && b.Department != "" {
		return b.Path() + " (" + code + ")"
	}
	return "[" + code + "] " + fallbackName
}

// candidateLabel formats a single work type option, prefixed with its
// department so same-named work types of different fields stay apart.
func candidateLabel(res *model.ResolveResult, e *model.Entity) string {
	if b, ok := res.Breadcrumbs[e.SourceSection]; ok && b.Department != "" {
		dept := strings.TrimSuffix(b.Department, "부문")
		return "[" + dept + " (" + model.DisplayCode(e.SourceSection) + ")] " + e.Name
	}
	if e.SourceSection != "" {
		return "[" + model.DisplayCode(e.SourceSection) + "] " + e.Name
	}
	return e.Name
}

func fullViewOption(res *model.ResolveResult) model.Option {
	name := res.SectionName
	if name == "" {
		name = res.PrimarySectionID
	}
	label := "📋 " + name
	if res.SubFilter != "" {
		label += " > " + res.SubFilter
	}
	return model.Option{
		Label:     label + " 전체 내용 보기",
		Query:     name + " 전체 품셈",
		SectionID: res.PrimarySectionID,
		Type:      model.OptionTypeFullView,
	}
}

func capOptions(options []model.Option) []model.Option {
	if len(options) > maxOptions {
		return options[:maxOptions]
	}
	return options
}

func presentEmpty(res *model.ResolveResult) *model.ClarifyResult {
	if res.PrimarySectionID == "" {
		return notFound(res)
	}

	path := res.SectionPath
	if path == "" {
		path = res.PrimarySectionID
	}
	message := "**" + path + "** 품셈의 상세 작업이 개별 등록되어 있지 않습니다.\n아래 \"전체 내용 보기\" 버튼으로 해당 절의 품셈 데이터를 확인해 주세요."
	if res.NoteCount > 0 {
		message = "**" + path + "** 품셈은 개별 작업이 분류되어 있지 않고, **기준 및 주의사항 " +
			strconv.Itoa(res.NoteCount) + "건**을 포함하고 있습니다.\n아래 \"전체 내용 보기\"를 통해 확인해 주세요."
	}

	return &model.ClarifyResult{
		Message: message,
		Options: []model.Option{fullViewOption(res)},
	}
}

func presentSubSectionDrill(res *model.ResolveResult) *model.ClarifyResult {
	prefix := res.SectionName
	if prefix == "" {
		prefix = leadTerm(res)
	}

	options := []model.Option{fullViewOption(res)}
	for _, sub := range res.GroupOrder {
		group := res.SubSectionGroups[sub]
		scope := model.SectionScope{SectionID: res.PrimarySectionID, SubSection: sub}
		options = append(options, model.Option{
			Label:     "📂 " + sub + " (" + strconv.Itoa(len(group)) + "건)",
			Query:     prefix + " " + sub + " 품셈",
			SectionID: scope.Encode(),
			Type:      model.OptionTypeSection,
		})
	}

	return &model.ClarifyResult{
		Message: "**" + res.SectionPath + "** 품셈에는 " + strconv.Itoa(len(res.GroupOrder)) +
			"개 분류(총 " + strconv.Itoa(len(res.WorkTypes)) + "개 작업)가 있습니다.\n분류를 선택해 주세요.",
		Options: capOptions(options),
	}
}

func presentMultiSection(res *model.ResolveResult) *model.ClarifyResult {
	covered := map[string]bool{}
	var options []model.Option

	for _, s := range res.Sections {
		if s.SourceSection != "" {
			covered[s.SourceSection] = true
		}
		options = append(options, model.Option{
			Label:         sectionLabel(res, s.SourceSection, s.Name),
			Query:         s.Name + " 품셈",
			SectionID:     s.SourceSection,
			SourceSection: s.SourceSection,
			Type:          model.OptionTypeSection,
		})
	}

	// sections only reachable through a work type still get an entry
	for _, w := range res.WorkTypes {
		if w.SourceSection == "" || covered[w.SourceSection] {
			continue
		}
		covered[w.SourceSection] = true
		name := w.Name
		if b, ok := res.Breadcrumbs[w.SourceSection]; ok && b.Title != "" {
			name = b.Title
		}
		options = append(options, model.Option{
			Label:         sectionLabel(res, w.SourceSection, w.Name),
			Query:         name + " 품셈",
			SectionID:     w.SourceSection,
			SourceSection: w.SourceSection,
			Type:          model.OptionTypeSection,
		})
	}

	selector := buildSelectorPanel(options, leadTerm(res))
	return &model.ClarifyResult{
		Message: "\"" + joinedTerms(res) + "\" 관련 품셈이 **" + strconv.Itoa(len(covered)) +
			"개 분야**에 있습니다.\n어떤 분야의 품셈을 찾으시나요?",
		Options:  capOptions(options),
		Selector: selector,
	}
}

func presentWorkTypes(res *model.ResolveResult) *model.ClarifyResult {
	var options []model.Option
	if res.PrimarySectionID != "" {
		options = append(options, fullViewOption(res))
	}

	if len(res.ChildSections) > 0 && len(res.WorkTypes) > childOptionThreshold {
		for _, child := range res.ChildSections {
			options = append(options, model.Option{
				Label:     "📂 " + child.Title,
				Query:     child.Title + " 품셈",
				SectionID: child.SectionID,
				Type:      model.OptionTypeSection,
			})
		}
	} else {
		candidates := res.WorkTypes
		if len(candidates) == 0 {
			candidates = res.Sections
		}
		seen := map[uuid.UUID]bool{}
		for _, c := range candidates {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true

			label := c.Name
			if res.Level == model.LevelWorkTypeMany || len(res.Sections) == 0 {
				label = candidateLabel(res, c)
			}
			option := model.Option{
				Label:         label,
				Query:         c.Name + " 품셈",
				EntityID:      c.ID,
				SourceSection: c.SourceSection,
				Type:          model.OptionTypeWorkType,
			}
			if c.Type == model.EntityTypeSection {
				option.Type = model.OptionTypeSection
				option.SectionID = c.SourceSection
			}
			options = append(options, option)
		}
	}

	path := res.SectionPath
	if path == "" {
		path = res.SectionName
	}
	var message string
	switch {
	case res.SubFilter != "":
		message = "**" + path + " > " + res.SubFilter + "** 품셈은 " + strconv.Itoa(len(res.WorkTypes)) +
			"개 작업으로 분류되어 있습니다.\n어떤 작업의 품셈을 찾으시나요?"
	case res.Level == model.LevelWorkTypeMany:
		message = "**" + path + "** 품셈은 " + strconv.Itoa(len(res.WorkTypes)) +
			"개 작업으로 분류되어 있습니다.\n어떤 작업의 품셈을 찾으시나요?"
	case len(res.Sections) == 1 && len(res.WorkTypes) > 0:
		message = "**" + path + "** 하위 " + strconv.Itoa(len(res.WorkTypes)) +
			"개 작업이 있습니다.\n어떤 작업의 품셈을 찾으시나요?"
	case len(res.WorkTypes) > 0 || len(res.Sections) > 0:
		message = "다음 중 찾으시는 항목이 있나요?"
	default:
		return notFound(res)
	}

	workName := leadTerm(res)
	if workName == "" {
		workName = res.SectionName
	}
	selector := buildSelectorPanel(options, workName)
	return &model.ClarifyResult{
		Message:  message,
		Options:  capOptions(options),
		Selector: selector,
	}
}

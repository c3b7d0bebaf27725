package clarify

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkwon/costbook/model"
)

func section(name, sectionID string) *model.Entity {
	return &model.Entity{
		ID:            uuid.New(),
		Name:          name,
		Type:          model.EntityTypeSection,
		SourceSection: sectionID,
	}
}

func workType(name, sectionID string) *model.Entity {
	return &model.Entity{
		ID:            uuid.New(),
		Name:          name,
		Type:          model.EntityTypeWorkType,
		SourceSection: sectionID,
	}
}

func TestPresentEmptyQuery(t *testing.T) {
	t.Run("Canned guidance with example options", func(t *testing.T) {
		result := PresentEmptyQuery()
		assert.Contains(t, result.Message, "구체적으로")
		require.Len(t, result.Options, 3)
		assert.Equal(t, "강관용접", result.Options[0].Label)
	})

	t.Run("Present routes the empty query flag", func(t *testing.T) {
		result := Present(&model.ResolveResult{Level: model.LevelEmpty, EmptyQuery: true})
		assert.Contains(t, result.Message, "구체적으로")
	})
}

func TestPresentEmpty(t *testing.T) {
	t.Run("Section with notes explains the notes variant", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelEmpty,
			PrimarySectionID: "13-9",
			SectionPath:      "기계설비부문 > 공통 > 기타 기준",
			SectionName:      "기타 기준",
			NoteCount:        4,
		}
		result := Present(res)
		assert.Contains(t, result.Message, "기준 및 주의사항 4건")
		require.Len(t, result.Options, 1)
		assert.Equal(t, model.OptionTypeFullView, result.Options[0].Type)
		assert.Equal(t, "13-9", result.Options[0].SectionID)
	})

	t.Run("Section without notes gets the plain variant", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelEmpty,
			PrimarySectionID: "13-9",
			SectionPath:      "기계설비부문 > 공통 > 기타 기준",
		}
		result := Present(res)
		assert.Contains(t, result.Message, "개별 등록되어 있지 않습니다")
	})

	t.Run("Empty without a section context reports not found", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:       model.LevelEmpty,
			SearchTerms: []string{"존재하지않는공종"},
		}
		result := Present(res)
		assert.Contains(t, result.Message, "찾지 못했습니다")
		assert.Empty(t, result.Options)
	})
}

func TestPresentSubSectionDrill(t *testing.T) {
	groups := map[string][]*model.Entity{
		"1. 아크용접": {workType("아크용접(100)", "13-2-3"), workType("아크용접(200)", "13-2-3")},
		"2. TIG용접": {workType("TIG용접(100)", "13-2-3")},
	}
	res := &model.ResolveResult{
		Level:            model.LevelSubSectionDrill,
		PrimarySectionID: "13-2-3",
		SectionPath:      "기계설비부문 > 용접공사 > 강관용접",
		SectionName:      "강관용접",
		WorkTypes: []*model.Entity{
			groups["1. 아크용접"][0], groups["1. 아크용접"][1], groups["2. TIG용접"][0],
		},
		SubSectionGroups: groups,
		GroupOrder:       []string{"1. 아크용접", "2. TIG용접"},
		SearchTerms:      []string{"강관용접"},
	}

	result := Present(res)

	t.Run("Full view comes first", func(t *testing.T) {
		require.NotEmpty(t, result.Options)
		assert.Equal(t, model.OptionTypeFullView, result.Options[0].Type)
	})

	t.Run("Groups keep their order and counts", func(t *testing.T) {
		require.Len(t, result.Options, 3)
		assert.Contains(t, result.Options[1].Label, "1. 아크용접 (2건)")
		assert.Contains(t, result.Options[2].Label, "2. TIG용접 (1건)")
	})

	t.Run("Group options carry the encoded sub section scope", func(t *testing.T) {
		scope := model.ParseSectionScope(result.Options[2].SectionID)
		assert.Equal(t, "13-2-3", scope.SectionID)
		assert.Equal(t, "2. TIG용접", scope.SubSection)
	})

	t.Run("Message counts groups and work types", func(t *testing.T) {
		assert.Contains(t, result.Message, "2개 분류")
		assert.Contains(t, result.Message, "총 3개 작업")
	})
}

func TestPresentMultiSection(t *testing.T) {
	t.Run("Sections become section options with breadcrumb labels", func(t *testing.T) {
		res := &model.ResolveResult{
			Level: model.LevelMultiSection,
			Sections: []*model.Entity{
				section("배관공사", "13-2-1"),
				section("배관 보온", "10-4-2"),
			},
			Breadcrumbs: map[string]model.Breadcrumb{
				"13-2-1": {Department: "기계설비부문", Chapter: "배관공사", Title: "강관 배관"},
			},
			SearchTerms: []string{"배관"},
		}
		result := Present(res)

		require.Len(t, result.Options, 2)
		assert.Equal(t, "기계설비부문 > 배관공사 > 강관 배관 (13-2-1)", result.Options[0].Label)
		assert.Equal(t, "[10-4-2] 배관 보온", result.Options[1].Label)
		assert.Equal(t, model.OptionTypeSection, result.Options[0].Type)
		assert.Contains(t, result.Message, "2개 분야")
	})

	t.Run("Sections only reachable through work types are added", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:    model.LevelMultiSection,
			Sections: []*model.Entity{section("배관공사", "13-2-1")},
			WorkTypes: []*model.Entity{
				workType("배관 보온재 시공", "10-4-2"),
				workType("배관 보온재 철거", "10-4-2"),
			},
			SearchTerms: []string{"배관"},
		}
		result := Present(res)

		require.Len(t, result.Options, 2, "Expected one option per distinct section")
		assert.Equal(t, "10-4-2", result.Options[1].SectionID)
	})

	t.Run("Option list is capped at ten", func(t *testing.T) {
		res := &model.ResolveResult{Level: model.LevelMultiSection, SearchTerms: []string{"배관"}}
		for i := 0; i < 15; i++ {
			res.Sections = append(res.Sections, section("배관공사", "13-2-"+strconv.Itoa(i)))
		}
		result := Present(res)
		assert.Len(t, result.Options, 10)
	})
}

func TestPresentWorkTypes(t *testing.T) {
	t.Run("Few work types list plainly inside one section", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelWorkTypeFew,
			PrimarySectionID: "13-2-3",
			SectionPath:      "기계설비부문 > 용접공사 > 강관용접",
			SectionName:      "강관용접",
			Sections:         []*model.Entity{section("강관용접", "13-2-3")},
			WorkTypes: []*model.Entity{
				workType("강관용접(100, SCH 40)", "13-2-3"),
				workType("강관용접(200, SCH 40)", "13-2-3"),
			},
			SearchTerms: []string{"강관용접"},
		}
		result := Present(res)

		require.Len(t, result.Options, 3)
		assert.Equal(t, model.OptionTypeFullView, result.Options[0].Type)
		assert.Equal(t, "강관용접(100, SCH 40)", result.Options[1].Label)
		assert.Equal(t, model.OptionTypeWorkType, result.Options[1].Type)
		assert.NotEqual(t, uuid.Nil, result.Options[1].EntityID)
		assert.Contains(t, result.Message, "하위 2개 작업")
	})

	t.Run("Many work types carry the department prefix", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelWorkTypeMany,
			PrimarySectionID: "13-2-3",
			SectionPath:      "기계설비부문 > 용접공사 > 강관용접",
			SectionName:      "강관용접",
			Breadcrumbs: map[string]model.Breadcrumb{
				"13-2-3": {Department: "기계설비부문", Chapter: "용접공사", Title: "강관용접"},
			},
			WorkTypes: []*model.Entity{
				workType("강관용접(100, SCH 40)", "13-2-3"),
				workType("강관용접(200, SCH 40)", "13-2-3"),
				workType("강관용접(200, SCH 80)", "13-2-3"),
				workType("강관용접(300, SCH 40)", "13-2-3"),
			},
			SearchTerms: []string{"강관용접"},
		}
		result := Present(res)

		assert.Contains(t, result.Options[1].Label, "[기계설비 (13-2-3)]", "Expected the 부문 suffix stripped from the department")
		assert.Contains(t, result.Message, "4개 작업")
	})

	t.Run("Child sections replace the flat list when the section is large", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelWorkTypeMany,
			PrimarySectionID: "13-2",
			SectionName:      "배관 및 용접",
			ChildSections: []*model.ChildSection{
				{SectionID: "13-2-1", Title: "배관공사"},
				{SectionID: "13-2-3", Title: "강관용접"},
			},
			SearchTerms: []string{"배관"},
		}
		for i := 0; i < 12; i++ {
			res.WorkTypes = append(res.WorkTypes, workType("배관 작업 "+strconv.Itoa(i), "13-2-1"))
		}
		result := Present(res)

		require.Len(t, result.Options, 3, "Expected full view plus one option per child section")
		assert.Equal(t, "13-2-1", result.Options[1].SectionID)
		assert.Equal(t, model.OptionTypeSection, result.Options[1].Type)
	})

	t.Run("Sub filter shows up in label and message", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelWorkTypeFew,
			PrimarySectionID: "13-2-3",
			SectionPath:      "기계설비부문 > 용접공사 > 강관용접",
			SectionName:      "강관용접",
			SubFilter:        "2. TIG용접",
			WorkTypes:        []*model.Entity{workType("TIG용접(100)", "13-2-3")},
			SearchTerms:      []string{"강관용접"},
		}
		result := Present(res)

		assert.Contains(t, result.Options[0].Label, "> 2. TIG용접")
		assert.Contains(t, result.Message, "> 2. TIG용접**")
	})

	t.Run("A section pseudo candidate becomes a section option", func(t *testing.T) {
		res := &model.ResolveResult{
			Level:            model.LevelWorkTypeFew,
			PrimarySectionID: "13-9",
			SectionName:      "기타 기준",
			WorkTypes:        []*model.Entity{section("기타 기준", "13-9")},
			SearchTerms:      []string{"기타"},
		}
		result := Present(res)

		require.Len(t, result.Options, 2)
		assert.Equal(t, model.OptionTypeSection, result.Options[1].Type)
		assert.Equal(t, "13-9", result.Options[1].SectionID)
	})
}

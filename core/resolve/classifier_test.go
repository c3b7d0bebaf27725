package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkwon/costbook/model"
)

func TestClassify(t *testing.T) {
	t.Run("No candidates yield empty", func(t *testing.T) {
		res := &model.ResolveResult{}
		Classify(res)
		assert.Equal(t, model.LevelEmpty, res.Level)
	})

	t.Run("Candidates across sections yield multi section", func(t *testing.T) {
		res := &model.ResolveResult{
			Sections: []*model.Entity{newSection("배관공사", "13-2-1")},
			WorkTypes: []*model.Entity{
				newWorkType("배관 보온재 시공", "10-4-2"),
			},
		}
		Classify(res)
		assert.Equal(t, model.LevelMultiSection, res.Level)
	})

	t.Run("One section with up to three work types yields few", func(t *testing.T) {
		res := &model.ResolveResult{
			Sections: []*model.Entity{newSection("강관용접", "13-2-3")},
			WorkTypes: []*model.Entity{
				newWorkType("강관용접(100, SCH 40)", "13-2-3"),
				newWorkType("강관용접(200, SCH 40)", "13-2-3"),
				newWorkType("강관용접(300, SCH 40)", "13-2-3"),
			},
		}
		Classify(res)
		assert.Equal(t, model.LevelWorkTypeFew, res.Level)
		assert.Equal(t, "13-2-3", res.PrimarySectionID)
	})

	t.Run("More than three ungrouped work types yield many", func(t *testing.T) {
		res := &model.ResolveResult{
			WorkTypes: []*model.Entity{
				newWorkType("강관용접(100, SCH 40)", "13-2-3"),
				newWorkType("강관용접(200, SCH 40)", "13-2-3"),
				newWorkType("강관용접(200, SCH 80)", "13-2-3"),
				newWorkType("강관용접(300, SCH 40)", "13-2-3"),
			},
		}
		Classify(res)
		assert.Equal(t, model.LevelWorkTypeMany, res.Level)
		assert.Nil(t, res.SubSectionGroups)
	})

	t.Run("Two grouped clusters yield the drill down", func(t *testing.T) {
		res := &model.ResolveResult{
			WorkTypes: []*model.Entity{
				newGroupedWorkType("아크용접(100)", "13-2-3", "1. 아크용접", 1),
				newGroupedWorkType("아크용접(200)", "13-2-3", "1. 아크용접", 1),
				newGroupedWorkType("TIG용접(100)", "13-2-3", "2. TIG용접", 2),
				newGroupedWorkType("TIG용접(200)", "13-2-3", "2. TIG용접", 2),
			},
		}
		Classify(res)
		assert.Equal(t, model.LevelSubSectionDrill, res.Level)
		require.Len(t, res.GroupOrder, 2)
		assert.Equal(t, []string{"1. 아크용접", "2. TIG용접"}, res.GroupOrder)
	})

	t.Run("A single group does not drill", func(t *testing.T) {
		res := &model.ResolveResult{
			WorkTypes: []*model.Entity{
				newGroupedWorkType("아크용접(100)", "13-2-3", "1. 아크용접", 1),
				newGroupedWorkType("아크용접(200)", "13-2-3", "1. 아크용접", 1),
				newGroupedWorkType("아크용접(300)", "13-2-3", "1. 아크용접", 1),
				newGroupedWorkType("아크용접(400)", "13-2-3", "1. 아크용접", 1),
			},
		}
		Classify(res)
		assert.Equal(t, model.LevelWorkTypeMany, res.Level)
	})

	t.Run("Free text work types override the section count", func(t *testing.T) {
		res := &model.ResolveResult{
			Sections: []*model.Entity{
				newSection("배관공사", "13-2-1"),
				newSection("배관 보온", "10-4-2"),
			},
			FreeTextResults: []*model.Entity{
				newWorkType("도시가스 배관 시공", "20-1-1"),
			},
		}
		Classify(res)
		assert.Equal(t, model.LevelWorkTypeFew, res.Level)
		require.Len(t, res.WorkTypes, 1)
		assert.Nil(t, res.Sections, "Expected the free text set to replace the section candidates")
	})

	t.Run("A bare section becomes the candidate set", func(t *testing.T) {
		res := &model.ResolveResult{
			Sections: []*model.Entity{newSection("기타 기준", "13-9")},
		}
		Classify(res)
		assert.Equal(t, model.LevelWorkTypeFew, res.Level)
	})

	t.Run("Exactly one level per call", func(t *testing.T) {
		inputs := []*model.ResolveResult{
			{},
			{Sections: []*model.Entity{newSection("a", "1-1")}},
			{WorkTypes: []*model.Entity{newWorkType("b", "1-1")}},
			{Sections: []*model.Entity{newSection("a", "1-1"), newSection("c", "2-1")}},
		}
		valid := map[model.Level]bool{
			model.LevelMultiSection:    true,
			model.LevelSubSectionDrill: true,
			model.LevelWorkTypeMany:    true,
			model.LevelWorkTypeFew:     true,
			model.LevelEmpty:           true,
		}
		for _, res := range inputs {
			Classify(res)
			assert.True(t, valid[res.Level], "Expected a terminal level, got %q", res.Level)
		}
	})
}

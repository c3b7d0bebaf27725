package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jkwon/costbook/model"
)

func TestScoreCandidates(t *testing.T) {
	t.Run("Matched section membership dominates", func(t *testing.T) {
		inSection := newWorkType("강관용접(100, SCH 40)", "13-2-3")
		outside := newWorkType("강관용접기 정비", "9-9-9")
		candidates := []*model.Entity{outside, inSection}

		ScoreCandidates(candidates, map[string]bool{"13-2-3": true}, []string{"강관용접"})

		assert.Equal(t, inSection.ID, candidates[0].ID)
		assert.Equal(t, 80, inSection.Score, "Expected section bonus plus lead substring bonus")
		assert.Equal(t, 30, outside.Score, "Expected the lead substring bonus only")
	})

	t.Run("Each distinct keyword adds once", func(t *testing.T) {
		candidate := newWorkType("PE관 융착 부설", "20-3-1")
		ScoreCandidates([]*model.Entity{candidate}, map[string]bool{}, []string{"PE관", "융착", "부설"})
		assert.Equal(t, 30+10+10, candidate.Score)
	})

	t.Run("Keyword match against the alias counts", func(t *testing.T) {
		candidate := newWorkType("Flange 취부", "13-2-5")
		candidate.Properties = model.Properties{"korean_alias": "플랜지 취부"}
		ScoreCandidates([]*model.Entity{candidate}, map[string]bool{}, []string{"밸브", "플랜지"})
		assert.Equal(t, 10, candidate.Score)
	})

	t.Run("Latin terms match regardless of case", func(t *testing.T) {
		candidate := newWorkType("Flange 취부", "13-2-5")
		candidate.Properties = model.Properties{"korean_alias": "SUS Flange 취부"}
		ScoreCandidates([]*model.Entity{candidate}, map[string]bool{}, []string{"FLANGE", "sus"})
		assert.Equal(t, 30+10, candidate.Score, "Expected the lead and keyword checks to fold case")
	})

	t.Run("Sections are demoted below work types", func(t *testing.T) {
		section := newSection("강관용접", "13-2-3")
		workType := newWorkType("강관용접(100, SCH 40)", "13-2-3")
		candidates := []*model.Entity{section, workType}

		ScoreCandidates(candidates, map[string]bool{"13-2-3": true}, []string{"강관용접"})

		assert.Equal(t, workType.ID, candidates[0].ID)
		assert.Equal(t, 25, section.Score, "Expected lead bonus minus the section penalty")
	})

	t.Run("Adding a matching keyword never lowers the score", func(t *testing.T) {
		base := newWorkType("PE관 융착 부설", "20-3-1")
		more := newWorkType("PE관 융착 부설", "20-3-1")

		ScoreCandidates([]*model.Entity{base}, map[string]bool{}, []string{"PE관", "융착"})
		ScoreCandidates([]*model.Entity{more}, map[string]bool{}, []string{"PE관", "융착", "부설"})

		assert.GreaterOrEqual(t, more.Score, base.Score)
	})

	t.Run("Ties keep discovery order", func(t *testing.T) {
		first := newWorkType("거푸집 설치(합판)", "4-1-1")
		second := newWorkType("거푸집 설치(유로폼)", "4-1-1")
		candidates := []*model.Entity{first, second}

		ScoreCandidates(candidates, map[string]bool{}, []string{"거푸집"})

		assert.Equal(t, first.ID, candidates[0].ID)
		assert.Equal(t, second.ID, candidates[1].ID)
	})
}

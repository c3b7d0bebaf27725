package resolve

import (
	"sort"
	"strings"

	"github.com/jkwon/costbook/model"
)

// Score weights of the additive relevance model. A work type sitting inside
// a section the section search matched outranks any purely lexical match.
const (
	scoreInMatchedSection = 50
	scoreLeadSubstring    = 30
	scorePerKeyword       = 10
	scoreSectionPenalty   = -5
)

// ScoreCandidates assigns each candidate its additive relevance score and
// sorts the slice by score descending, keeping the store order between
// equals.
func ScoreCandidates(candidates []*model.Entity, matchedSectionIDs map[string]bool, terms []string) {
	lead := ""
	if len(terms) > 0 {
		lead = strings.ToLower(terms[0])
	}

	for _, c := range candidates {
		// substring checks fold case like the ILIKE lookups that retrieved
		// the candidates
		name := strings.ToLower(c.Name)
		alias := strings.ToLower(c.Alias())

		score := 0
		if c.Type == model.EntityTypeWorkType && matchedSectionIDs[c.SourceSection] {
			score += scoreInMatchedSection
		}
		if lead != "" && strings.Contains(name, lead) {
			score += scoreLeadSubstring
		}
		if len(terms) > 1 {
			for _, t := range terms[1:] {
				t = strings.ToLower(t)
				if strings.Contains(name, t) || (alias != "" && strings.Contains(alias, t)) {
					score += scorePerKeyword
				}
			}
		}
		if c.Type == model.EntityTypeSection {
			score += scoreSectionPenalty
		}
		c.Score = score
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}

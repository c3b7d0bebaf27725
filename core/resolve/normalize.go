package resolve

import (
	"regexp"
	"strings"
	"unicode"
)

// Noise words carrying no catalog signal, stripped from keywords before the
// cascade runs.
var stopwords = map[string]bool{
	"품셈": true, "인력": true, "인공": true, "수량": true, "단위": true,
	"장비": true, "자재": true, "알려줘": true, "얼마": true, "관련": true,
	"어떻게": true, "무엇": true, "확인": true, "검색": true,
}

// Generic construction verbs that match half the catalog on their own.
// Excluded from keywords and the per keyword search.
var actionVerbs = map[string]bool{
	"제작": true, "설치": true, "시공": true, "공사": true, "운반": true,
	"보수": true, "해체": true, "조립": true, "철거": true, "가공": true,
	"타설": true, "양생": true, "포설": true, "다짐": true, "절단": true,
	"용접": true, "도장": true, "배관": true, "배선": true, "측량": true,
	"검사": true, "인양": true, "적재": true,
}

var (
	hangulTokenRegex = regexp.MustCompile(`[가-힣]{2,}`)
	hangulRegex      = regexp.MustCompile(`[가-힣]`)
	schRegex         = regexp.MustCompile(`(?i)SCH\s*(\d+)`)
	phiRegex         = regexp.MustCompile(`(?:파이|[Φφø∅Ø])\s*(\d+)`)
	ksShorthandRegex = regexp.MustCompile(`(\d+)\s*A\b`)
	inchRegex        = regexp.MustCompile(`^(\d+(?:-\d+/\d+|\d*/\d+)?)\s*(?:인치|inch|"|″)`)
	diameterRegex    = regexp.MustCompile(`(?:[φΦø∅Ø]\s*)?(\d{2,4})\s*(?:mm|A|㎜)?`)
)

// Nominal pipe size in inches to KS mm designation. 1 inch is 25.4mm, the
// table carries the rounded standard values.
var inchToMM = map[string]string{
	"1/2": "15", "3/4": "20", "1": "25", "1-1/4": "32", "1-1/2": "40",
	"2": "50", "2-1/2": "65", "3": "80", "4": "100", "5": "125",
	"6": "150", "8": "200", "10": "250", "12": "300", "14": "350",
	"16": "400", "18": "450", "20": "500", "24": "600",
}

// NormalizeSpec canonicalizes the varied specification notations users type
// into the catalog's standard form: inches to mm, 파이/Φ/ø prefixes to an mm
// suffix, SCH spacing, and the KS "A" shorthand to mm.
func NormalizeSpec(spec string) string {
	s := spec

	if m := inchRegex.FindStringSubmatch(s); m != nil {
		if mm, ok := inchToMM[m[1]]; ok {
			s = strings.Replace(s, m[0], mm+"mm", 1)
		}
	}

	s = phiRegex.ReplaceAllString(s, "${1}mm")
	s = schRegex.ReplaceAllString(s, "SCH $1")
	s = ksShorthandRegex.ReplaceAllString(s, "${1}mm")

	return s
}

// ExtractSpecNumbers pulls the specification numbers out of a raw query,
// "강관용접 200mm SCH 40" to ["200", "SCH 40"].
func ExtractSpecNumbers(query string) []string {
	var nums []string

	if m := diameterRegex.FindStringSubmatch(query); m != nil {
		nums = append(nums, m[1])
	}
	if m := schRegex.FindStringSubmatch(query); m != nil {
		nums = append(nums, "SCH "+m[1])
	}

	return nums
}

// NormalizeTerms builds the ordered, deduplicated canonical search terms of
// a resolution call. The first term is the canonical work name; the lead
// term is rebuilt from its Hangul tokens because upstream extraction may
// hand over the whole sentence. Pure, no I/O.
func NormalizeTerms(workName string, keywords []string, rawQuery string) []string {
	var raw []string
	if workName != "" {
		raw = append(raw, workName)
	}
	raw = append(raw, keywords...)

	var terms []string
	seen := map[string]bool{}
	for i, t := range raw {
		t = strings.TrimSpace(NormalizeSpec(t))
		if t == "" {
			continue
		}
		// noise and generic verbs are stripped from the keywords only, the
		// canonical work name is kept even when it looks generic
		if i > 0 || workName == "" {
			if stopwords[t] || actionVerbs[t] {
				continue
			}
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}

	if len(terms) == 0 {
		return nil
	}

	terms[0] = canonicalLeadTerm(terms[0], rawQuery)

	return terms
}

// canonicalLeadTerm joins the Hangul tokens of the lead term. When the
// result is over 15 runes or carries no Hangul at all, the upstream
// extraction was off and the tokens are re-derived from the raw query.
func canonicalLeadTerm(lead string, rawQuery string) string {
	joined := joinHangulTokens(lead)
	if joined != "" {
		lead = joined
	}
	if len([]rune(lead)) > 15 || !hangulRegex.MatchString(lead) {
		if fallback := joinHangulTokens(rawQuery); fallback != "" {
			return fallback
		}
	}
	return lead
}

func joinHangulTokens(s string) string {
	tokens := hangulTokenRegex.FindAllString(s, -1)
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	seen := map[string]bool{}
	for _, t := range tokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		sb.WriteString(t)
	}
	return sb.String()
}

// scriptRuns splits a term into its consecutive same-script runs, Hangul
// against everything else, "PE관" to ["PE", "관"].
func scriptRuns(term string) []string {
	var runs []string
	var current []rune
	var currentHangul bool
	for _, r := range term {
		isHangul := unicode.Is(unicode.Hangul, r)
		if len(current) > 0 && isHangul != currentHangul {
			runs = append(runs, string(current))
			current = current[:0]
		}
		current = append(current, r)
		currentHangul = isHangul
	}
	if len(current) > 0 {
		runs = append(runs, string(current))
	}
	return runs
}

// MixedScriptPatterns returns relaxed LIKE patterns for terms mixing Latin
// and Hangul script. "PE관" yields "%PE%관%" so parenthetical annotations
// between the scripts still match.
func MixedScriptPatterns(terms []string) []string {
	var patterns []string
	for _, t := range terms {
		runs := scriptRuns(t)
		if len(runs) < 2 {
			continue
		}
		patterns = append(patterns, "%"+strings.Join(runs, "%")+"%")
	}
	return patterns
}

// splitLeadTokens tokenizes the lead term for the token split fallback: the
// Hangul and Latin runs, or the halves of a single long token.
func splitLeadTokens(lead string) []string {
	var tokens []string
	for _, run := range scriptRuns(lead) {
		for _, t := range hangulTokenRegex.FindAllString(run, -1) {
			tokens = append(tokens, t)
		}
		if !hangulRegex.MatchString(run) {
			if trimmed := strings.TrimFunc(run, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }); trimmed != "" {
				tokens = append(tokens, trimmed)
			}
		}
	}

	if len(tokens) == 1 {
		word := []rune(tokens[0])
		if len(word) >= 4 {
			half := (len(word) + 1) / 2
			tokens = []string{string(word[:half]), string(word[half:])}
		}
	}

	return tokens
}

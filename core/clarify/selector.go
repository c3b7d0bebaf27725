package clarify

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jkwon/costbook/model"
)

// selectorThreshold is the option count above which the flat list gets the
// faceted selector panel next to it.
const selectorThreshold = 6

var (
	diameterSchPattern = regexp.MustCompile(`\((\d+),\s*SCH\s*([\d~]+)\)$`)
	twoSpecPattern     = regexp.MustCompile(`\(([^,]+),\s*(.+)\)$`)
	oneSpecPattern     = regexp.MustCompile(`\(([^)]+)\)$`)

	numberPattern     = regexp.MustCompile(`[\d.]+`)
	firstIntPattern   = regexp.MustCompile(`\d+`)
	unitSuffixPattern = regexp.MustCompile(`[a-zA-Z/²]+$`)
	bareNumberPattern = regexp.MustCompile(`^\d+\.?\d*$`)

	mmValuePattern       = regexp.MustCompile(`(?i)^\d+\s*mm$`)
	pressureValuePattern = regexp.MustCompile(`(?i)kg/cm[²2]?$`)
	tonnageValuePattern  = regexp.MustCompile(`(?i)^\d+\s*R?T$`)
	hpValuePattern       = regexp.MustCompile(`(?i)^\d+\s*HP$`)
	kwValuePattern       = regexp.MustCompile(`(?i)^\d+\s*kW$`)
	schValuePattern      = regexp.MustCompile(`(?i)^SCH`)
	plainNumberPattern   = regexp.MustCompile(`^\d+$`)
)

// parseSpecs parses the specification facets out of an option label. The
// pattern family is fixed and tried in priority order: the piping
// "(diameter, SCH n)" form, a generic two value parenthesis, a single value
// parenthesis, and the underscore subtype suffix.
func parseSpecs(label string) map[string]string {
	if m := diameterSchPattern.FindStringSubmatch(label); m != nil {
		return map[string]string{"diameter": m[1], "sch": m[2]}
	}
	if m := twoSpecPattern.FindStringSubmatch(label); m != nil {
		return map[string]string{"spec1": strings.TrimSpace(m[1]), "spec2": strings.TrimSpace(m[2])}
	}
	if m := oneSpecPattern.FindStringSubmatch(label); m != nil {
		return map[string]string{"spec1": strings.TrimSpace(m[1])}
	}
	if parts := strings.Split(label, "_"); len(parts) >= 2 {
		return map[string]string{"subtype": strings.Join(parts[1:], "_")}
	}
	return map[string]string{}
}

func extractNumber(s string) (float64, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	return n, err == nil
}

// sortValues orders facet values numerically when they parse as numbers,
// falling back to the Korean collation order.
func sortValues(values []string, collator *collate.Collator) {
	sort.SliceStable(values, func(i, j int) bool {
		ni, oki := extractNumber(values[i])
		nj, okj := extractNumber(values[j])
		if oki && okj && ni != nj {
			return ni < nj
		}
		return collator.CompareString(values[i], values[j]) < 0
	})
}

// normalizeValues unifies a unit-mixed value set. When some values carry a
// unit suffix and others are bare numbers, the detected unit is appended to
// the bare ones so "100" and "200mm" sort and render consistently.
func normalizeValues(values []string, collator *collate.Collator) []string {
	detectedUnit := ""
	if len(values) > 0 {
		detectedUnit = unitSuffixPattern.FindString(values[0])
	}
	hasUnit, hasBare := false, false
	for _, v := range values {
		if unitSuffixPattern.MatchString(v) {
			hasUnit = true
		}
		if bareNumberPattern.MatchString(v) {
			hasBare = true
		}
	}

	normalized := make([]string, len(values))
	copy(normalized, values)
	if hasUnit && hasBare && detectedUnit != "" {
		for i, v := range normalized {
			if bareNumberPattern.MatchString(v) {
				normalized[i] = v + detectedUnit
			}
		}
	}
	sortValues(normalized, collator)
	return normalized
}

// inferAxisLabel names a facet for display. Known keys have fixed Korean
// labels, unknown ones are inferred from the unit shape of a sample value.
func inferAxisLabel(key string, values []string) string {
	switch key {
	case "diameter":
		return "호칭경(mm)"
	case "sch":
		return "SCH"
	case "subtype":
		return "유형"
	}

	sample := ""
	for _, v := range values {
		if v != "" {
			sample = v
			break
		}
	}
	switch {
	case mmValuePattern.MatchString(sample):
		return "구경(mm)"
	case pressureValuePattern.MatchString(sample):
		return "압력(kg/cm²)"
	case tonnageValuePattern.MatchString(sample):
		return "용량(RT)"
	case hpValuePattern.MatchString(sample):
		return "마력(HP)"
	case kwValuePattern.MatchString(sample):
		return "출력(kW)"
	case schValuePattern.MatchString(sample):
		return "SCH"
	case plainNumberPattern.MatchString(sample):
		return "호칭경"
	}
	switch key {
	case "spec1":
		return "규격1"
	case "spec2":
		return "규격2"
	}
	return key
}

// extractFilterAxes aggregates the parsed specs of all items into facets.
// A facet with a single distinct value cannot narrow anything and is
// dropped.
func extractFilterAxes(items []model.SelectorItem, collator *collate.Collator) []model.FilterAxis {
	valueSets := map[string]map[string]bool{}
	var keyOrder []string
	for _, item := range items {
		for key, val := range item.Specs {
			if valueSets[key] == nil {
				valueSets[key] = map[string]bool{}
				keyOrder = append(keyOrder, key)
			}
			valueSets[key][val] = true
		}
	}
	sort.Strings(keyOrder)

	var axes []model.FilterAxis
	for _, key := range keyOrder {
		if len(valueSets[key]) < 2 {
			continue
		}
		values := make([]string, 0, len(valueSets[key]))
		for v := range valueSets[key] {
			values = append(values, v)
		}
		sort.Strings(values)
		axes = append(axes, model.FilterAxis{
			Key:    key,
			Label:  inferAxisLabel(key, values),
			Values: normalizeValues(values, collator),
		})
	}
	return axes
}

// buildSelectorPanel turns a long option list into a faceted selector. Only
// work type and section options become items; nil when the list is short
// enough to stay flat.
func buildSelectorPanel(options []model.Option, workName string) *model.SelectorPanel {
	if len(options) <= selectorThreshold {
		return nil
	}

	var items []model.SelectorItem
	for _, o := range options {
		if o.Type != model.OptionTypeWorkType && o.Type != model.OptionTypeSection {
			continue
		}
		if o.EntityID == uuid.Nil && o.SectionID == "" {
			continue
		}
		items = append(items, model.SelectorItem{
			Label:         o.Label,
			Query:         o.Query,
			EntityID:      o.EntityID,
			SectionID:     o.SectionID,
			SourceSection: o.SourceSection,
			Type:          o.Type,
			Specs:         parseSpecs(o.Label),
		})
	}
	if len(items) < selectorThreshold {
		return nil
	}

	collator := collate.New(language.Korean)
	sort.SliceStable(items, func(i, j int) bool {
		ni, _ := strconv.Atoi(firstIntPattern.FindString(items[i].Label))
		nj, _ := strconv.Atoi(firstIntPattern.FindString(items[j].Label))
		if ni != nj {
			return ni < nj
		}
		return collator.CompareString(items[i].Label, items[j].Label) < 0
	})

	return &model.SelectorPanel{
		Title:         fmt.Sprintf("%v 규격 선택", workName),
		Filters:       extractFilterAxes(items, collator),
		Items:         items,
		OriginalQuery: workName,
	}
}

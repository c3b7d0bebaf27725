package resolve

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jkwon/costbook/helper"
	"gopkg.in/yaml.v3"
)

//go:embed dictionaries.yaml
var defaultDictionariesYAML []byte

type dictionaryFile struct {
	Loanwords     map[string][]string `yaml:"loanwords"`
	Abbreviations map[string][]string `yaml:"abbreviations"`
}

// Dictionary holds the static loanword and abbreviation maps used for
// synonym expansion. It is immutable after construction; validation errors
// are startup faults, never query time ones.
type Dictionary struct {
	loanwords     map[string][]string
	abbreviations map[string][]string
}

// NewDictionary validates and builds a dictionary. Every key must be at
// least two characters, a one character key matches almost any term through
// substring containment and would poison every expansion.
func NewDictionary(loanwords map[string][]string, abbreviations map[string][]string) (*Dictionary, error) {
	for _, entries := range []map[string][]string{loanwords, abbreviations} {
		for key, values := range entries {
			if utf8.RuneCountInString(key) < 2 {
				return nil, helper.NewError("dictionary validation", fmt.Errorf("key %q is shorter than two characters", key))
			}
			if len(values) == 0 {
				return nil, helper.NewError("dictionary validation", fmt.Errorf("key %q has no expansion terms", key))
			}
		}
	}

	return &Dictionary{
		loanwords:     loanwords,
		abbreviations: abbreviations,
	}, nil
}

// DefaultDictionary loads the embedded domain dictionaries.
func DefaultDictionary() (*Dictionary, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(defaultDictionariesYAML, &file); err != nil {
		return nil, helper.NewError("parse dictionaries", err)
	}
	return NewDictionary(file.Loanwords, file.Abbreviations)
}

// Expand returns the expansion terms of every dictionary key matching any
// of the given terms. Matching is bidirectional substring containment,
// case insensitive: a term matches a key when either contains the other.
// The originals are not part of the result, expansions only ever add OR
// clauses, they never replace a term.
func (d *Dictionary) Expand(terms []string) []string {
	var expanded []string
	seen := map[string]bool{}
	for _, t := range terms {
		seen[strings.ToLower(t)] = true
	}

	for _, entries := range []map[string][]string{d.loanwords, d.abbreviations} {
		for key, values := range entries {
			keyLower := strings.ToLower(key)
			matched := false
			for _, t := range terms {
				termLower := strings.ToLower(t)
				if strings.Contains(termLower, keyLower) || strings.Contains(keyLower, termLower) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			for _, v := range values {
				if seen[strings.ToLower(v)] {
					continue
				}
				seen[strings.ToLower(v)] = true
				expanded = append(expanded, v)
			}
		}
	}

	// map iteration order is random, keep the OR clauses deterministic
	sort.Strings(expanded)

	return expanded
}

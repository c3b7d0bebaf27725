package model

import (
	"net/url"
	"strings"
)

// SectionScope identifies the catalog section a follow-up resolution is
// restricted to, optionally narrowed to one sub_section group. On the wire
// the scope travels as a single key, "13-2-3" or "13-2-3:sub=2.%20TIG용접";
// the encoded form never leaves this type.
type SectionScope struct {
	SectionID  string `json:"section_id"`
	SubSection string `json:"sub_section,omitempty"`
}

// ParseSectionScope decodes a scope key. A malformed sub part is kept
// verbatim rather than rejected, matching how user-pasted keys behave.
func ParseSectionScope(key string) SectionScope {
	if idx := strings.Index(key, ":sub="); idx >= 0 {
		sub := key[idx+len(":sub="):]
		if decoded, err := url.QueryUnescape(sub); err == nil {
			sub = decoded
		}
		return SectionScope{SectionID: key[:idx], SubSection: sub}
	}
	return SectionScope{SectionID: key}
}

// Encode returns the wire form of the scope.
func (s SectionScope) Encode() string {
	if s.SubSection == "" {
		return s.SectionID
	}
	return s.SectionID + ":sub=" + url.QueryEscape(s.SubSection)
}

// IsZero reports whether no scope is set.
func (s SectionScope) IsZero() bool {
	return s.SectionID == ""
}

// BaseSectionID strips a trailing "#..." disambiguation suffix from the
// section id, the form used for display and child prefix lookups.
func (s SectionScope) BaseSectionID() string {
	if idx := strings.Index(s.SectionID, "#"); idx >= 0 {
		return s.SectionID[:idx]
	}
	return s.SectionID
}

// DisplayCode strips the "#..." suffix from any section id for display.
func DisplayCode(sectionID string) string {
	if idx := strings.Index(sectionID, "#"); idx >= 0 {
		return sectionID[:idx]
	}
	return sectionID
}

// Package classify maps one paragraph record of the extracted stream to a
// semantic unit kind plus extracted fields, using an ordered first-match-wins
// list of structural rules over legal-drafting surface cues.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Conventions carries the drafting-convention knobs that vary between
// consolidated codes: the amendment phrases, the revocation phrase, the
// markers that open a new law or a transitory appendix, and the indentation
// threshold that separates sub-alíneas from plain numbered items.
type Conventions struct {
	Name string `yaml:"name" json:"name"`

	// AmendmentPhrases are regex fragments; a parenthetical opening with
	// any of them is captured as the unit's amendment annotation.
	AmendmentPhrases []string `yaml:"amendment_phrases" json:"amendment_phrases"`

	// RevocationPattern marks a unit as revoked when found anywhere in
	// its text.
	RevocationPattern string `yaml:"revocation_pattern" json:"revocation_pattern"`

	// LawMarkerPattern recognizes a centered line that switches the
	// current law; the first capture group is the law name.
	LawMarkerPattern string `yaml:"law_marker_pattern" json:"law_marker_pattern"`

	// LawPrefixPattern extracts an optional short law code from the end
	// of the marker's law name, e.g. "(LO)".
	LawPrefixPattern string `yaml:"law_prefix_pattern" json:"law_prefix_pattern"`

	// TransitoryMarkers recognize the headings that open an appendix
	// whose articles are numbered in their own sequence.
	TransitoryMarkers []TransitoryMarker `yaml:"transitory_markers" json:"transitory_markers"`

	// SubAlineaIndent is the minimum left indent, in twips, for a
	// numeric-paren line to classify as a sub-alínea. Below it the same
	// shape is a plain numbered item; indentation is the only signal
	// distinguishing the two forms.
	SubAlineaIndent int `yaml:"sub_alinea_indent" json:"sub_alinea_indent"`

	// Compiled patterns (populated by Compile).
	amendment  *regexp.Regexp
	revocation *regexp.Regexp
	lawMarker  *regexp.Regexp
	lawPrefix  *regexp.Regexp
}

// TransitoryMarker is one appendix marker pattern.
type TransitoryMarker struct {
	// SectionID addresses the appendix heading, e.g. "adt".
	SectionID string `yaml:"section_id" json:"section_id"`
	// Label is the heading text emitted for the marker.
	Label   string `yaml:"label" json:"label"`
	Pattern string `yaml:"pattern" json:"pattern"`

	compiled *regexp.Regexp
}

// Default returns the compiled conventions of the Regimento Interno and the
// Lei Orgânica consolidations.
func Default() *Conventions {
	c := &Conventions{
		Name: "default",
		AmendmentPhrases: []string{
			`Reda[çc][ãa]o\s+dada`,
			`Revogad[oa]`,
			`Reda[çc][ãa]o\s+reestabelecida`,
			`Acrescentad[oa]`,
			`Renumerad[oa]`,
			`Inclu[ií]d[oa]`,
		},
		RevocationPattern: `(?i)\(Revogad[oa]`,
		LawMarkerPattern:  `(?i)^NORMA:\s*(.+)`,
		LawPrefixPattern:  `\(([A-Z]{2,})\)\s*$`,
		TransitoryMarkers: []TransitoryMarker{
			{
				SectionID: "adt",
				Label:     "ATO DAS DISPOSIÇÕES TRANSITÓRIAS",
				Pattern:   `(?i)ATO\s+D[AO]S?\s+DISPOSI[ÇC][ÕO]ES\s+TRANSIT[ÓO]RIAS`,
			},
			{
				SectionID: "dgt",
				Label:     "DISPOSIÇÕES GERAIS E TRANSITÓRIAS",
				Pattern:   `(?i)DISPOSI[ÇC][ÕO]ES\s+GERAIS\s+E\s+TRANSIT[ÓO]RIAS`,
			},
		},
		SubAlineaIndent: 600,
	}
	if err := c.Compile(); err != nil {
		panic(err) // built-in patterns must compile
	}
	return c
}

// Compile compiles all regex patterns. Returns an error on the first
// pattern that fails to compile.
func (c *Conventions) Compile() error {
	if len(c.AmendmentPhrases) > 0 {
		expr := `(?i)\((` + strings.Join(c.AmendmentPhrases, "|") + `)`
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("compiling amendment phrases: %w", err)
		}
		c.amendment = re
	}
	if c.RevocationPattern != "" {
		re, err := regexp.Compile(c.RevocationPattern)
		if err != nil {
			return fmt.Errorf("compiling revocation pattern %q: %w", c.RevocationPattern, err)
		}
		c.revocation = re
	}
	if c.LawMarkerPattern != "" {
		re, err := regexp.Compile(c.LawMarkerPattern)
		if err != nil {
			return fmt.Errorf("compiling law marker pattern %q: %w", c.LawMarkerPattern, err)
		}
		c.lawMarker = re
	}
	if c.LawPrefixPattern != "" {
		re, err := regexp.Compile(c.LawPrefixPattern)
		if err != nil {
			return fmt.Errorf("compiling law prefix pattern %q: %w", c.LawPrefixPattern, err)
		}
		c.lawPrefix = re
	}
	for i := range c.TransitoryMarkers {
		m := &c.TransitoryMarkers[i]
		re, err := regexp.Compile(m.Pattern)
		if err != nil {
			return fmt.Errorf("compiling transitory marker %q: %w", m.SectionID, err)
		}
		m.compiled = re
	}
	return nil
}

// IsCompiled reports whether Compile has run.
func (c *Conventions) IsCompiled() bool {
	return c.amendment != nil || c.revocation != nil || c.lawMarker != nil
}

// Validate checks required fields before registration.
func (c *Conventions) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("conventions name is required")
	}
	if c.SubAlineaIndent < 0 {
		return fmt.Errorf("sub_alinea_indent must be non-negative")
	}
	return nil
}

// AmendmentNote scans text for a drafting phrase and returns the matched
// phrase together with its fully balanced parenthetical, tracking nested
// parentheses. Returns "" when no phrase is found.
func (c *Conventions) AmendmentNote(text string) string {
	if c.amendment == nil {
		return ""
	}
	loc := c.amendment.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	start := loc[0]
	depth := 0
	for j := start; j < len(text); j++ {
		switch text[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[start : j+1]
			}
		}
	}
	// Unbalanced source text: keep everything from the phrase on.
	return text[start:]
}

// IsRevocation reports whether the text carries the revocation phrase.
// Revocation is independent of the superseded flag.
func (c *Conventions) IsRevocation(text string) bool {
	return c.revocation != nil && c.revocation.MatchString(text)
}

// LawMarker matches a centered line against the law marker pattern and
// returns the law name and its optional short prefix code.
func (c *Conventions) LawMarker(text string) (name, prefix string, ok bool) {
	if c.lawMarker == nil {
		return "", "", false
	}
	m := c.lawMarker.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	name = strings.TrimSpace(m[1])
	if c.lawPrefix != nil {
		if pm := c.lawPrefix.FindStringSubmatch(name); pm != nil {
			prefix = pm[1]
			name = strings.TrimSpace(strings.TrimSuffix(name, pm[0]))
		}
	}
	return name, prefix, true
}

// TransitoryMarker matches a centered line against the appendix markers and
// returns the matched marker.
func (c *Conventions) TransitoryMarker(text string) (TransitoryMarker, bool) {
	for _, m := range c.TransitoryMarkers {
		if m.compiled != nil && m.compiled.MatchString(text) {
			return m, true
		}
	}
	return TransitoryMarker{}, false
}

// Package refs parses spreadsheet-declared subject references in the
// drafting convention of the remissive index and checks them against the
// articles actually present in a parsed document.
package refs

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/prototiposlegisla/regimento/pkg/model"
)

// Ref is one declared reference to a provision.
type Ref struct {
	Art       string `json:"art"`
	Detail    string `json:"detail,omitempty"` // e.g. "§ 1º", "II", "§ú"
	LawPrefix string `json:"law_prefix,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

// Entry is one subject row of the remissive index source.
type Entry struct {
	Subject    string   `json:"subject"`
	SubSubject string   `json:"sub_subject,omitempty"`
	Refs       []Ref    `json:"refs,omitempty"`
	Vides      []string `json:"vides,omitempty"`
}

var (
	reLawPrefix  = regexp.MustCompile(`^([A-Z]{2,})\s*:\s*(.+)$`)
	reHint       = regexp.MustCompile(`\(([^)]+)\)\s*$`)
	reRange      = regexp.MustCompile(`^(\d+)\s*[-–—]\s*(\d+)$`)
	reArtNumber  = regexp.MustCompile(`^\d+[-A-Za-z]*$`)
	reLettered   = regexp.MustCompile(`^(\d+)-[A-Za-z]`)
	reDetailPara = regexp.MustCompile(`^[§Ss]\s*(\d+)$`)
	reDetailP    = regexp.MustCompile(`(?i)^p(\d+)$`)
	reRoman      = regexp.MustCompile(`^[IVXLC]+$`)
	reAlineaOne  = regexp.MustCompile(`^[a-z]\)?$`)
	reItemOne    = regexp.MustCompile(`^\d+$`)
	reParaDetail = regexp.MustCompile(`^§(\d+|ú|u)$`)
	reParaNum    = regexp.MustCompile(`^§\d+$`)
)

// ParseDeviceLines converts a newline-separated device declaration into
// references. knownLettered lists lettered article numbers ("212-A") whose
// base number should expand inside ranges.
//
// Accepted forms: "211-275" (range), "175,II", "176,§10", "176,PU", "176",
// "LO:23", "LO:23,II", each optionally followed by a hint in parentheses.
func ParseDeviceLines(raw string, knownLettered map[string]bool) []Ref {
	var refs []Ref
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lawPrefix := ""
		if m := reLawPrefix.FindStringSubmatch(line); m != nil {
			lawPrefix = m[1]
			line = strings.TrimSpace(m[2])
		}

		hint := ""
		if m := reHint.FindStringSubmatchIndex(line); m != nil {
			hint = strings.TrimSpace(line[m[2]:m[3]])
			line = strings.TrimSpace(line[:m[0]])
		}

		if m := reRange.FindStringSubmatch(line); m != nil {
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			for n := start; n <= end; n++ {
				refs = append(refs, Ref{Art: strconv.Itoa(n), LawPrefix: lawPrefix, Hint: hint})
				for _, lettered := range sortedKeys(knownLettered) {
					if lm := reLettered.FindStringSubmatch(lettered); lm != nil {
						if base, _ := strconv.Atoi(lm[1]); base == n {
							refs = append(refs, Ref{Art: lettered, LawPrefix: lawPrefix, Hint: hint})
						}
					}
				}
			}
			continue
		}

		art, detail, hasDetail := strings.Cut(line, ",")
		art = strings.TrimSpace(art)
		if !reArtNumber.MatchString(art) {
			continue
		}
		ref := Ref{Art: art, LawPrefix: lawPrefix, Hint: hint}
		if hasDetail {
			ref.Detail = NormalizeDetail(detail)
		}
		refs = append(refs, ref)
	}
	return refs
}

// NormalizeDetail normalizes a detail declaration for display: "§10" and
// "p10" become "§ 10º", "PU" becomes "§ú", roman numerals and alíneas pass
// through.
func NormalizeDetail(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "PU") || raw == "§ú" {
		return "§ú"
	}
	if m := reDetailPara.FindStringSubmatch(raw); m != nil {
		return "§ " + m[1] + "º"
	}
	if m := reDetailP.FindStringSubmatch(raw); m != nil {
		return "§ " + m[1] + "º"
	}
	return raw
}

// ValidateDetail checks a raw detail declaration against the filling
// instructions. It returns "" when valid, or a message describing the
// deviation.
func ValidateDetail(detail string) string {
	d := strings.TrimSpace(detail)

	if strings.EqualFold(d, "caput") {
		return ""
	}
	if strings.EqualFold(d, "PU") || d == "§ú" || d == "§u" {
		return ""
	}
	if reParaNum.MatchString(d) {
		return ""
	}

	parts := strings.Split(d, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		p := parts[0]
		if reRoman.MatchString(p) || reAlineaOne.MatchString(p) || reItemOne.MatchString(p) {
			return ""
		}
		return fmt.Sprintf("unknown detail: %q", d)
	case 2:
		p0, p1 := parts[0], parts[1]
		switch {
		case reRoman.MatchString(p0) && reRoman.MatchString(p1):
			return fmt.Sprintf("multiple incisos on one line, use separate lines: %q and %q", p0, p1)
		case reRoman.MatchString(p0) && reAlineaOne.MatchString(p1):
			return ""
		case reAlineaOne.MatchString(p0) && reItemOne.MatchString(p1):
			return ""
		case reAlineaOne.MatchString(p0) && reAlineaOne.MatchString(p1):
			return "multiple alíneas on one line, use separate lines"
		case reParaDetail.MatchString(p0) && reRoman.MatchString(p1):
			return ""
		}
		return fmt.Sprintf("invalid detail structure: %q", d)
	case 3:
		if reRoman.MatchString(parts[0]) && reAlineaOne.MatchString(parts[1]) && reItemOne.MatchString(parts[2]) {
			return ""
		}
		return fmt.Sprintf("invalid detail structure (expected inciso,alínea,item): %q", d)
	}
	return fmt.Sprintf("detail has too many parts: %q", d)
}

// Problem is one cross-reference deviation.
type Problem struct {
	Subject string `json:"subject"`
	Ref     Ref    `json:"ref"`
	Message string `json:"message"`
}

// Check verifies every declared reference against the set of (law prefix,
// article number) pairs actually present in the document.
func Check(doc *model.Document, entries []Entry) []Problem {
	present := make(map[string]bool)
	lawNames := make(map[string]bool)
	for _, a := range doc.Articles() {
		present[a.LawPrefix+":"+a.Number] = true
		lawNames[a.LawPrefix] = true
	}

	var problems []Problem
	for _, e := range entries {
		subject := e.Subject
		if e.SubSubject != "" {
			subject += " — " + e.SubSubject
		}
		for _, r := range e.Refs {
			if !lawNames[r.LawPrefix] {
				problems = append(problems, Problem{
					Subject: subject,
					Ref:     r,
					Message: fmt.Sprintf("unknown law prefix %q", r.LawPrefix),
				})
				continue
			}
			if !present[r.LawPrefix+":"+r.Art] {
				problems = append(problems, Problem{
					Subject: subject,
					Ref:     r,
					Message: fmt.Sprintf("article %s not found in document", r.Art),
				})
			}
		}
	}
	return problems
}

// LoadCSV reads subject entries from CSV with columns
// subject, sub_subject, devices, vides. The devices and vides cells may hold
// several newline-separated values, mirroring the spreadsheet layout.
func LoadCSV(r io.Reader, knownLettered map[string]bool) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading reference CSV: %w", err)
	}

	var entries []Entry
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "subject") {
			continue // header row
		}
		if len(rec) < 3 {
			continue
		}
		subject := strings.TrimSpace(rec[0])
		if subject == "" {
			continue
		}
		entry := Entry{
			Subject:    subject,
			SubSubject: strings.TrimSpace(rec[1]),
			Refs:       ParseDeviceLines(rec[2], knownLettered),
		}
		if len(rec) > 3 {
			for _, v := range strings.Split(rec[3], "\n") {
				if v = strings.TrimSpace(v); v != "" {
					entry.Vides = append(entry.Vides, v)
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

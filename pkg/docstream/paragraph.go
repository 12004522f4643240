// Package docstream defines the paragraph-stream contract between the
// word-processing extraction layer and the structure builder, and provides
// the WordprocessingML container reader that produces it.
package docstream

import (
	"strings"

	"github.com/prototiposlegisla/regimento/pkg/model"
)

// Paragraph is one ordered record of the extracted paragraph stream.
type Paragraph struct {
	// Text is the concatenated visible text of all runs, trimmed.
	Text string
	Runs []model.Run
	// Centered is true when the paragraph is center-justified.
	Centered bool
	// Struck is true when more than half of the non-whitespace characters
	// across all runs are struck through. Word often leaves the identifier
	// prefix un-struck, so a character-count majority is used instead of
	// an all-runs check.
	Struck bool
	// IndentLeft is the left indentation in twips.
	IndentLeft int
	// Bookmark is the name of the first bookmark anchored in the
	// paragraph, or empty.
	Bookmark string
	// FootnoteIDs lists the footnote references anchored in the
	// paragraph, in order.
	FootnoteIDs []int
}

// Disposition says what the builder should do with a resolved footnote,
// after the private/summary prefix conventions have been applied to its
// raw text.
type Disposition int

const (
	// Keep retains the note as a (possibly private) footnote.
	Keep Disposition = iota
	// Summarize captures the note as the enclosing article's summary
	// string; it is not shown as a footnote.
	Summarize
	// Exclude drops the note entirely.
	Exclude
)

// FootnoteRecord is one resolved footnote from the store.
type FootnoteRecord struct {
	Paragraphs  []model.FootnotePara
	Disposition Disposition
	// Private marks notes carrying the private prefix; they are numbered
	// independently, restarting at 1 within each article.
	Private bool
	// Summary holds the summary text when Disposition is Summarize.
	Summary string
}

// FootnoteStore resolves footnote reference ids found on paragraphs.
type FootnoteStore interface {
	Resolve(id int) (FootnoteRecord, bool)
}

// MapStore is an in-memory FootnoteStore.
type MapStore map[int]FootnoteRecord

// Resolve implements FootnoteStore.
func (m MapStore) Resolve(id int) (FootnoteRecord, bool) {
	rec, ok := m[id]
	return rec, ok
}

// Classify applies the private/summary prefix conventions to the raw first
// text of a footnote: "b " marks a private note (prefix stripped), "s "
// marks a one-line article summary. includePrivate controls whether private
// notes are kept or excluded entirely.
func Classify(paras []model.FootnotePara, includePrivate bool) FootnoteRecord {
	first := ""
	for _, p := range paras {
		first = strings.TrimSpace(p.Text())
		if first != "" {
			break
		}
	}
	lower := strings.ToLower(first)

	switch {
	case strings.HasPrefix(lower, "s "):
		return FootnoteRecord{
			Disposition: Summarize,
			Summary:     strings.TrimSpace(first[2:]),
		}
	case lower == "b" || strings.HasPrefix(lower, "b "):
		if !includePrivate {
			return FootnoteRecord{Disposition: Exclude}
		}
		return FootnoteRecord{
			Paragraphs:  stripPrivatePrefix(paras),
			Disposition: Keep,
			Private:     true,
		}
	}
	return FootnoteRecord{Paragraphs: paras, Disposition: Keep}
}

// stripPrivatePrefix removes the leading "b " marker from the first
// non-empty paragraph's first run.
func stripPrivatePrefix(paras []model.FootnotePara) []model.FootnotePara {
	out := make([]model.FootnotePara, len(paras))
	copy(out, paras)
	for pi := range out {
		if strings.TrimSpace(out[pi].Text()) == "" {
			continue
		}
		runs := make([]model.Run, len(out[pi].Runs))
		copy(runs, out[pi].Runs)
		for ri := range runs {
			trimmed := strings.TrimLeft(runs[ri].Text, " \u00a0")
			lower := strings.ToLower(trimmed)
			if strings.HasPrefix(lower, "b ") {
				runs[ri].Text = trimmed[2:]
				out[pi].Runs = runs
				return out
			}
			if lower == "b" {
				runs[ri].Text = ""
				out[pi].Runs = runs
				return out
			}
		}
		break
	}
	return out
}

// Package model defines the intermediate representation of a consolidated
// legal code: section headings, article blocks, and their nested provision
// units, including amendment history and footnotes.
package model

import "strings"

// UnitKind identifies the semantic role of a document unit.
type UnitKind string

const (
	// Heading kinds (centered text).
	KindTitle      UnitKind = "TITLE"
	KindChapter    UnitKind = "CHAPTER"
	KindSection    UnitKind = "SECTION"
	KindSubsection UnitKind = "SUBSECTION"
	KindSubtitle   UnitKind = "SUBTITLE"

	// KindLaw marks a boundary between consolidated laws, or the start of
	// a transitory appendix.
	KindLaw UnitKind = "LAW"

	// Body kinds.
	KindArticle       UnitKind = "ARTICLE"
	KindSoleParagraph UnitKind = "SOLE_PARAGRAPH"
	KindParagraph     UnitKind = "PARAGRAPH"
	KindInciso        UnitKind = "INCISO"
	KindAlinea        UnitKind = "ALINEA"
	KindSubAlinea     UnitKind = "SUB_ALINEA"
	KindItem          UnitKind = "ITEM"

	KindEmpty UnitKind = "EMPTY"
	KindOther UnitKind = "OTHER"
)

// IsHeading reports whether the kind is a centered heading kind.
func (k UnitKind) IsHeading() bool {
	switch k {
	case KindTitle, KindChapter, KindSection, KindSubsection, KindSubtitle:
		return true
	}
	return false
}

// IsSubProvision reports whether the kind is a sub-provision of an article
// (anything that attaches to an open article block).
func (k UnitKind) IsSubProvision() bool {
	switch k {
	case KindSoleParagraph, KindParagraph, KindInciso, KindAlinea,
		KindSubAlinea, KindItem, KindOther:
		return true
	}
	return false
}

// Run is a span of text with inline formatting. Runs are immutable once
// produced by the extraction layer.
type Run struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Strike bool   `json:"strike,omitempty"`
	URL    string `json:"url,omitempty"`
	Anchor string `json:"anchor,omitempty"`
}

// FootnotePara is one paragraph inside a footnote.
type FootnotePara struct {
	Runs   []Run `json:"runs"`
	Indent bool  `json:"indent,omitempty"`
}

// Text returns the concatenated visible text of the paragraph.
func (p FootnotePara) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Footnote is a numbered annotation attached to a unit. Public footnotes
// share one running counter across the whole document; private footnotes
// are renumbered starting at 1 within each article.
type Footnote struct {
	Number     int            `json:"number"`
	Paragraphs []FootnotePara `json:"paragraphs"`
	Private    bool           `json:"private,omitempty"`
}

// Unit is the generic hierarchical node for a provision fragment: an article
// caput, a numbered or sole paragraph, an inciso, an alínea, a sub-alínea,
// a plain numbered item, or an unclassified fragment. A Unit exclusively
// owns its runs, footnotes and children.
type Unit struct {
	Kind       UnitKind   `json:"kind"`
	Identifier string     `json:"identifier"` // e.g. "§ 1º", "II", "a)"
	UID        string     `json:"uid"`        // e.g. "art43p1II"
	Runs       []Run      `json:"runs"`
	Footnotes  []Footnote `json:"footnotes,omitempty"`
	Revoked    bool       `json:"revoked,omitempty"`
	Historical bool       `json:"historical,omitempty"` // superseded redaction
	// AmendmentNote records the drafting annotation that changed this
	// unit, e.g. "(Redação dada pela Resolução nº 21/2017)".
	AmendmentNote string  `json:"amendment_note,omitempty"`
	Children      []*Unit `json:"children,omitempty"`
}

// Text returns the concatenated visible text of all runs.
func (u *Unit) Text() string {
	var b strings.Builder
	for _, r := range u.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// ArticleBlock aggregates a legal article: its current caput, its
// sub-provisions in document order (historical redactions interleaved and
// flagged rather than removed), and fully superseded whole-article rewrites.
type ArticleBlock struct {
	// Number is the article number within its law scope, possibly
	// lettered ("4-A") and possibly transitory-prefixed ("ADT1").
	Number     string  `json:"number"`
	Transitory bool    `json:"transitory,omitempty"`
	Caput      *Unit   `json:"caput"`
	Children   []*Unit `json:"children"`
	// Superseded holds caputs and children of earlier whole-article
	// restatements, flagged historical.
	Superseded []*Unit `json:"superseded,omitempty"`
	Summary    string  `json:"summary,omitempty"`
	Revoked    bool    `json:"revoked,omitempty"`
	LawName    string  `json:"law_name,omitempty"`
	// LawPrefix identifies the owning law; empty means the default
	// (primary) law of the document.
	LawPrefix string `json:"law_prefix,omitempty"`
}

// CurrentChildren returns the non-historical children in document order.
func (a *ArticleBlock) CurrentChildren() []*Unit {
	var out []*Unit
	for _, c := range a.Children {
		if !c.Historical {
			out = append(out, c)
		}
	}
	return out
}

// SectionHeading is a structural marker: title, chapter, section, subsection,
// subtitle, or a law/appendix boundary.
type SectionHeading struct {
	Kind     UnitKind `json:"kind"`
	Text     string   `json:"text"`
	Subtitle string   `json:"subtitle,omitempty"`
	// SectionID is the unique identifier used for addressing, e.g.
	// "tit1", "cap4", "sec12", "norma2", "adt".
	SectionID string `json:"section_id,omitempty"`
}

// Element is either a *SectionHeading or an *ArticleBlock.
type Element interface {
	isElement()
}

func (*SectionHeading) isElement() {}
func (*ArticleBlock) isElement()   {}

// Document is the parsed document root: an ordered sequence mixing section
// headings and article blocks, exactly mirroring source order. The ordering
// drives hierarchy reconstruction downstream and must be preserved.
type Document struct {
	Elements []Element
}

// Articles returns all article blocks in document order.
func (d *Document) Articles() []*ArticleBlock {
	var out []*ArticleBlock
	for _, el := range d.Elements {
		if a, ok := el.(*ArticleBlock); ok {
			out = append(out, a)
		}
	}
	return out
}

// Article returns the article with the given number in the given law scope,
// or nil if not found.
func (d *Document) Article(lawPrefix, number string) *ArticleBlock {
	for _, a := range d.Articles() {
		if a.LawPrefix == lawPrefix && a.Number == number {
			return a
		}
	}
	return nil
}

// Statistics summarizes a parsed document for validation output.
type Statistics struct {
	Headings  int `json:"headings"`
	Articles  int `json:"articles"`
	Units     int `json:"units"`
	Footnotes int `json:"footnotes"`
	Revoked   int `json:"revoked"`
}

// Statistics returns counts over the document.
func (d *Document) Statistics() Statistics {
	var s Statistics
	for _, el := range d.Elements {
		switch e := el.(type) {
		case *SectionHeading:
			s.Headings++
		case *ArticleBlock:
			s.Articles++
			if e.Revoked {
				s.Revoked++
			}
			if e.Caput != nil {
				countUnit(e.Caput, &s)
			}
			for _, c := range e.Children {
				countUnit(c, &s)
			}
			for _, v := range e.Superseded {
				countUnit(v, &s)
			}
		}
	}
	return s
}

func countUnit(u *Unit, s *Statistics) {
	s.Units++
	s.Footnotes += len(u.Footnotes)
	for _, c := range u.Children {
		countUnit(c, s)
	}
}

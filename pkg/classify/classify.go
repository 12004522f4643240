package classify

import (
	"regexp"
	"strings"

	"github.com/prototiposlegisla/regimento/pkg/docstream"
	"github.com/prototiposlegisla/regimento/pkg/model"
)

// Structural idiom patterns. These encode the drafting surface of Brazilian
// municipal legal codes and are deliberately not configurable: rule ordering
// and pattern shape are a tested contract, since later rules are reachable
// only when earlier ones fail.
var (
	reTitle      = regexp.MustCompile(`(?i)^T[ÍI]TULO\s+`)
	reChapter    = regexp.MustCompile(`(?i)^CAP[ÍI]TULO\s+`)
	reSection    = regexp.MustCompile(`(?i)^SE[ÇC][ÃA]O\s+`)
	reSubsection = regexp.MustCompile(`(?i)^SUBSE[ÇC][ÃA]O\s+`)

	// Matches "Art. 43", "Art. 183º-A", "Art. 4ºA", "Art. 4º-C.".
	// Group 1 = number, group 2 = ordinal mark, groups 3/4 = letter
	// suffix with and without a dash; both forms normalize to "N-L".
	reArticle = regexp.MustCompile(
		`^Art\.\s*(\d+)([ºª°])?\s*(?:[-–]([A-H])[.\s\x{00A0}]|([A-H])\s*[-–—.])?`)

	reSolePara = regexp.MustCompile(`(?i)^Par[aá]grafo\s+[uú]nico`)
	reNumPara  = regexp.MustCompile(`^[§Ss]\s*(\d+)(\.?[ºª°]?)`)
	// A leading lowercase "l" is a known transcription artifact for "I".
	reInciso      = regexp.MustCompile(`^l?[IVXLC]+\s*[-–—]`)
	reIncisoLabel = regexp.MustCompile(`^(l?[IVXLC]+)`)
	reAlinea      = regexp.MustCompile(`^[a-z]\)`)
	reNumParen    = regexp.MustCompile(`^(\d+)\)`)
	reItem        = regexp.MustCompile(`^(\d+)\s*[-–—]`)
)

// Result is the classification of one paragraph record.
type Result struct {
	Kind       model.UnitKind
	Identifier string
	// ArticleNumber is set only for articles, normalized to "N" or "N-L".
	ArticleNumber string
}

// Classifier maps paragraph records to semantic unit kinds. Recognition is
// an ordered, first-match-wins rule list.
type Classifier struct {
	conv  *Conventions
	rules []rule
}

type rule struct {
	name  string
	match func(p docstream.Paragraph, text string) (Result, bool)
}

// New creates a Classifier with the given conventions. Nil conventions use
// the defaults.
func New(conv *Conventions) *Classifier {
	if conv == nil {
		conv = Default()
	}
	c := &Classifier{conv: conv}
	c.rules = []rule{
		{"empty", matchEmpty},
		{"title", centered(reTitle, model.KindTitle)},
		{"chapter", centered(reChapter, model.KindChapter)},
		{"section", centered(reSection, model.KindSection)},
		{"subsection", centered(reSubsection, model.KindSubsection)},
		{"subtitle", matchSubtitle},
		{"article", matchArticle},
		{"sole-paragraph", matchSolePara},
		{"numbered-paragraph", matchNumPara},
		{"inciso", matchInciso},
		{"alinea", matchAlinea},
		{"sub-alinea", c.matchSubAlinea},
		{"item", matchItem},
		{"numbered-paren-item", matchNumParenItem},
	}
	return c
}

// RuleOrder returns the rule names in evaluation order.
func (c *Classifier) RuleOrder() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

// Conventions returns the conventions the classifier was built with.
func (c *Classifier) Conventions() *Conventions {
	return c.conv
}

// Classify returns the semantic kind and extracted fields for one paragraph.
// Unrecognized shapes classify as Other rather than failing.
func (c *Classifier) Classify(p docstream.Paragraph) Result {
	text := strings.TrimSpace(p.Text)
	for _, r := range c.rules {
		if res, ok := r.match(p, text); ok {
			return res
		}
	}
	return Result{Kind: model.KindOther}
}

func matchEmpty(_ docstream.Paragraph, text string) (Result, bool) {
	if text == "" {
		return Result{Kind: model.KindEmpty}, true
	}
	return Result{}, false
}

func centered(re *regexp.Regexp, kind model.UnitKind) func(docstream.Paragraph, string) (Result, bool) {
	return func(p docstream.Paragraph, text string) (Result, bool) {
		if !p.Centered || !re.MatchString(text) {
			return Result{}, false
		}
		return Result{Kind: kind, Identifier: text}, true
	}
}

// matchSubtitle absorbs any centered text the heading patterns did not
// claim. The builder either attaches it to the preceding heading or
// promotes it to an implicit section.
func matchSubtitle(p docstream.Paragraph, text string) (Result, bool) {
	if !p.Centered {
		return Result{}, false
	}
	return Result{Kind: model.KindSubtitle, Identifier: text}, true
}

func matchArticle(_ docstream.Paragraph, text string) (Result, bool) {
	m := reArticle.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	num, ordinal := m[1], m[2]
	letterDashed, letterAttached := m[3], m[4]
	letter := letterDashed
	if letter == "" {
		letter = letterAttached
	}

	number := num
	if letter != "" {
		number = num + "-" + letter
	}

	var label string
	switch {
	case letterDashed != "":
		label = "Art. " + num + ordinal + "-" + letterDashed
	case letterAttached != "":
		label = "Art. " + num + ordinal + letterAttached
	default:
		label = "Art. " + num + ordinal
	}
	return Result{Kind: model.KindArticle, Identifier: label, ArticleNumber: number}, true
}

func matchSolePara(_ docstream.Paragraph, text string) (Result, bool) {
	if !reSolePara.MatchString(text) {
		return Result{}, false
	}
	return Result{Kind: model.KindSoleParagraph, Identifier: "Parágrafo único"}, true
}

func matchNumPara(_ docstream.Paragraph, text string) (Result, bool) {
	m := reNumPara.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	// Normalize trailing punctuation and ordinal variants so that two
	// spellings of the same paragraph compare equal: "§ 1.º" and
	// "§ 10." both yield the standard ordinal mark, and the degree
	// sign U+00B0 becomes the masculine ordinal U+00BA.
	suffix := strings.ReplaceAll(strings.TrimLeft(m[2], "."), "°", "º")
	if suffix == "" {
		suffix = "º"
	}
	return Result{Kind: model.KindParagraph, Identifier: "§ " + m[1] + suffix}, true
}

func matchInciso(_ docstream.Paragraph, text string) (Result, bool) {
	if !reInciso.MatchString(text) {
		return Result{}, false
	}
	label := ""
	if m := reIncisoLabel.FindStringSubmatch(text); m != nil {
		label = fixRomanTypo(m[1])
	}
	return Result{Kind: model.KindInciso, Identifier: label}, true
}

func matchAlinea(_ docstream.Paragraph, text string) (Result, bool) {
	if !reAlinea.MatchString(text) {
		return Result{}, false
	}
	return Result{Kind: model.KindAlinea, Identifier: text[:1] + ")"}, true
}

// matchSubAlinea classifies a numeric-paren line as a sub-alínea only at or
// above the indent threshold; below it the same shape falls through to the
// plain item rules.
func (c *Classifier) matchSubAlinea(p docstream.Paragraph, text string) (Result, bool) {
	m := reNumParen.FindStringSubmatch(text)
	if m == nil || p.IndentLeft < c.conv.SubAlineaIndent {
		return Result{}, false
	}
	return Result{Kind: model.KindSubAlinea, Identifier: m[0]}, true
}

func matchItem(_ docstream.Paragraph, text string) (Result, bool) {
	m := reItem.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	return Result{Kind: model.KindItem, Identifier: m[1]}, true
}

// matchNumParenItem catches "1)" lines that lacked the sub-alínea indent.
func matchNumParenItem(_ docstream.Paragraph, text string) (Result, bool) {
	m := reNumParen.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	return Result{Kind: model.KindItem, Identifier: m[0]}, true
}

// fixRomanTypo corrects the leading lowercase "l" transcription artifact.
func fixRomanTypo(roman string) string {
	if strings.HasPrefix(roman, "l") {
		return "I" + roman[1:]
	}
	return roman
}

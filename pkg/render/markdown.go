// Package render produces marked-up text from parsed documents. The
// markdown form is aimed at language-model and diff consumption: stable
// heading levels, explicit identifiers, superseded versions separated out.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/prototiposlegisla/regimento/pkg/model"
)

// Markdown renders the whole document.
func Markdown(doc *model.Document) string {
	var parts []string
	for _, el := range doc.Elements {
		switch e := el.(type) {
		case *model.SectionHeading:
			parts = append(parts, renderHeading(e))
		case *model.ArticleBlock:
			parts = append(parts, renderArticle(e))
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func renderHeading(h *model.SectionHeading) string {
	prefix := "###"
	switch h.Kind {
	case model.KindTitle, model.KindLaw:
		prefix = "#"
	case model.KindChapter:
		prefix = "##"
	}
	text := h.Text
	if h.Subtitle != "" {
		text += " — " + h.Subtitle
	}
	return prefix + " " + text
}

func renderArticle(art *model.ArticleBlock) string {
	var parts []string

	label := art.Number
	if art.LawPrefix != "" {
		label = art.LawPrefix + ":" + label
	}
	heading := "#### Art. " + label
	if art.Summary != "" {
		heading += " — " + art.Summary
	}
	parts = append(parts, heading)

	if art.Caput != nil {
		if text := strings.TrimSpace(renderAfterIdentifier(art.Caput)); text != "" {
			parts = append(parts, text)
		}
		for _, fn := range art.Caput.Footnotes {
			parts = append(parts, renderFootnote(fn))
		}
	}

	for _, child := range art.Children {
		if child.Historical {
			continue
		}
		parts = append(parts, indentFor(child.Kind)+"**"+child.Identifier+"** — "+renderAfterIdentifier(child))
		for _, fn := range child.Footnotes {
			parts = append(parts, renderFootnote(fn))
		}
	}

	var old []*model.Unit
	old = append(old, art.Superseded...)
	for _, child := range art.Children {
		if child.Historical {
			old = append(old, child)
		}
	}
	if len(old) > 0 {
		parts = append(parts, "---", "*Versões anteriores deste artigo:*")
		for _, v := range old {
			line := "*[Versão supersedida]* " + strings.ReplaceAll(v.Text(), "\u00a0", " ")
			if v.AmendmentNote != "" {
				line += " *" + v.AmendmentNote + "*"
			}
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, "\n\n")
}

func indentFor(kind model.UnitKind) string {
	switch kind {
	case model.KindAlinea:
		return "  "
	case model.KindSubAlinea, model.KindItem:
		return "    "
	}
	return ""
}

// renderAfterIdentifier renders a unit's runs with the leading identifier
// label and its separator stripped, keeping run formatting.
func renderAfterIdentifier(u *model.Unit) string {
	full := u.Text()
	skip := identifierSkip(full, u.Identifier)
	return renderRunsFrom(u.Runs, skip)
}

// identifierSkip finds how many bytes of the full text are covered by the
// identifier plus its trailing separator. Ordinal glyphs in the label may
// appear with a stray period in the source, so a flexible variant is tried
// too.
func identifierSkip(full, identifier string) int {
	if identifier == "" {
		return 0
	}
	escaped := regexp.QuoteMeta(identifier)
	patterns := []string{
		escaped + `\s*[-–—.]\s*`,
		escaped + `\s+`,
	}
	if strings.ContainsAny(identifier, "ºª°") {
		flex := escaped
		for _, c := range []string{"º", "ª", "°"} {
			flex = strings.ReplaceAll(flex, c, `\.?`+c)
		}
		patterns = append(patterns, flex+`\s*[-–—.]\s*`, flex+`\s+`)
	}

	for _, pat := range patterns {
		re, err := regexp.Compile(`(?i)^` + pat)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(full); loc != nil {
			return loc[1]
		}
	}
	return len(identifier)
}

func renderRunsFrom(runs []model.Run, skip int) string {
	var b strings.Builder
	remaining := skip
	for _, run := range runs {
		if remaining >= len(run.Text) {
			remaining -= len(run.Text)
			continue
		}
		text := run.Text[remaining:]
		remaining = 0

		text = strings.ReplaceAll(text, "\u00a0", " ")

		if run.URL != "" {
			text = "[" + text + "](" + run.URL + ")"
		}
		if run.Strike {
			text = "~~" + text + "~~"
		}
		if run.Italic {
			text = "*" + text + "*"
		}
		if run.Bold {
			text = "**" + text + "**"
		}
		b.WriteString(text)
	}
	return b.String()
}

func renderFootnote(fn model.Footnote) string {
	noteID := strconv.Itoa(fn.Number)
	if fn.Private {
		noteID = "b" + noteID
	}

	var texts []string
	for _, para := range fn.Paragraphs {
		if t := strings.TrimSpace(renderRunsFrom(para.Runs, 0)); t != "" {
			texts = append(texts, t)
		}
	}
	line := "> **Nota " + noteID + ":** " + strings.Join(texts, " ")
	if fn.Private {
		line += " *(nota privada)*"
	}
	return line
}

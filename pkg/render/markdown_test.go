package render

import (
	"strings"
	"testing"

	"github.com/prototiposlegisla/regimento/pkg/model"
)

func TestMarkdownHeadings(t *testing.T) {
	doc := &model.Document{Elements: []model.Element{
		&model.SectionHeading{Kind: model.KindTitle, Text: "TÍTULO I", Subtitle: "Da Câmara"},
		&model.SectionHeading{Kind: model.KindChapter, Text: "CAPÍTULO I"},
		&model.SectionHeading{Kind: model.KindSection, Text: "SEÇÃO I"},
		&model.SectionHeading{Kind: model.KindLaw, Text: "Lei Orgânica do Município"},
	}}

	out := Markdown(doc)
	for _, want := range []string{
		"# TÍTULO I — Da Câmara\n",
		"## CAPÍTULO I\n",
		"### SEÇÃO I\n",
		"# Lei Orgânica do Município\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownArticle(t *testing.T) {
	doc := &model.Document{Elements: []model.Element{
		&model.ArticleBlock{
			Number:  "43",
			Summary: "Eleição da Mesa",
			Caput: &model.Unit{
				Kind:       model.KindArticle,
				Identifier: "Art. 43º",
				Runs:       []model.Run{{Text: "Art. 43º - A Mesa será eleita por maioria."}},
			},
			Children: []*model.Unit{
				{
					Kind:       model.KindInciso,
					Identifier: "I",
					Runs:       []model.Run{{Text: "I - primeiro escrutínio;"}},
				},
				{
					Kind:       model.KindAlinea,
					Identifier: "a)",
					Runs:       []model.Run{{Text: "a) votação nominal;"}},
				},
			},
		},
	}}

	out := Markdown(doc)

	if !strings.Contains(out, "#### Art. 43 — Eleição da Mesa") {
		t.Errorf("missing article heading:\n%s", out)
	}
	if !strings.Contains(out, "A Mesa será eleita por maioria.") {
		t.Errorf("missing caput body:\n%s", out)
	}
	if strings.Contains(out, "Art. 43º - A Mesa") {
		t.Errorf("caput identifier not stripped:\n%s", out)
	}
	if !strings.Contains(out, "**I** — primeiro escrutínio;") {
		t.Errorf("missing inciso line:\n%s", out)
	}
	if !strings.Contains(out, "  **a)** — votação nominal;") {
		t.Errorf("missing indented alínea line:\n%s", out)
	}
}

func TestMarkdownLawPrefixInHeading(t *testing.T) {
	doc := &model.Document{Elements: []model.Element{
		&model.ArticleBlock{
			Number:    "23",
			LawPrefix: "LO",
			Caput: &model.Unit{
				Identifier: "Art. 23",
				Runs:       []model.Run{{Text: "Art. 23 - Texto."}},
			},
		},
	}}
	if out := Markdown(doc); !strings.Contains(out, "#### Art. LO:23") {
		t.Errorf("missing prefixed heading:\n%s", out)
	}
}

func TestMarkdownSupersededVersions(t *testing.T) {
	doc := &model.Document{Elements: []model.Element{
		&model.ArticleBlock{
			Number: "5",
			Caput: &model.Unit{
				Identifier: "Art. 5º",
				Runs:       []model.Run{{Text: "Art. 5º - Texto novo."}},
			},
			Children: []*model.Unit{
				{
					Kind:       model.KindInciso,
					Identifier: "I",
					Runs:       []model.Run{{Text: "I - redação antiga;"}},
					Historical: true,
				},
				{
					Kind:       model.KindInciso,
					Identifier: "I",
					Runs:       []model.Run{{Text: "I - redação vigente;"}},
				},
			},
			Superseded: []*model.Unit{
				{
					Identifier:    "Art. 5º",
					Runs:          []model.Run{{Text: "Art. 5º - Texto original."}},
					Historical:    true,
					AmendmentNote: "(Redação dada pela Emenda nº 2)",
				},
			},
		},
	}}

	out := Markdown(doc)

	if !strings.Contains(out, "*Versões anteriores deste artigo:*") {
		t.Errorf("missing history section:\n%s", out)
	}
	if !strings.Contains(out, "*[Versão supersedida]* Art. 5º - Texto original. *(Redação dada pela Emenda nº 2)*") {
		t.Errorf("missing superseded caput line:\n%s", out)
	}
	if !strings.Contains(out, "*[Versão supersedida]* I - redação antiga;") {
		t.Errorf("missing historical child in history:\n%s", out)
	}
	// The historical child is not rendered as a current line.
	if strings.Contains(out, "**I** — redação antiga;") {
		t.Errorf("historical child rendered as current:\n%s", out)
	}
	if !strings.Contains(out, "**I** — redação vigente;") {
		t.Errorf("missing current child:\n%s", out)
	}
}

func TestMarkdownFootnotes(t *testing.T) {
	doc := &model.Document{Elements: []model.Element{
		&model.ArticleBlock{
			Number: "1",
			Caput: &model.Unit{
				Identifier: "Art. 1º",
				Runs:       []model.Run{{Text: "Art. 1º - Texto."}},
				Footnotes: []model.Footnote{
					{
						Number: 3,
						Paragraphs: []model.FootnotePara{
							{Runs: []model.Run{{Text: "Ver Emenda nº 3."}}},
						},
					},
					{
						Number:  1,
						Private: true,
						Paragraphs: []model.FootnotePara{
							{Runs: []model.Run{{Text: "conferir numeração"}}},
						},
					},
				},
			},
		},
	}}

	out := Markdown(doc)

	if !strings.Contains(out, "> **Nota 3:** Ver Emenda nº 3.") {
		t.Errorf("missing public footnote:\n%s", out)
	}
	if !strings.Contains(out, "> **Nota b1:** conferir numeração *(nota privada)*") {
		t.Errorf("missing private footnote:\n%s", out)
	}
}

func TestMarkdownRunFormatting(t *testing.T) {
	doc := &model.Document{Elements: []model.Element{
		&model.ArticleBlock{
			Number: "2",
			Caput: &model.Unit{
				Identifier: "Art. 2º",
				Runs: []model.Run{
					{Text: "Art. 2º - Consultar "},
					{Text: "a lei estadual", URL: "https://example.gov.br/lei"},
					{Text: " e o trecho "},
					{Text: "revogado", Strike: true},
					{Text: " em "},
					{Text: "destaque", Bold: true},
					{Text: "."},
				},
			},
		},
	}}

	out := Markdown(doc)

	for _, want := range []string{
		"[a lei estadual](https://example.gov.br/lei)",
		"~~revogado~~",
		"**destaque**",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestIdentifierSkip(t *testing.T) {
	tests := []struct {
		name       string
		full       string
		identifier string
		wantRest   string
	}{
		{"dash separator", "Art. 5º - Texto.", "Art. 5º", "Texto."},
		{"period separator", "Art. 4º-C. Texto.", "Art. 4º-C", "Texto."},
		{"stray period before ordinal", "Art. 5.º - Texto.", "Art. 5º", "Texto."},
		{"paragraph", "§ 1º - Corpo.", "§ 1º", "Corpo."},
		{"inciso", "I - eleger a Mesa;", "I", "eleger a Mesa;"},
		{"no separator match", "texto sem rótulo", "X", "exto sem rótulo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip := identifierSkip(tt.full, tt.identifier)
			if got := tt.full[skip:]; got != tt.wantRest {
				t.Errorf("rest = %q, want %q", got, tt.wantRest)
			}
		})
	}
}

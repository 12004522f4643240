package classify

import (
	"strings"
	"testing"

	"github.com/prototiposlegisla/regimento/pkg/docstream"
	"github.com/prototiposlegisla/regimento/pkg/model"
)

func TestClassifyArticles(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name       string
		text       string
		wantNumber string
		wantLabel  string
	}{
		{"plain", "Art. 43º - A Mesa será composta.", "43", "Art. 43º"},
		{"no ordinal", "Art. 1 - Primeiro.", "1", "Art. 1"},
		{"dash before body", "Art. 5º - Cada vereador.", "5", "Art. 5º"},
		{"dashed letter", "Art. 183º-A - Acrescentado.", "183-A", "Art. 183º-A"},
		{"attached letter", "Art. 4ºA - Sem hífen.", "4-A", "Art. 4ºA"},
		{"dashed letter period", "Art. 4º-C. Texto.", "4-C", "Art. 4º-C"},
		{"feminine ordinal", "Art. 2ª - Variante.", "2", "Art. 2ª"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(docstream.Paragraph{Text: tt.text})
			if res.Kind != model.KindArticle {
				t.Fatalf("Classify(%q).Kind = %v, want ARTICLE", tt.text, res.Kind)
			}
			if res.ArticleNumber != tt.wantNumber {
				t.Errorf("ArticleNumber = %q, want %q", res.ArticleNumber, tt.wantNumber)
			}
			if res.Identifier != tt.wantLabel {
				t.Errorf("Identifier = %q, want %q", res.Identifier, tt.wantLabel)
			}
		})
	}
}

func TestClassifyNotAnArticle(t *testing.T) {
	c := New(nil)
	for _, text := range []string{
		"Artigo sobre o tema.",
		"A Art. referência no meio.",
		"Parecer sobre Art. 3º.",
	} {
		res := c.Classify(docstream.Paragraph{Text: text})
		if res.Kind == model.KindArticle {
			t.Errorf("Classify(%q) = ARTICLE, want non-article", text)
		}
	}
}

func TestClassifyKinds(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name     string
		p        docstream.Paragraph
		wantKind model.UnitKind
		wantID   string
	}{
		{"empty", docstream.Paragraph{Text: "   "}, model.KindEmpty, ""},
		{"nbsp only", docstream.Paragraph{Text: "\u00a0"}, model.KindEmpty, ""},
		{"title", docstream.Paragraph{Text: "TÍTULO I", Centered: true}, model.KindTitle, "TÍTULO I"},
		{"title unaccented", docstream.Paragraph{Text: "TITULO II", Centered: true}, model.KindTitle, "TITULO II"},
		{"chapter", docstream.Paragraph{Text: "CAPÍTULO III", Centered: true}, model.KindChapter, "CAPÍTULO III"},
		{"section", docstream.Paragraph{Text: "SEÇÃO II", Centered: true}, model.KindSection, "SEÇÃO II"},
		{"subsection", docstream.Paragraph{Text: "SUBSEÇÃO I", Centered: true}, model.KindSubsection, "SUBSEÇÃO I"},
		{"subtitle", docstream.Paragraph{Text: "Da Mesa Diretora", Centered: true}, model.KindSubtitle, "Da Mesa Diretora"},
		{"heading not centered", docstream.Paragraph{Text: "TÍTULO I"}, model.KindOther, ""},
		{"sole paragraph", docstream.Paragraph{Text: "Parágrafo único - Aplica-se."}, model.KindSoleParagraph, "Parágrafo único"},
		{"sole paragraph unaccented", docstream.Paragraph{Text: "Paragrafo unico. Aplica-se."}, model.KindSoleParagraph, "Parágrafo único"},
		{"numbered paragraph", docstream.Paragraph{Text: "§ 1º - Texto."}, model.KindParagraph, "§ 1º"},
		{"paragraph trailing dot", docstream.Paragraph{Text: "§ 10. Texto."}, model.KindParagraph, "§ 10º"},
		{"paragraph degree sign", docstream.Paragraph{Text: "§ 2° - Texto."}, model.KindParagraph, "§ 2º"},
		{"paragraph S fallback", docstream.Paragraph{Text: "S 3º - Texto."}, model.KindParagraph, "§ 3º"},
		{"inciso", docstream.Paragraph{Text: "IV - eleger a Mesa;"}, model.KindInciso, "IV"},
		{"inciso typo l", docstream.Paragraph{Text: "lI - segunda;"}, model.KindInciso, "II"},
		{"inciso typo lV", docstream.Paragraph{Text: "lV - quarta;"}, model.KindInciso, "IV"},
		{"alinea", docstream.Paragraph{Text: "a) primeira hipótese;"}, model.KindAlinea, "a)"},
		{"sub-alinea indented", docstream.Paragraph{Text: "1) detalhe;", IndentLeft: 720}, model.KindSubAlinea, "1)"},
		{"paren without indent", docstream.Paragraph{Text: "1) detalhe;", IndentLeft: 200}, model.KindItem, "1)"},
		{"item", docstream.Paragraph{Text: "3 - terceiro ponto."}, model.KindItem, "3"},
		{"other", docstream.Paragraph{Text: "Texto corrido sem marcador."}, model.KindOther, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(tt.p)
			if res.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", res.Kind, tt.wantKind)
			}
			if res.Identifier != tt.wantID {
				t.Errorf("Identifier = %q, want %q", res.Identifier, tt.wantID)
			}
		})
	}
}

func TestClassifyCenteredBeatsBodyRules(t *testing.T) {
	c := New(nil)
	// A centered line that would also match a body rule is a subtitle,
	// because the subtitle rule runs before every body rule.
	res := c.Classify(docstream.Paragraph{Text: "Parágrafo único - Disposição.", Centered: true})
	if res.Kind != model.KindSubtitle {
		t.Fatalf("Kind = %v, want SUBTITLE", res.Kind)
	}
}

func TestRuleOrder(t *testing.T) {
	want := []string{
		"empty", "title", "chapter", "section", "subsection", "subtitle",
		"article", "sole-paragraph", "numbered-paragraph", "inciso",
		"alinea", "sub-alinea", "item", "numbered-paren-item",
	}
	got := New(nil).RuleOrder()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("RuleOrder() = %v, want %v", got, want)
	}
}

func TestSubAlineaThresholdFromConventions(t *testing.T) {
	conv := Default()
	conv.SubAlineaIndent = 100
	c := New(conv)

	res := c.Classify(docstream.Paragraph{Text: "2) texto;", IndentLeft: 150})
	if res.Kind != model.KindSubAlinea {
		t.Errorf("Kind = %v, want SUB_ALINEA with lowered threshold", res.Kind)
	}
}

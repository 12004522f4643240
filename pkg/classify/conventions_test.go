package classify

import (
	"strings"
	"testing"
)

func TestAmendmentNote(t *testing.T) {
	conv := Default()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"redacao dada",
			"Art. 5º - Novo texto. (Redação dada pela Emenda nº 3, de 2010)",
			"(Redação dada pela Emenda nº 3, de 2010)",
		},
		{
			"nested parentheses",
			"§ 2º - Texto. (Redação dada pela Lei nº 1.234 (consolidada), de 1999)",
			"(Redação dada pela Lei nº 1.234 (consolidada), de 1999)",
		},
		{
			"revogado",
			"II - (Revogado pela Emenda nº 7)",
			"(Revogado pela Emenda nº 7)",
		},
		{
			"acrescentado case-insensitive",
			"b) nova alínea (ACRESCENTADA pela Emenda nº 2)",
			"(ACRESCENTADA pela Emenda nº 2)",
		},
		{
			"unbalanced keeps tail",
			"Art. 9º - Texto. (Redação dada pela Emenda nº 1",
			"(Redação dada pela Emenda nº 1",
		},
		{"no phrase", "Art. 9º - Texto corrente (nota qualquer).", ""},
		{"phrase outside parens", "Redação dada sem parêntese.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conv.AmendmentNote(tt.text); got != tt.want {
				t.Errorf("AmendmentNote(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsRevocation(t *testing.T) {
	conv := Default()

	tests := []struct {
		text string
		want bool
	}{
		{"II - (Revogado pela Emenda nº 7)", true},
		{"§ 1º - (revogada pela Lei nº 5)", true},
		{"Art. 3º - Revogado o disposto.", false}, // needs the parenthesis
		{"Art. 3º - Texto vigente.", false},
	}
	for _, tt := range tests {
		if got := conv.IsRevocation(tt.text); got != tt.want {
			t.Errorf("IsRevocation(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestLawMarker(t *testing.T) {
	conv := Default()

	tests := []struct {
		name       string
		text       string
		wantName   string
		wantPrefix string
		wantOK     bool
	}{
		{"with prefix", "NORMA: Lei Orgânica do Município (LO)", "Lei Orgânica do Município", "LO", true},
		{"without prefix", "NORMA: Regimento Interno", "Regimento Interno", "", true},
		{"lowercase keyword", "norma: Código Tributário (CT)", "Código Tributário", "CT", true},
		{"single letter not a prefix", "NORMA: Lei X (A)", "Lei X (A)", "", true},
		{"not a marker", "TÍTULO I", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, prefix, ok := conv.LawMarker(tt.text)
			if ok != tt.wantOK || name != tt.wantName || prefix != tt.wantPrefix {
				t.Errorf("LawMarker(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.text, name, prefix, ok, tt.wantName, tt.wantPrefix, tt.wantOK)
			}
		})
	}
}

func TestTransitoryMarker(t *testing.T) {
	conv := Default()

	m, ok := conv.TransitoryMarker("ATO DAS DISPOSIÇÕES TRANSITÓRIAS")
	if !ok || m.SectionID != "adt" {
		t.Errorf("TransitoryMarker(ADT) = (%q, %v), want (adt, true)", m.SectionID, ok)
	}
	m, ok = conv.TransitoryMarker("DISPOSIÇÕES GERAIS E TRANSITÓRIAS")
	if !ok || m.SectionID != "dgt" {
		t.Errorf("TransitoryMarker(DGT) = (%q, %v), want (dgt, true)", m.SectionID, ok)
	}
	if _, ok := conv.TransitoryMarker("DISPOSIÇÕES FINAIS"); ok {
		t.Error("TransitoryMarker(finais) matched, want no match")
	}
}

func TestValidate(t *testing.T) {
	conv := &Conventions{SubAlineaIndent: 600}
	if err := conv.Validate(); err == nil || !strings.Contains(err.Error(), "name") {
		t.Errorf("Validate() without name = %v, want name error", err)
	}

	conv = &Conventions{Name: "x", SubAlineaIndent: -1}
	if err := conv.Validate(); err == nil {
		t.Error("Validate() with negative indent = nil, want error")
	}
}

func TestCompileReportsBadPattern(t *testing.T) {
	conv := &Conventions{
		Name:              "broken",
		RevocationPattern: `([`,
	}
	if err := conv.Compile(); err == nil {
		t.Error("Compile() with invalid pattern = nil, want error")
	}
}

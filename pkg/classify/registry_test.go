package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistrySeedsDefault(t *testing.T) {
	r := NewRegistry()
	conv, ok := r.Get("default")
	if !ok {
		t.Fatal("Get(default) = false, want the built-in conventions")
	}
	if !conv.IsCompiled() {
		t.Error("built-in conventions are not compiled")
	}
}

func TestRegistryLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "camara-x.yaml")
	content := `
amendment_phrases:
  - 'Alterad[oa]'
revocation_pattern: '(?i)\(Suprimid[oa]'
law_marker_pattern: '(?i)^LEI:\s*(.+)'
sub_alinea_indent: 400
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	// Name falls back to the file name when the YAML omits it.
	conv, ok := r.Get("camara-x")
	if !ok {
		t.Fatal("Get(camara-x) = false after LoadFile")
	}
	if conv.SubAlineaIndent != 400 {
		t.Errorf("SubAlineaIndent = %d, want 400", conv.SubAlineaIndent)
	}
	if !conv.IsRevocation("a) (Suprimida pela Emenda nº 1)") {
		t.Error("loaded revocation pattern did not match")
	}
	if note := conv.AmendmentNote("texto (Alterado pela Lei nº 2)"); note != "(Alterado pela Lei nº 2)" {
		t.Errorf("AmendmentNote = %q", note)
	}
}

func TestRegistryLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.yaml":    "name: alpha\nsub_alinea_indent: 100\n",
		"b.yml":     "name: beta\nsub_alinea_indent: 200\n",
		"notes.txt": "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory() error: %v", err)
	}

	for _, name := range []string{"default", "alpha", "beta"} {
		if _, ok := r.Get(name); !ok {
			t.Errorf("Get(%q) = false, want loaded", name)
		}
	}
	if len(r.List()) != 3 {
		t.Errorf("List() = %v, want 3 entries", r.List())
	}
}

func TestRegistryLoadDirectoryReportsBadFiles(t *testing.T) {
	dir := t.TempDir()
	bad := "name: broken\nrevocation_pattern: '(['\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadDirectory(dir); err == nil {
		t.Error("LoadDirectory() with invalid pattern = nil, want error")
	}
}

func TestRegistryReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.yaml")
	if err := os.WriteFile(path, []byte("name: x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if _, ok := r.Get("x"); ok {
		t.Error("Get(x) = true after Reload with the file removed")
	}
	if _, ok := r.Get("default"); !ok {
		t.Error("Reload dropped the default conventions")
	}
}

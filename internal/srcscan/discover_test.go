package srcscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func TestDiscover_FindsRecognizedLanguagesAndSkipsIgnored(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "lib.rs"), "fn main() {}")
	mustWrite(t, filepath.Join(dir, "ignored.rs"), "fn x() {}")
	mustWrite(t, filepath.Join(dir, ".gitignore"), "ignored.rs\n")
	os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755)
	mustWrite(t, filepath.Join(dir, "node_modules", "pkg.js"), "x")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "not source")

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var foundLib, foundIgnored, foundNodeModules bool
	for _, f := range files {
		switch f.RelPath {
		case "lib.rs":
			foundLib = true
			if f.Language != model.LangRust {
				t.Errorf("lib.rs language = %v, want Rust", f.Language)
			}
		case "ignored.rs":
			foundIgnored = true
		}
		if f.RelPath == filepath.Join("node_modules", "pkg.js") {
			foundNodeModules = true
		}
	}
	if !foundLib {
		t.Error("expected lib.rs to be discovered")
	}
	if foundIgnored {
		t.Error("gitignored file should not be discovered")
	}
	if foundNodeModules {
		t.Error("node_modules should be skipped")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

package loc

import (
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

// S1 from spec.md §8: nested Rust block comments.
func TestCountContent_NestedRustBlockComment(t *testing.T) {
	content := []byte("/* outer /* inner */ still outer */\nfn main() {}")
	c := CountContent(model.LangRust, content)

	if c.Physical != 2 {
		t.Fatalf("physical = %d, want 2", c.Physical)
	}
	if c.Code != 1 {
		t.Fatalf("code = %d, want 1", c.Code)
	}
	if c.Comment != 1 {
		t.Fatalf("comment = %d, want 1", c.Comment)
	}
	if c.Blank != 0 {
		t.Fatalf("blank = %d, want 0", c.Blank)
	}
}

func TestCountContent_Invariant(t *testing.T) {
	samples := map[model.Language]string{
		model.LangRust:       "// hi\nfn f() {\n    // comment\n    let x = 1;\n}\n\n",
		model.LangPython:     "# hi\ndef f():\n    # comment\n    x = 1\n\n",
		model.LangJavaScript: "// hi\nfunction f() {\n  /* block */\n  return 1;\n}\n",
	}
	for lang, src := range samples {
		c := CountContent(lang, []byte(src))
		if got := c.Code + c.Comment + c.Blank; got != c.Physical {
			t.Errorf("%s: code+comment+blank=%d, physical=%d", lang, got, c.Physical)
		}
	}
}

func TestCountContent_Idempotent(t *testing.T) {
	content := []byte("fn main() {\n    // a comment\n    let x = 1;\n}\n")
	a := CountContent(model.LangRust, content)
	b := CountContent(model.LangRust, content)
	if a != b {
		t.Fatalf("non-idempotent: %+v != %+v", a, b)
	}
}

func TestCountContent_RustAttributeIsCode(t *testing.T) {
	content := []byte("#[derive(Debug)]\nstruct Foo;\n")
	c := CountContent(model.LangRust, content)
	if c.Code != 2 {
		t.Fatalf("code = %d, want 2 (attribute line counts as code)", c.Code)
	}
}

func TestCountContent_PythonHashIsComment(t *testing.T) {
	content := []byte("# a comment\nx = 1\n")
	c := CountContent(model.LangPython, content)
	if c.Comment != 1 || c.Code != 1 {
		t.Fatalf("comment=%d code=%d, want 1/1", c.Comment, c.Code)
	}
}

func TestIsTestFile(t *testing.T) {
	cases := map[string]bool{
		"src/tests/foo.rs":   true,
		"src/foo_test.go":    true,
		"src/foo_tests.py":   true,
		"src/foo.go":         false,
	}
	for path, want := range cases {
		if got := IsTestFile(path); got != want {
			t.Errorf("IsTestFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsGeneratedByName(t *testing.T) {
	if !IsGeneratedByName("foo.generated.go") {
		t.Error("expected .generated. to match")
	}
	if !IsGeneratedByName("foo.g.go") {
		t.Error("expected .g.<ext> to match")
	}
	if IsGeneratedByName("foo.go") {
		t.Error("did not expect match")
	}
}

func TestProjectCounter_CountsEachFileOnce(t *testing.T) {
	pc := NewProjectCounter()
	pc.Add("a.go", Counts{Physical: 10, Code: 8, Comment: 1, Blank: 1})
	pc.Add("a.go", Counts{Physical: 99, Code: 99}) // duplicate path, ignored
	pc.Add("b.go", Counts{Physical: 5, Code: 5})

	if pc.Total.Physical != 15 {
		t.Fatalf("total physical = %d, want 15", pc.Total.Physical)
	}
}

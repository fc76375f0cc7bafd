package loc

import (
	"path/filepath"
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// DetectLanguage maps a file extension to a recognized Language. Unknown
// extensions map to LangUnknown, which is still counted (with the
// generic "//" and "/* */" comment rules) rather than skipped.
func DetectLanguage(path string) model.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rs":
		return model.LangRust
	case ".py":
		return model.LangPython
	case ".js", ".jsx", ".mjs", ".cjs":
		return model.LangJavaScript
	case ".ts", ".tsx":
		return model.LangTypeScript
	default:
		return model.LangUnknown
	}
}

package srcscan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ingo/debtmap-go/pkg/model"
)

// skipDirs lists directory names walked past without descending
// (adapted from the teacher's internal/discovery.skipDirs).
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".venv":        true,
	"venv":         true,
	"target":       true, // Rust build output
}

var extensionLanguage = map[string]model.Language{
	".rs":  model.LangRust,
	".py":  model.LangPython,
	".js":  model.LangJavaScript,
	".jsx": model.LangJavaScript,
	".mjs": model.LangJavaScript,
	".ts":  model.LangTypeScript,
	".tsx": model.LangTypeScript,
	".go":  model.LangGo,
}

// DiscoveredFile is one source file found by Discover.
type DiscoveredFile struct {
	Path     string
	RelPath  string
	Language model.Language
}

// Discover walks rootDir, honoring a root .gitignore and the built-in
// skip list, and returns every recognized source file (adapted from
// the teacher's internal/discovery.Walker.Discover; file classification
// into source/test/generated is left to internal/loc's filters rather
// than duplicated here).
func Discover(rootDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot access root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(rootDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			return nil, fmt.Errorf("parse .gitignore: %w", err)
		}
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && name != "." {
				return fs.SkipDir
			}
			if skipDirs[name] {
				return fs.SkipDir
			}
			return nil
		}

		lang, supported := extensionLanguage[filepath.Ext(name)]
		if !supported {
			return nil
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return nil
		}
		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			return nil
		}

		files = append(files, DiscoveredFile{Path: path, RelPath: relPath, Language: lang})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk error: %w", err)
	}
	return files, nil
}

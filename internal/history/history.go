// Package history implements the optional change-frequency evidence
// calculator's HistoryProvider (internal/risk/changefreq.go, §4.6.4)
// by walking a repository's commit log with go-git.
//
// Grounded on the go-git usage pattern from the retrieval pack's
// abdidvp-openkraft/internal/adapters/outbound/gitinfo adapter
// (git.PlainOpen + repo.Head()), generalized from a single commit-hash
// lookup into a bounded commit-log walk.
package history

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// lookbackWindow bounds how far back CommitsLastMonth and BugFixRatio
// look, matching their names: roughly 30 days.
const lookbackWindow = 30 * 24 * time.Hour

// bugFixMarkers are commit-message substrings treated as marking a bug
// fix, checked case-insensitively.
var bugFixMarkers = []string{"fix", "bug", "hotfix", "patch"}

// GitHistoryProvider implements internal/risk.HistoryProvider by
// walking a repository's commit log from HEAD on every per-file query;
// nothing is cached between queries.
type GitHistoryProvider struct {
	repo   *git.Repository
	root   string
	cutoff time.Time
}

// NewGitHistoryProvider opens the repository at root. For a non-git
// directory it returns go-git's open error; callers that want to
// degrade to "no history available" check IsGitRepo first and pass a
// nil provider to AnalyzeChangeFrequency instead of constructing one.
func NewGitHistoryProvider(root string) (*GitHistoryProvider, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, err
	}
	return &GitHistoryProvider{repo: repo, root: root}, nil
}

// IsGitRepo reports whether git.PlainOpen succeeds on root, the same
// check the teacher's gitinfo adapter exposes. Parent directories are
// not searched, so a subdirectory of a working tree reports false.
func IsGitRepo(root string) bool {
	_, err := git.PlainOpen(root)
	return err == nil
}

// commitsTouching walks HEAD's history and returns the commits within
// lookbackWindow whose tree contains filePath (see commitTouchesFile),
// relative to the repository root; it does not check whether a commit
// changed the file.
func (p *GitHistoryProvider) commitsTouching(filePath string) ([]*object.Commit, error) {
	relPath, err := p.relativize(filePath)
	if err != nil {
		return nil, err
	}

	head, err := p.repo.Head()
	if err != nil {
		return nil, err
	}
	iter, err := p.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	cutoff := time.Now().Add(-lookbackWindow)
	var matched []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if c.Author.When.Before(cutoff) {
			return nil
		}
		touches, err := commitTouchesFile(c, relPath)
		if err != nil {
			return nil
		}
		if touches {
			matched = append(matched, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// relativize turns an absolute (or already-relative) OS path into a
// repository-root-relative, forward-slash path as go-git's tree.File
// expects. FunctionId.FilePath is always an absolute path (srcscan
// resolves it that way), while p.root is the directory the provider was
// opened against.
func (p *GitHistoryProvider) relativize(filePath string) (string, error) {
	rel, err := filepath.Rel(p.root, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// commitTouchesFile checks whether a commit's tree contains relPath, a
// repository-root-relative forward-slash path (a cheap presence check
// rather than a full diff, sufficient for the hotspot-style signals this
// package computes).
func commitTouchesFile(c *object.Commit, relPath string) (bool, error) {
	tree, err := c.Tree()
	if err != nil {
		return false, err
	}
	_, err = tree.File(relPath)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// CommitsLastMonth implements risk.HistoryProvider.
func (p *GitHistoryProvider) CommitsLastMonth(filePath string) int {
	commits, err := p.commitsTouching(filePath)
	if err != nil {
		return 0
	}
	return len(commits)
}

// BugFixRatio implements risk.HistoryProvider: the fraction of the
// file's recent commits whose message matches a bug-fix marker.
func (p *GitHistoryProvider) BugFixRatio(filePath string) float64 {
	commits, err := p.commitsTouching(filePath)
	if err != nil || len(commits) == 0 {
		return 0
	}
	bugFixes := 0
	for _, c := range commits {
		if isBugFixMessage(c.Message) {
			bugFixes++
		}
	}
	return float64(bugFixes) / float64(len(commits))
}

// HotspotIntensity implements risk.HistoryProvider: commit count
// normalized against an assumed active-file ceiling of 20 commits/month,
// capped at 1.0.
func (p *GitHistoryProvider) HotspotIntensity(filePath string) float64 {
	commits := p.CommitsLastMonth(filePath)
	intensity := float64(commits) / 20.0
	if intensity > 1.0 {
		intensity = 1.0
	}
	return intensity
}

func isBugFixMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range bugFixMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Package validate holds the pure submission checks applied before a
// task completion is persisted. Each check is independent and returns a
// human-readable reason on failure; callers aggregate the results.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinCodeLength is the shortest accepted code snippet after trimming.
	MinCodeLength = 10
	// MaxCodeLength is the longest accepted code snippet.
	MaxCodeLength = 10000
	// MinNotesLength is the shortest accepted learning notes after trimming.
	MinNotesLength = 20
	// MaxNotesLength is the longest accepted learning notes.
	MaxNotesLength = 5000
)

var (
	scriptTagRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	repoURLRe   = regexp.MustCompile(`^https://(github\.com|gist\.github\.com)/.+`)
)

// Code checks a submitted code snippet.
func Code(code string) error {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return fmt.Errorf("code cannot be empty")
	}
	if len(trimmed) < MinCodeLength {
		return fmt.Errorf("code must be at least %d characters, share a meaningful snippet", MinCodeLength)
	}
	if len(trimmed) > MaxCodeLength {
		return fmt.Errorf("code is too long, maximum %d characters", MaxCodeLength)
	}
	return nil
}

// LearningNotes checks submitted learning notes.
func LearningNotes(notes string) error {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return fmt.Errorf("learning notes cannot be empty")
	}
	if len(trimmed) < MinNotesLength {
		return fmt.Errorf("learning notes must be at least %d characters, share what you learned", MinNotesLength)
	}
	if len(trimmed) > MaxNotesLength {
		return fmt.Errorf("learning notes are too long, maximum %d characters", MaxNotesLength)
	}
	return nil
}

// RepoURL checks that a resource link points at github.com or
// gist.github.com over https.
func RepoURL(url string) error {
	if !repoURLRe.MatchString(url) {
		return fmt.Errorf("invalid repository URL, must be from github.com or gist.github.com")
	}
	return nil
}

// SanitizeCode strips inline script tags from a code submission and
// trims surrounding whitespace.
func SanitizeCode(code string) string {
	return strings.TrimSpace(scriptTagRe.ReplaceAllString(code, ""))
}

// SanitizeNotes trims surrounding whitespace from learning notes.
func SanitizeNotes(notes string) string {
	return strings.TrimSpace(notes)
}

package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr string
	}{
		{name: "empty", code: "", wantErr: "cannot be empty"},
		{name: "whitespace only", code: "   \n\t  ", wantErr: "cannot be empty"},
		{name: "nine chars", code: "x := 1+2", wantErr: "at least 10"},
		{name: "exactly ten chars", code: "x := 1 + 2"},
		{name: "padding does not count", code: "   short   ", wantErr: "at least 10"},
		{name: "at the cap", code: strings.Repeat("a", MaxCodeLength)},
		{name: "over the cap", code: strings.Repeat("a", MaxCodeLength+1), wantErr: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Code(tt.code)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLearningNotes(t *testing.T) {
	tests := []struct {
		name    string
		notes   string
		wantErr string
	}{
		{name: "empty", notes: "", wantErr: "cannot be empty"},
		{name: "nineteen chars", notes: strings.Repeat("a", 19), wantErr: "at least 20"},
		{name: "exactly twenty chars", notes: strings.Repeat("a", 20)},
		{name: "at the cap", notes: strings.Repeat("a", MaxNotesLength)},
		{name: "over the cap", notes: strings.Repeat("a", MaxNotesLength+1), wantErr: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LearningNotes(tt.notes)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRepoURL(t *testing.T) {
	assert.NoError(t, RepoURL("https://github.com/someone/project"))
	assert.NoError(t, RepoURL("https://gist.github.com/someone/abc123"))
	assert.Error(t, RepoURL("http://github.com/someone/project"))
	assert.Error(t, RepoURL("https://gitlab.com/someone/project"))
	assert.Error(t, RepoURL("https://github.com/"))
	assert.Error(t, RepoURL("not a url"))
}

func TestSanitizeCode(t *testing.T) {
	input := "  before <script>alert('x')</script> after  "
	assert.Equal(t, "before  after", SanitizeCode(input))

	multiline := "keep\n<SCRIPT type=\"text/javascript\">\nevil()\n</script>\nthis"
	assert.Equal(t, "keep\n\nthis", SanitizeCode(multiline))

	clean := "fmt.Println(\"hello\")"
	assert.Equal(t, clean, SanitizeCode("  "+clean+"\n"))
}

func TestSanitizeNotes(t *testing.T) {
	assert.Equal(t, "learned about closures", SanitizeNotes("  learned about closures \n"))
}

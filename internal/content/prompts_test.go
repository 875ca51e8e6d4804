package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"devstreak/internal/models"
)

func TestBuildXPrompt_ToneFollowsGoalType(t *testing.T) {
	learning := buildXPrompt(Input{Code: "some code", LearningNotes: "some notes", GoalType: models.GoalLearning})
	assert.Contains(t, learning, "Today I learned")
	assert.Contains(t, learning, "some code")
	assert.Contains(t, learning, "some notes")
	assert.Contains(t, learning, "max 280 characters")

	product := buildXPrompt(Input{Code: "some code", LearningNotes: "some notes", GoalType: models.GoalProduct})
	assert.Contains(t, product, "Shipped")
	assert.NotContains(t, product, "Today I learned")
}

func TestPrompts_StyleReferenceOnlyWhenProvided(t *testing.T) {
	without := buildLinkedInPrompt(Input{Code: "c", LearningNotes: "n", GoalType: models.GoalLearning})
	assert.NotContains(t, without, "Style Reference")

	with := buildLinkedInPrompt(Input{
		Code: "c", LearningNotes: "n", GoalType: models.GoalLearning,
		Examples: Examples{LinkedIn: "my linkedin voice"},
	})
	assert.Contains(t, with, "Style Reference")
	assert.Contains(t, with, "my linkedin voice")

	// Each platform prompt only picks up its own example.
	crossed := buildBlogPrompt(Input{
		Code: "c", LearningNotes: "n", GoalType: models.GoalLearning,
		Examples: Examples{LinkedIn: "my linkedin voice"},
	})
	assert.NotContains(t, crossed, "my linkedin voice")
}

func TestBuildWrapupPrompt_IncludesEveryDay(t *testing.T) {
	input := WrapupInput{
		WeekTitle: "Ship a parser",
		GoalType:  models.GoalProduct,
		Days: []DayRecap{
			{DayNumber: 1, Description: "tokenizer", Code: "tok()", LearningNotes: "lexing"},
			{DayNumber: 2, Description: "grammar", Code: "parse()", LearningNotes: "recursion"},
		},
		Examples: Examples{X: "x voice", Blog: "blog voice"},
	}

	x := buildWrapupPrompt(input, models.PlatformX)
	assert.Contains(t, x, "Ship a parser")
	assert.Contains(t, x, "Day 1: tokenizer")
	assert.Contains(t, x, "Day 2: grammar")
	assert.Contains(t, x, "x voice")
	assert.Contains(t, x, "max 280 characters")

	blog := buildWrapupPrompt(input, models.PlatformBlog)
	assert.Contains(t, blog, "blog voice")
	assert.Contains(t, blog, "Markdown")
	assert.NotContains(t, blog, "x voice")
}

func TestCharacterCounts(t *testing.T) {
	counts := Variants{XPost: "abc", LinkedInPost: "abcde", BlogPost: ""}.CharacterCounts()
	assert.Equal(t, map[string]int{"x": 3, "linkedin": 5, "blog": 0}, counts)
}

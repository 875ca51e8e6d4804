// Package content turns completed task submissions into
// platform-specific social posts via the AI text collaborator.
package content

import (
	"context"

	"devstreak/internal/models"
)

// Examples carries the user's optional style references per platform.
type Examples struct {
	X        string
	LinkedIn string
	Blog     string
}

// Input is the material a single post generation works from.
type Input struct {
	Code          string
	LearningNotes string
	GoalType      models.GoalType
	Examples      Examples
}

// DayRecap is one completed task's contribution to a weekly wrap-up.
type DayRecap struct {
	DayNumber     int
	Description   string
	Code          string
	LearningNotes string
}

// WrapupInput is the material a weekly wrap-up works from.
type WrapupInput struct {
	WeekTitle string
	GoalType  models.GoalType
	Days      []DayRecap
	Examples  Examples
}

// Variants holds the three platform-tagged renditions of one piece of
// content.
type Variants struct {
	XPost        string `json:"x_post"`
	LinkedInPost string `json:"linkedin_post"`
	BlogPost     string `json:"blog_post"`
}

// Generator produces platform variants from submissions. Implemented
// by the Anthropic client; stubbed in handler tests.
type Generator interface {
	GeneratePost(ctx context.Context, input Input) (Variants, error)
	GenerateWrapup(ctx context.Context, input WrapupInput) (Variants, error)
}

// CharacterCounts reports variant lengths, used by the preview
// endpoint so clients can warn about platform limits.
func (v Variants) CharacterCounts() map[string]int {
	return map[string]int{
		"x":        len(v.XPost),
		"linkedin": len(v.LinkedInPost),
		"blog":     len(v.BlogPost),
	}
}

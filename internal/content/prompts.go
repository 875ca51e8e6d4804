package content

import (
	"fmt"
	"strings"

	"devstreak/internal/models"
)

// Per-platform generation budgets, in output tokens.
const (
	xMaxTokens        = 300
	linkedInMaxTokens = 1000
	blogMaxTokens     = 2000
	wrapupBonusTokens = 200
)

func buildXPrompt(in Input) string {
	tone := `educational and enthusiastic (e.g., "Today I learned...")`
	focus := "Focus on what you learned and key insights"
	if in.GoalType == models.GoalProduct {
		tone = `product update and shipping focused (e.g., "Shipped...", "Built...")`
		focus = "Focus on what you built and shipped"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a developer writing a Twitter/X post about your work.\n\n")
	fmt.Fprintf(&b, "**Tone:** %s\n\n", tone)
	writeWorkSection(&b, in.Code, in.LearningNotes)
	writeStyleReference(&b, in.Examples.X, "tone and style")
	fmt.Fprintf(&b, `**Instructions:**
- Write a concise, engaging Twitter post (max 280 characters)
- %s
- Include relevant emojis (1-2 max)
- Use hashtags if appropriate (#100DaysOfCode, #BuildInPublic, etc.)
- Make it authentic and conversational
- DO NOT use quotation marks around the post
- Return ONLY the post text, nothing else

Write the post now:`, focus)
	return b.String()
}

func buildLinkedInPrompt(in Input) string {
	tone := "professional yet personal, sharing learning journey"
	focus := "Share your learning journey, challenges overcome, and insights gained"
	if in.GoalType == models.GoalProduct {
		tone = "professional product update, showing progress"
		focus = "Describe what you built, why it matters, and the impact"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a developer writing a LinkedIn post about your work.\n\n")
	fmt.Fprintf(&b, "**Tone:** %s\n\n", tone)
	writeWorkSection(&b, in.Code, in.LearningNotes)
	writeStyleReference(&b, in.Examples.LinkedIn, "tone and structure")
	fmt.Fprintf(&b, `**Instructions:**
- Write a professional LinkedIn post (1300-2000 characters)
- %s
- Use short paragraphs for readability
- Include a hook in the first line
- Add 3-5 relevant hashtags at the end
- Use emojis sparingly (2-3 max)
- Be authentic and specific
- DO NOT use quotation marks around the post
- Return ONLY the post text, nothing else

Write the post now:`, focus)
	return b.String()
}

func buildBlogPrompt(in Input) string {
	tone := "educational tutorial or learning log"
	focus := "Walk through what you learned step by step, with the code as the backbone"
	if in.GoalType == models.GoalProduct {
		tone = "product development blog post or technical write-up"
		focus = "Explain what you built, the decisions behind it, and what comes next"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a developer writing a technical blog post about your work.\n\n")
	fmt.Fprintf(&b, "**Tone:** %s\n\n", tone)
	writeWorkSection(&b, in.Code, in.LearningNotes)
	writeStyleReference(&b, in.Examples.Blog, "voice and structure")
	fmt.Fprintf(&b, `**Instructions:**
- Write a complete technical blog post in Markdown
- %s
- Start with a compelling title as an H1 heading
- Include the relevant code in fenced code blocks
- Keep sections short and scannable
- End with a brief takeaway or what is next
- Return ONLY the post text, nothing else

Write the post now:`, focus)
	return b.String()
}

func buildWrapupPrompt(in WrapupInput, platform models.Platform) string {
	var b strings.Builder
	switch platform {
	case models.PlatformX:
		fmt.Fprintf(&b, "You are a developer writing a Twitter/X thread-opener that wraps up a week of work.\n\n")
	case models.PlatformLinkedIn:
		fmt.Fprintf(&b, "You are a developer writing a LinkedIn post that wraps up a week of work.\n\n")
	default:
		fmt.Fprintf(&b, "You are a developer writing a blog post that wraps up a week of work.\n\n")
	}

	fmt.Fprintf(&b, "**Week:** %s (%s week)\n\n**Daily progress:**\n", in.WeekTitle, in.GoalType)
	for _, day := range in.Days {
		fmt.Fprintf(&b, "\nDay %d: %s\nCode:\n%s\n\nNotes:\n%s\n", day.DayNumber, day.Description, day.Code, day.LearningNotes)
	}
	b.WriteString("\n")

	example := in.Examples.Blog
	switch platform {
	case models.PlatformX:
		example = in.Examples.X
	case models.PlatformLinkedIn:
		example = in.Examples.LinkedIn
	}
	writeStyleReference(&b, example, "tone and style")

	switch platform {
	case models.PlatformX:
		b.WriteString(`**Instructions:**
- Summarize the whole week in one engaging post (max 280 characters)
- Highlight the biggest win or insight
- DO NOT use quotation marks around the post
- Return ONLY the post text, nothing else

Write the post now:`)
	case models.PlatformLinkedIn:
		b.WriteString(`**Instructions:**
- Write a reflective weekly recap (1300-2000 characters)
- Walk through the arc of the week, day by day where it helps
- Close with what the next week holds
- DO NOT use quotation marks around the post
- Return ONLY the post text, nothing else

Write the post now:`)
	default:
		b.WriteString(`**Instructions:**
- Write a complete weekly recap blog post in Markdown
- Give each notable day its own short section
- Include the most interesting code in fenced code blocks
- End with lessons learned and next steps
- Return ONLY the post text, nothing else

Write the post now:`)
	}
	return b.String()
}

func writeWorkSection(b *strings.Builder, code, notes string) {
	fmt.Fprintf(b, "**What you worked on:**\nCode:\n%s\n\nLearning Notes:\n%s\n\n", code, notes)
}

func writeStyleReference(b *strings.Builder, example, aspect string) {
	if example == "" {
		return
	}
	fmt.Fprintf(b, "**Style Reference (match this %s):**\n%s\n\n", aspect, example)
}

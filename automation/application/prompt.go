package application

import (
	"fmt"
	"strings"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
)

// BuildPrompt composes the generation request for post seq of total.
func BuildPrompt(a *domain.Automation, seq, total int) contentgen.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn post about: %s\n", strings.TrimSpace(a.Topic))
	if total > 0 {
		fmt.Fprintf(&b, "This is post %d of %d in a series on this topic.\n", seq, total)
	}
	if s := strings.TrimSpace(a.Style); s != "" {
		fmt.Fprintf(&b, "Style: %s\n", s)
	}
	if ins := strings.TrimSpace(a.Instructions); ins != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", ins)
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("- Keep it between 120 and 250 words, the length that performs best on LinkedIn.\n")
	b.WriteString("- Open with a hook in the first line.\n")
	b.WriteString("- End with a clear call-to-action that invites comments.\n")
	b.WriteString("- Do not repeat ideas, examples or openings used in other posts of this series.\n")
	b.WriteString("- Do not include hashtags; they are added separately.\n")

	return contentgen.Prompt{
		Topic:    a.Topic,
		Sequence: seq,
		Total:    total,
		Text:     b.String(),
	}
}

// withHashtags appends the automation's static tags on their own line.
func withHashtags(text string, a *domain.Automation) string {
	line := a.HashtagLine()
	if line == "" {
		return text
	}
	return strings.TrimRight(text, "\n ") + "\n\n" + line
}

package contentgen

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// SampleLabel prefixes every fallback text so it is never mistaken for
// generated content.
const SampleLabel = "[SAMPLE CONTENT - AI generation unavailable]"

var sampleOpeners = []string{
	"Here is a thought worth sharing about %s.",
	"Let's talk about %s for a moment.",
	"One lesson I keep coming back to on %s.",
	"A quick reflection on %s.",
}

var sampleClosers = []string{
	"What has your experience been? Share it in the comments.",
	"Agree or disagree? Let me know below.",
	"Follow along for the next post in this series.",
}

// Sample builds deterministic placeholder text: the same provider and
// prompt always give the same output.
func Sample(provider Provider, p Prompt) string {
	topic := strings.TrimSpace(p.Topic)
	if topic == "" {
		topic = "our topic"
	}

	h := fnv.New32a()
	h.Write([]byte(string(provider) + "|" + topic))
	seed := int(h.Sum32()%1024) + p.Sequence

	var b strings.Builder
	b.WriteString(SampleLabel)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(sampleOpeners[seed%len(sampleOpeners)], topic))
	if p.Total > 0 {
		b.WriteString(fmt.Sprintf(" (post %d of %d)", p.Sequence, p.Total))
	}
	b.WriteString("\n\n")
	b.WriteString("This placeholder was written because no content provider could be reached. Edit it before it goes out, or configure an API key.")
	b.WriteString("\n\n")
	b.WriteString(sampleClosers[seed%len(sampleClosers)])
	return b.String()
}

// IsSample reports whether text was produced by Sample.
func IsSample(text string) bool {
	return strings.HasPrefix(text, SampleLabel)
}

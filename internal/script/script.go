// Package script turns the model's free-text response into structured data:
// titled sections, a semantic type per section, and speaking-duration
// estimates derived from word counts and the target duration. Parsing is
// deliberately forgiving: malformed sections are dropped, never fatal.
package script

import (
	"math"
	"strings"
	"time"
)

// Section type tags.
const (
	TypeIntroduction = "introduction"
	TypeFeature      = "feature"
	TypeFlow         = "flow"
	TypeTechnical    = "technical"
	TypeConclusion   = "conclusion"
)

const maxKeywords = 20

// Section is one parsed script segment.
type Section struct {
	Title    string
	Content  string
	Duration int // estimated seconds of speech
	Type     string
}

// Metadata records how and when the script was produced.
type Metadata struct {
	Style         string
	GeneratedAt   time.Time
	Repository    string
	RetrievedDocs int
}

// Script is the final structured result.
type Script struct {
	Raw           string
	Sections      []Section
	TotalDuration int
	Keywords      []string
	Metadata      Metadata
}

// Parse splits raw model output into sections on level-2 heading lines and
// estimates per-section durations against the target. A heading with no
// body lines is dropped. Raw text without any heading yields no sections.
func Parse(raw string, targetSeconds int) ([]Section, int) {
	var sections []Section
	var current *Section
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		if len(body) > 0 {
			current.Content = strings.Join(body, "\n")
			sections = append(sections, *current)
		}
		current = nil
		body = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			current = &Section{Title: title, Type: classify(title)}
			continue
		}
		if current != nil && trimmed != "" {
			body = append(body, trimmed)
		}
	}
	flush()

	total := estimateDurations(sections, targetSeconds)
	return sections, total
}

// classify maps a section title onto a semantic type by keyword, checked in
// fixed priority order; the first match wins and the default is feature.
func classify(title string) string {
	lower := strings.ToLower(title)
	switch {
	case containsAny(lower, "intro", "welcome", "overview", "getting started"):
		return TypeIntroduction
	case containsAny(lower, "conclusion", "summary", "closing", "wrap", "outro"):
		return TypeConclusion
	case strings.Contains(lower, "feature"):
		return TypeFeature
	case containsAny(lower, "flow", "journey", "workflow", "walkthrough"):
		return TypeFlow
	case containsAny(lower, "technical", "architecture", "stack", "under the hood", "how it works"):
		return TypeTechnical
	default:
		return TypeFeature
	}
}

// estimateDurations distributes the target duration across sections in
// proportion to their word counts. Rounding error is accepted: the sum is
// close to, not exactly, the target. When the script has no words at all,
// every duration stays zero.
func estimateDurations(sections []Section, targetSeconds int) int {
	totalWords := 0
	counts := make([]int, len(sections))
	for i, s := range sections {
		counts[i] = len(strings.Fields(s.Content))
		totalWords += counts[i]
	}
	if totalWords == 0 || targetSeconds <= 0 {
		return 0
	}

	wordsPerSecond := float64(totalWords) / float64(targetSeconds)
	total := 0
	for i := range sections {
		d := int(math.Round(float64(counts[i]) / wordsPerSecond))
		sections[i].Duration = d
		total += d
	}
	return total
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

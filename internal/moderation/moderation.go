// Package moderation screens user-supplied text before it's sent to a provider or stored. The screen is a blunt
// keyword filter: it only rejects egregious input and false negatives are acceptable.
package moderation

import (
	"fmt"
	"regexp"

	"github.com/elucidare/tonewise/internal/model"
)

// Category classifies the kind of language that a pattern detects.
type Category string

const (
	CategoryViolence   Category = "violence"
	CategoryHate       Category = "hate"
	CategoryHarassment Category = "harassment"
	CategoryProfanity  Category = "profanity"
)

// Pattern is a single case-insensitive screening rule.
type Pattern struct {
	Name     string
	Category Category
	Regex    *regexp.Regexp
}

// The patterns are evaluated in order and the first match wins, so the order is part of the filter's behavior.
var defaultPatterns = []*Pattern{
	{
		Name:     "violent_verbs",
		Category: CategoryViolence,
		Regex:    regexp.MustCompile(`(?i)\b(kill|killing|murder|murdering|shoot|stab|strangle|slaughter)\b`),
	},
	{
		Name:     "violent_threats",
		Category: CategoryViolence,
		Regex:    regexp.MustCompile(`(?i)\b(hurt|beat|punch|attack)\s+(you|him|her|them)\b`),
	},
	{
		Name:     "weapons",
		Category: CategoryViolence,
		Regex:    regexp.MustCompile(`(?i)\b(bomb|gun|knife)\b`),
	},
	{
		Name:     "targeted_hate",
		Category: CategoryHate,
		Regex:    regexp.MustCompile(`(?i)\bhate\s+(you|him|her|them|people|those|all)\b`),
	},
	{
		Name:     "hate_terms",
		Category: CategoryHate,
		Regex:    regexp.MustCompile(`(?i)\b(nazi|subhuman|racist|bigot)s?\b`),
	},
	{
		Name:     "insults",
		Category: CategoryHarassment,
		Regex:    regexp.MustCompile(`(?i)\b(idiot|moron|loser|worthless|pathetic|stupid)\b`),
	},
	{
		Name:     "intimidation",
		Category: CategoryHarassment,
		Regex:    regexp.MustCompile(`(?i)\b(shut\s+up|watch\s+your\s+back|you('| a)?re\s+dead)\b`),
	},
	{
		Name:     "profanity",
		Category: CategoryProfanity,
		Regex:    regexp.MustCompile(`(?i)\b(fuck\w*|shit\w*|bitch\w*|asshole\w*|bastard\w*|damn)\b`),
	},
}

// Reason returns the verdict reason reported for a category.
func Reason(category Category) string {
	return fmt.Sprintf("Content contains inappropriate language (%s)", category)
}

// Filter screens text against an ordered list of patterns.
type Filter struct {
	patterns []*Pattern
}

// NewFilter creates a filter that uses the default patterns.
func NewFilter() *Filter {
	return &Filter{patterns: defaultPatterns}
}

// Patterns returns the patterns used by the filter, in evaluation order.
func (f *Filter) Patterns() []*Pattern {
	return f.patterns
}

// Moderate screens a piece of text. It never fails: text that doesn't match any pattern is appropriate.
func (f *Filter) Moderate(text string) model.ModerationVerdict {
	for _, p := range f.patterns {
		if p.Regex.MatchString(text) {
			return model.ModerationVerdict{
				IsAppropriate: false,
				Category:      string(p.Category),
				Reason:        Reason(p.Category),
			}
		}
	}
	return model.ModerationVerdict{IsAppropriate: true}
}

var defaultFilter = NewFilter()

// Moderate screens a piece of text using the default patterns.
func Moderate(text string) model.ModerationVerdict {
	return defaultFilter.Moderate(text)
}

package intent

import "strings"

// Category tags which rule produced a template.
type Category string

const (
	CategoryPricing      Category = "pricing"
	CategoryAvailability Category = "availability"
	CategoryLogistics    Category = "logistics"
	CategorySearch       Category = "search"
	CategoryHelp         Category = "help"
	CategoryInfo         Category = "info"
)

// ResponseTemplate is the canned reply a rule produces.
// Content may carry **bold** spans and line breaks.
type ResponseTemplate struct {
	Content     string
	Suggestions []string
	Category    Category
}

// Rule matches when any trigger is a substring of the lower-cased utterance.
type Rule struct {
	Name     string
	Triggers []string
	Template ResponseTemplate
}

// Matches reports whether the already lower-cased utterance contains one of
// the rule's triggers.
func (r Rule) Matches(normalized string) bool {
	for _, t := range r.Triggers {
		if strings.Contains(normalized, t) {
			return true
		}
	}
	return false
}

// Classifier dispatches utterances over an ordered rule list.
// The first matching rule wins; rule position is the only tie-break.
type Classifier struct {
	rules    []Rule
	fallback ResponseTemplate
}

// New builds a classifier over rules, evaluated in the given order.
func New(rules []Rule, fallback ResponseTemplate) *Classifier {
	return &Classifier{
		rules:    rules,
		fallback: fallback,
	}
}

// NewDefault returns the marketplace classifier with the built-in rule table.
func NewDefault() *Classifier {
	return New(DefaultRules(), DefaultTemplate())
}

// Classify never fails: unmatched input yields the fallback template.
func (c *Classifier) Classify(utterance string) ResponseTemplate {
	tpl, _ := c.Match(utterance)
	return tpl
}

// Match is Classify plus the name of the rule that fired ("" for the fallback).
func (c *Classifier) Match(utterance string) (ResponseTemplate, string) {
	normalized := strings.ToLower(utterance)
	for _, r := range c.rules {
		if r.Matches(normalized) {
			return r.Template.clone(), r.Name
		}
	}
	return c.fallback.clone(), ""
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// clone keeps callers from mutating the shared suggestion slices.
func (t ResponseTemplate) clone() ResponseTemplate {
	if t.Suggestions != nil {
		t.Suggestions = append([]string(nil), t.Suggestions...)
	}
	return t
}

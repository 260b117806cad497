// Package safety post-processes AI-generated responses before they reach the
// user: it guarantees a medical disclaimer is present and neutralizes content
// the assistant must never produce (definitive diagnoses, dosage-change
// instructions).
package safety

import (
	"regexp"
	"strings"
)

// Disclaimer is appended to responses that do not already carry one.
const Disclaimer = "This information is general guidance, not a medical " +
	"diagnosis. Please consult a healthcare professional for advice about " +
	"your personal situation."

// disclaimerMarkers are phrases whose presence counts as an existing
// disclaimer, so we do not stack duplicates.
var disclaimerMarkers = []string{
	"not a medical diagnosis",
	"consult a healthcare professional",
	"consult a doctor",
	"seek medical advice",
	"not a substitute for professional medical",
}

// forbiddenPatterns match content that must be neutralized. Each carries the
// flag recorded when it fires.
var forbiddenPatterns = []struct {
	re   *regexp.Regexp
	flag string
}{
	{regexp.MustCompile(`(?i)\byou (definitely|certainly|clearly) have\b`), "definitive_diagnosis"},
	{regexp.MustCompile(`(?i)\b(stop|double|skip|increase|decrease) (taking )?your (medication|dose|dosage)\b`), "dosage_instruction"},
	{regexp.MustCompile(`(?i)\bno need to see a doctor\b`), "discourages_care"},
}

// cautionNote replaces neutralized passages.
const cautionNote = "[guidance removed: please discuss this with your doctor]"

// Result describes what the validator did to a response.
type Result struct {
	// Text is the response after validation.
	Text string

	// Modified reports whether the text was changed.
	Modified bool

	// Flags lists the rules that fired, for the audit log.
	Flags []string
}

// Validator rewrites AI responses to meet the content policy.
type Validator struct{}

// NewValidator creates a validator with the built-in policy.
func NewValidator() *Validator {
	return &Validator{}
}

// Process validates and, where needed, rewrites one response.
func (v *Validator) Process(text string) Result {
	result := Result{Text: text}

	for _, p := range forbiddenPatterns {
		if p.re.MatchString(result.Text) {
			result.Text = p.re.ReplaceAllString(result.Text, cautionNote)
			result.Modified = true
			result.Flags = append(result.Flags, p.flag)
		}
	}

	if !hasDisclaimer(result.Text) {
		result.Text = strings.TrimRight(result.Text, " \n") + "\n\n" + Disclaimer
		result.Modified = true
		result.Flags = append(result.Flags, "disclaimer_added")
	}

	return result
}

func hasDisclaimer(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range disclaimerMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// Package emergency provides keyword-based urgency detection on user
// messages. Detection runs before AI generation and can short-circuit the
// whole consultation with fixed guidance: an orchestration failure must never
// be conflated with a medical emergency response, and vice versa.
package emergency

import "strings"

// Level classifies the urgency of a detected match.
type Level string

const (
	// LevelNone means no urgency indicators were found.
	LevelNone Level = "none"

	// LevelUrgent means the message suggests prompt medical attention.
	LevelUrgent Level = "urgent"

	// LevelEmergency means the message suggests an immediate emergency.
	LevelEmergency Level = "emergency"
)

// Detection is the outcome of screening one message.
type Detection struct {
	Level        Level
	MatchedTerms []string
}

// IsEmergency reports whether the consultation must be short-circuited.
func (d Detection) IsEmergency() bool {
	return d.Level == LevelEmergency
}

// EmergencyGuidance is the fixed response served instead of an AI-generated
// one when an emergency is detected.
const EmergencyGuidance = "Your message mentions symptoms that may require " +
	"immediate medical attention. Please call your local emergency number or " +
	"go to the nearest emergency department now. This assistant cannot help " +
	"with medical emergencies."

// UrgentGuidance is prepended to AI-generated responses for urgent but
// non-emergency messages.
const UrgentGuidance = "Your symptoms may need prompt attention. If they " +
	"worsen, contact a healthcare professional or urgent care service."

// emergencyTerms trigger an immediate short-circuit.
var emergencyTerms = []string{
	"chest pain",
	"can't breathe",
	"cannot breathe",
	"difficulty breathing",
	"unconscious",
	"not breathing",
	"severe bleeding",
	"stroke",
	"heart attack",
	"overdose",
	"suicide",
	"suicidal",
	"kill myself",
	"anaphylaxis",
	"seizure",
}

// urgentTerms flag the message without short-circuiting generation.
var urgentTerms = []string{
	"high fever",
	"severe pain",
	"vomiting blood",
	"head injury",
	"broken bone",
	"allergic reaction",
	"dehydrated",
	"fainted",
	"blurred vision",
}

// Detector screens user messages for urgency keywords. The zero-cost default
// term lists can be extended per deployment.
type Detector struct {
	emergency []string
	urgent    []string
}

// NewDetector creates a detector with the built-in term lists.
func NewDetector() *Detector {
	return &Detector{
		emergency: emergencyTerms,
		urgent:    urgentTerms,
	}
}

// NewDetectorWithTerms creates a detector with custom term lists, used by
// tests and deployments with localized terminology.
func NewDetectorWithTerms(emergency, urgent []string) *Detector {
	return &Detector{emergency: emergency, urgent: urgent}
}

// Detect screens a message. Matching is case-insensitive substring matching;
// the original message is never mutated or stored here.
func (d *Detector) Detect(message string) Detection {
	lowered := strings.ToLower(message)

	if matched := matchTerms(lowered, d.emergency); len(matched) > 0 {
		return Detection{Level: LevelEmergency, MatchedTerms: matched}
	}
	if matched := matchTerms(lowered, d.urgent); len(matched) > 0 {
		return Detection{Level: LevelUrgent, MatchedTerms: matched}
	}
	return Detection{Level: LevelNone}
}

func matchTerms(lowered string, terms []string) []string {
	var matched []string
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

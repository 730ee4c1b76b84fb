package provider

import (
	"fmt"
)

// RelationshipTypes lists the accepted relationships between the user and the recipient of a generated script.
var RelationshipTypes = []string{
	"manager",
	"colleague",
	"direct_report",
	"client",
	"friend",
	"family",
	"other",
}

// Voices lists the accepted synthesis voices.
var Voices = []string{"alloy", "echo", "nova"}

const toneSystemPrompt = `You analyze the tone of workplace messages for neurodiverse professionals.
Respond only with a JSON object with exactly these keys:
"tones": an object with the numeric keys "professional", "friendly", "urgent" and "neutral", given as percentages that add up to 100;
"confidence": a number between 0 and 1;
"explanation": a short explanation written in literal, plain language with no idioms or metaphors;
"suggestions": an array of short, literal suggestions for adjusting the message.`

const scriptSystemPrompt = `You write reply scripts for neurodiverse professionals.
Respond only with a JSON object with a single key "responses". Its value is an object with the keys "casual",
"professional" and "direct". Each of those is an object with the keys "content" (the reply text), "explanation"
(why the reply works, in literal, plain language with no idioms or metaphors) and "confidence" (a number between 0 and 1).`

// TonePrompt returns the prompts used to analyze the tone of a message.
func TonePrompt(text string) (system, user string) {
	return toneSystemPrompt, fmt.Sprintf("Analyze the tone of this message:\n\n%s", text)
}

// ScriptPrompt returns the prompts used to generate reply scripts.
func ScriptPrompt(situation, relationship string) (system, user string) {
	return scriptSystemPrompt, fmt.Sprintf(
		"The person I need to reply to is my %s.\n\nThe situation:\n%s",
		relationshipLabel(relationship), situation,
	)
}

func relationshipLabel(relationship string) string {
	switch relationship {
	case "direct_report":
		return "direct report"
	case "other":
		return "contact"
	default:
		return relationship
	}
}

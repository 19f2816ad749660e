package governance

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxMessageLength is the default upper bound on message length
// in characters.
const DefaultMaxMessageLength = 2000

// injectionPhrases are indicator phrases for prompt-injection attempts.
// A match marks the verdict as suspicious but never invalidates the
// request: false positives must not block legitimate traffic, so this is
// a logging signal only.
var injectionPhrases = []string{
	"ignore previous instructions",
	"disregard prior",
	"system prompt",
}

// Verdict is the structured result of validating an inbound message.
type Verdict struct {
	// Valid reports whether the message passed validation.
	Valid bool

	// Err is a human-readable reason when Valid is false.
	Err string

	// EstimatedTokens is the token estimate for a valid message.
	EstimatedTokens int

	// Length is the message length in characters for a valid message.
	Length int

	// Suspicious is set when the message contains prompt-injection
	// indicator phrases. Suspicious messages are still valid.
	Suspicious bool
}

// Validator validates inbound messages against length and emptiness rules
// and flags likely prompt-injection attempts.
type Validator struct {
	maxLength int
}

// NewValidator creates a Validator with the given maximum message length.
// A zero or negative maxLength falls back to DefaultMaxMessageLength.
func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	return &Validator{maxLength: maxLength}
}

// Validate checks text and returns a structured verdict. It never returns
// an error: all failure modes are encoded in the verdict.
//
// Rules, in order:
//  1. Empty or whitespace-only text is invalid.
//  2. Text longer than the configured maximum is invalid.
//  3. Otherwise the verdict is valid with token and length estimates.
//
// Independently of validity, the text is scanned for prompt-injection
// indicator phrases and Suspicious is set on a match.
func (v *Validator) Validate(text string) Verdict {
	verdict := Verdict{
		Suspicious: containsInjectionPhrase(text),
	}

	if strings.TrimSpace(text) == "" {
		verdict.Err = "message is empty"
		return verdict
	}

	length := utf8.RuneCountInString(text)
	if length > v.maxLength {
		verdict.Err = "message too long"
		return verdict
	}

	verdict.Valid = true
	verdict.Length = length
	verdict.EstimatedTokens = EstimateTokens(text)
	return verdict
}

// MaxLength returns the configured maximum message length.
func (v *Validator) MaxLength() int {
	return v.maxLength
}

// containsInjectionPhrase reports whether text contains any known
// prompt-injection indicator phrase (case-insensitive).
func containsInjectionPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range injectionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

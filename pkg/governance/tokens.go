package governance

import "unicode/utf8"

// EstimateTokens estimates the token count of text using a length-based
// heuristic: one token per four characters, with a floor of one token.
//
// This is intentionally not a tokenizer. The estimate is deterministic and
// non-decreasing in input length, which is what the validation layer and
// response metadata need. Real token counts come back from the provider
// when available.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 1
	}

	tokens := (n + 3) / 4
	if tokens < 1 {
		return 1
	}
	return tokens
}

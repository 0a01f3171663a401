package prompts

import (
	"fmt"
	"strings"
)

// DefaultScriptWords is the length the generator is asked for. It is a target only; nothing
// downstream enforces it.
const DefaultScriptWords = 60

// Script builds the single user message sent to the text generator.
func Script(title string, words int) string {
	if words <= 0 {
		words = DefaultScriptWords
	}
	return fmt.Sprintf("Write a %d-word professional news script for: %s. Focus on the facts. Dramatic tone.", words, strings.TrimSpace(title))
}

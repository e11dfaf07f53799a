package authcore

import "strings"

// sanitizeInput normalizes user-supplied form values: surrounding
// whitespace is trimmed and angle brackets are stripped so stored values
// cannot carry markup.
func sanitizeInput(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "<", "")
	value = strings.ReplaceAll(value, ">", "")
	return value
}

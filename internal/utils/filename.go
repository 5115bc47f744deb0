package utils

import "strings"

const filenamePromptChars = 30

// VideoFilename is the suggested download name for a video made from prompt.
// The first 30 characters of the prompt are kept with anything not [A-Za-z0-9]
// replaced by an underscore.
func VideoFilename(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > filenamePromptChars {
		runes = runes[:filenamePromptChars]
	}
	var b strings.Builder
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return "video-" + b.String() + ".mp4"
}

package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompts/style_guide.md
var styleGuideRaw string

// StylePreamble is prepended to every image edit instruction.
var StylePreamble = strings.TrimSpace(styleGuideRaw)

// DefaultAnimationPrompt is used when an animation request has no instruction.
const DefaultAnimationPrompt = "Animate this professional job poster with subtle, elegant motion. Keep the text legible and the layout intact."

func editPrompt(instruction string) string {
	return StylePreamble + "\n\nUser instruction: " + instruction
}

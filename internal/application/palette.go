package application

import "math/rand"

// Palette is the fixed set of color tokens used for participant avatars
// and appointment card borders.
var Palette = []string{
	"#6366f1", // indigo
	"#ec4899", // pink
	"#8b5cf6", // purple
	"#14b8a6", // teal
	"#f59e0b", // amber
	"#ef4444", // red
	"#22c55e", // green
	"#06b6d4", // cyan
}

// UnknownParticipantColor is the color of the placeholder substituted
// for dangling participant references.
const UnknownParticipantColor = "#ccc"

// UnknownParticipantName is the display name of the placeholder.
const UnknownParticipantName = "Unknown"

func randomPaletteColor() string {
	return Palette[rand.Intn(len(Palette))]
}

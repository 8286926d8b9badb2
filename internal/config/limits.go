package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in VARCHAR(255) and keep names short and
	// descriptive.
	MaxFolderNameLength = 255

	// MaxFolderColorLength bounds the display color value. Long enough
	// for hex and CSS color keywords.
	MaxFolderColorLength = 32

	// MaxFolderEmojiLength bounds the emoji field. A single grapheme can
	// span several runes (skin tones, ZWJ sequences).
	MaxFolderEmojiLength = 16

	// MaxPromptTitleLength is the maximum length for prompt titles.
	MaxPromptTitleLength = 255
)

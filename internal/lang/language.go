package lang

import (
	"fmt"
	"strings"
)

// validLanguages contains ISO 639-1 language codes commonly seen in speech
// corpora. This is not exhaustive but covers the languages of the datasets
// this tool is used with; additions are cheap.
var validLanguages = map[string]bool{
	"ar": true, // Arabic
	"cs": true, // Czech
	"da": true, // Danish
	"de": true, // German
	"el": true, // Greek
	"en": true, // English
	"es": true, // Spanish
	"fi": true, // Finnish
	"fr": true, // French
	"he": true, // Hebrew
	"hi": true, // Hindi
	"hu": true, // Hungarian
	"id": true, // Indonesian
	"it": true, // Italian
	"ja": true, // Japanese
	"ko": true, // Korean
	"nl": true, // Dutch
	"no": true, // Norwegian
	"pl": true, // Polish
	"pt": true, // Portuguese
	"ro": true, // Romanian
	"ru": true, // Russian
	"sv": true, // Swedish
	"th": true, // Thai
	"tr": true, // Turkish
	"uk": true, // Ukrainian
	"vi": true, // Vietnamese
	"zh": true, // Chinese
}

// Normalize normalizes a language code to lowercase with hyphen separator.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(code, "_", "-"))
}

// BaseCode returns the primary subtag of a normalized code.
// Example: "pt-br" -> "pt", "en" -> "en".
func BaseCode(code string) string {
	norm := Normalize(code)
	if i := strings.Index(norm, "-"); i >= 0 {
		return norm[:i]
	}
	return norm
}

// Validate checks that a language code's base is a known ISO 639-1 code.
// The empty string is valid: annotation language metadata is optional.
func Validate(code string) error {
	if code == "" {
		return nil
	}
	if !validLanguages[BaseCode(code)] {
		return fmt.Errorf("language %q: %w", code, ErrInvalid)
	}
	return nil
}

package language

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is the recognition language used when none is configured.
const Default = "pt-BR"

// Language is a recognition language offered in the configure form.
type Language struct {
	Tag        string // BCP 47 tag (e.g., "pt-BR", "en-US")
	Name       string // English name
	NativeName string // name in the language itself
}

// suggested is the short list shown by the configure form. Any valid BCP 47
// tag is accepted in the config file.
var suggested = []string{
	"pt-BR", "pt-PT", "en-US", "en-GB", "es-ES", "es-MX", "fr-FR", "de-DE", "it-IT", "ja-JP",
}

// Normalize parses a BCP 47 tag and returns its canonical form ("pt-br" -> "pt-BR").
func Normalize(tag string) (string, error) {
	if tag == "" {
		return "", fmt.Errorf("empty language tag")
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("invalid language tag %q: %w", tag, err)
	}
	return t.String(), nil
}

// IsValid reports whether tag parses as a BCP 47 language tag.
func IsValid(tag string) bool {
	_, err := Normalize(tag)
	return err == nil
}

// Base returns the ISO 639-1 base language of tag ("pt-BR" -> "pt"),
// which is what whisper style APIs expect.
func Base(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, _ := t.Base()
	return base.String()
}

// FromTag describes tag in English and in its own language.
func FromTag(tag string) Language {
	t, err := language.Parse(tag)
	if err != nil {
		return Language{Tag: tag}
	}
	return Language{
		Tag:        t.String(),
		Name:       display.English.Tags().Name(t),
		NativeName: display.Self.Name(t),
	}
}

// Suggested returns the languages listed by the configure form.
func Suggested() []Language {
	out := make([]Language, len(suggested))
	for i, tag := range suggested {
		out[i] = FromTag(tag)
	}
	return out
}

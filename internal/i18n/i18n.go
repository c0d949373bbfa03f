// Package i18n holds the public site's language selection. The site is
// bilingual: every public URL is prefixed with a language code and every
// content field exists in both languages.
package i18n

// Lang is a supported public site language.
type Lang string

const (
	English Lang = "en"
	Arabic  Lang = "ar"
)

// Parse returns the language for a URL prefix, falling back to English
// for anything unknown.
func Parse(s string) (Lang, bool) {
	switch s {
	case "en":
		return English, true
	case "ar":
		return Arabic, true
	}
	return English, false
}

// Dir returns the text direction for HTML rendering.
func (l Lang) Dir() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// Pick selects the field value for the language.
func (l Lang) Pick(en, ar string) string {
	if l == Arabic && ar != "" {
		return ar
	}
	return en
}

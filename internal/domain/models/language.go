package models

// Language codes supported by the site. BCP-47 identifiers, one document
// revision per (sequence id, language) pair.
const (
	LanguageEN  = "en"
	LanguageJA  = "ja"
	LanguageZHT = "zh-TW"
	LanguageZHS = "zh-CN"
)

// SupportedLanguages lists every language the site serves, in display order.
var SupportedLanguages = []string{LanguageEN, LanguageJA, LanguageZHT, LanguageZHS}

// IsSupportedLanguage reports whether code is a language the site serves.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

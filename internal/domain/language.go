package domain

// Language is one of the supported locale tags.
type Language string

const (
	LanguageEnglish Language = "en-US"
	LanguageFrench  Language = "fr-FR"
	LanguageSpanish Language = "es-ES"
	LanguageItalian Language = "it-IT"
	LanguageGerman  Language = "de-DE"
	LanguageArabic  Language = "ar-SA"
)

// DefaultLanguage is used whenever no other tag applies.
const DefaultLanguage = LanguageFrench

// Languages returns every supported tag in classifier evaluation order.
func Languages() []Language {
	return []Language{
		LanguageEnglish,
		LanguageFrench,
		LanguageSpanish,
		LanguageItalian,
		LanguageGerman,
		LanguageArabic,
	}
}

// Valid reports whether l is a supported tag.
func (l Language) Valid() bool {
	_, ok := ParseLanguage(string(l))
	return ok
}

// ParseLanguage maps a raw tag to a supported Language.
func ParseLanguage(s string) (Language, bool) {
	for _, l := range Languages() {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

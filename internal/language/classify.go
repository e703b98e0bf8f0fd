// Package language detects the language of user input and holds the
// per-language text the assistant seeds new sessions with.
package language

import (
	"regexp"
	"strings"

	"github.com/mindcareai/mindcare/internal/domain"
)

// rule pairs a language with the keyword pattern that identifies it.
type rule struct {
	lang    domain.Language
	pattern *regexp.Regexp
}

// wordPattern matches any of the given words as a whole word, case-insensitively.
// Boundaries are Unicode letters and digits rather than ASCII-only \b, so words
// written in Arabic or ending in an accented letter are recognised.
func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:` + strings.Join(quoted, "|") + `)(?:[^\p{L}\p{N}_]|$)`)
}

// rules is evaluated in order; the first match wins.
var rules = []rule{
	{domain.LanguageEnglish, wordPattern("hello", "hi", "how", "why", "what", "where", "who", "when", "is", "are", "the", "this")},
	{domain.LanguageFrench, wordPattern("bonjour", "salut", "comment", "pourquoi", "quoi", "où", "qui", "quand", "est", "sont", "le", "la", "les", "ce", "cette")},
	{domain.LanguageSpanish, wordPattern("hola", "como", "por qué", "qué", "dónde", "quién", "cuándo", "es", "son", "el", "la", "los", "este", "esta")},
	{domain.LanguageItalian, wordPattern("ciao", "come", "perché", "cosa", "dove", "chi", "quando", "è", "sono", "il", "la", "i", "questo", "questa")},
	{domain.LanguageGerman, wordPattern("hallo", "wie", "warum", "was", "wo", "wer", "wann", "ist", "sind", "der", "die", "das", "dieser", "diese")},
	{domain.LanguageArabic, wordPattern("مرحبا", "كيف", "لماذا", "ماذا", "أين", "من", "متى", "هو", "هي", "ال", "هذا", "هذه")},
}

// Classify returns the language of text. It is deterministic and total: when
// no pattern matches, the default language is returned.
func Classify(text string) domain.Language {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.lang
		}
	}
	return domain.DefaultLanguage
}

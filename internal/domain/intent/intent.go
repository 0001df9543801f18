package intent

import (
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindGreeting Kind = "greeting"
	KindSearch   Kind = "search"
	KindRegister Kind = "register"
	KindInfo     Kind = "info"
)

// Intent is the routed meaning of a chat message.
type Intent struct {
	Kind Kind
	// Terms is the search text for KindSearch; empty lists everything.
	Terms string
	// Name is the agent asked about for KindInfo; empty asks for usage help.
	Name string
}

var (
	searchKeywords = []string{"find", "search", "list", "who"}
	infoKeywords   = []string{"info", "about"}
	stopwords      = map[string]bool{
		"find": true, "search": true, "list": true, "agents": true, "that": true,
		"with": true, "help": true, "who": true, "can": true,
	}
)

const minTermRunes = 4

// Classify routes free text by keyword. Checks run in a fixed order: search,
// register, info, then greeting.
func Classify(text string) Intent {
	t := strings.TrimSpace(strings.ToLower(text))

	if containsAny(t, searchKeywords) {
		return Intent{Kind: KindSearch, Terms: searchTerms(t)}
	}
	if strings.Contains(t, "register") {
		return Intent{Kind: KindRegister}
	}
	if containsAny(t, infoKeywords) {
		return Intent{Kind: KindInfo, Name: infoSubject(t)}
	}
	return Intent{Kind: KindGreeting}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func searchTerms(t string) string {
	var terms []string
	for _, w := range strings.Fields(t) {
		if utf8.RuneCountInString(w) < minTermRunes || stopwords[w] {
			continue
		}
		terms = append(terms, w)
	}
	return strings.Join(terms, " ")
}

// infoSubject returns whatever follows the last info/about keyword.
func infoSubject(t string) string {
	start, cut := -1, -1
	for _, kw := range infoKeywords {
		if i := strings.LastIndex(t, kw); i > start {
			start, cut = i, i+len(kw)
		}
	}
	if cut < 0 {
		return ""
	}
	return strings.TrimSpace(t[cut:])
}

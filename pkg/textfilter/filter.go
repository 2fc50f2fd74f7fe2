package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words replaced when the client runs in family-safe mode. Inbound chat
// is server-authored free text, so filtering happens at display time.
var filteredWords = []string{
	"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "crap",
	"piss", "whore", "slut", "motherfucker", "goddamn", "asshole",
	"dumbass", "jackass", "badass", "bullshit", "dipshit", "shithead",
	"dickhead", "prick", "douchebag",
}

// replacements maps each filtered word to a family-friendly alternative.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"badass":       "tough",
	"bullshit":     "baloney",
	"dipshit":      "dummy",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"prick":        "jerk",
	"douchebag":    "jerk",
}

// ChatFilter rewrites profanity in incoming chat text before display.
type ChatFilter struct {
	regexes map[string]*regexp.Regexp
}

// NewChatFilter creates a filter with patterns pre-compiled for every
// filtered word.
func NewChatFilter() *ChatFilter {
	cf := &ChatFilter{
		regexes: make(map[string]*regexp.Regexp, len(filteredWords)),
	}
	for _, word := range filteredWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		cf.regexes[word] = regexp.MustCompile(pattern)
	}
	return cf
}

// Clean replaces filtered words in text with their alternatives,
// preserving the case pattern of the original word.
func (cf *ChatFilter) Clean(text string) string {
	result := text
	for _, word := range filteredWords {
		regex := cf.regexes[word]
		replacement, ok := replacements[word]
		if !ok {
			continue
		}
		result = regex.ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// ContainsProfanity reports whether the text matches any filtered word.
func (cf *ChatFilter) ContainsProfanity(text string) bool {
	for _, word := range filteredWords {
		if cf.regexes[word].MatchString(text) {
			return true
		}
	}
	return false
}

// preserveCase applies the case pattern of the original word to the
// replacement.
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: carry the original's per-character case as far as it
	// reaches, lowercase beyond that.
	originalRunes := []rune(original)
	result := make([]rune, 0, len(replacement))
	for i, r := range replacement {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}

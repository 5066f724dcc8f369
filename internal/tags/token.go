package tags

import (
	"regexp"
	"unicode"
)

var tagPattern = regexp.MustCompile(`#([^\s#]+)`)

// Token is the tag fragment under the cursor. Offsets are rune offsets into
// the buffer: Start is just after the '#', End is the cursor.
type Token struct {
	Text  string
	Start int
	End   int
}

// TokenAt reports the tag token the cursor is positioned in, if any.
//
// The scan walks left from the cursor and stops at the nearest '#'. Any
// whitespace met first means the user has moved on from tagging.
func TokenAt(text string, cursor int) (Token, bool) {
	runes := []rune(text)
	if cursor <= 0 || cursor > len(runes) {
		return Token{}, false
	}
	for i := cursor - 1; i >= 0; i-- {
		r := runes[i]
		if r == '#' {
			return Token{
				Text:  string(runes[i+1 : cursor]),
				Start: i + 1,
				End:   cursor,
			}, true
		}
		if unicode.IsSpace(r) {
			return Token{}, false
		}
	}
	return Token{}, false
}

// Extract returns the distinct tags written as #word in text, in order of
// first appearance.
func Extract(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

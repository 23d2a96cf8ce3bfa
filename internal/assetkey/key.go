package assetkey

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	separator      = "_"
	doubleModifier = "x2"
)

// Direction is one compass token of a key.
type Direction struct {
	Word    string `json:"word"`
	Doubled bool   `json:"doubled"`
}

// Key is a decoded asset key.
type Key struct {
	Raw        string      `json:"raw"`
	BaseName   string      `json:"base_name"`
	Directions []Direction `json:"directions"`
}

var arrows = map[string]string{
	"nord":  "⬆️",
	"sud":   "⬇️",
	"est":   "➡️",
	"ouest": "⬅️",
}

// IsDirection reports whether token is one of the four direction words.
func IsDirection(token string) bool {
	_, ok := arrows[token]
	return ok
}

// Decode splits key into base name and directions.
func Decode(key string) Key {
	tokens := strings.Split(key, separator)

	doubled := tokens[len(tokens)-1] == doubleModifier
	if doubled {
		tokens = tokens[:len(tokens)-1]
	}

	var words []string
	for len(tokens) > 0 && IsDirection(tokens[len(tokens)-1]) {
		words = append(words, tokens[len(tokens)-1])
		tokens = tokens[:len(tokens)-1]
	}
	slices.Reverse(words)

	decoded := Key{Raw: key, BaseName: key, Directions: make([]Direction, len(words))}
	if len(tokens) > 0 {
		decoded.BaseName = strings.Join(tokens, separator)
	}
	for i, w := range words {
		decoded.Directions[i] = Direction{Word: w}
	}
	if doubled && len(words) > 0 {
		decoded.Directions[len(words)-1].Doubled = true
	}
	return decoded
}

// Label renders the direction for display, e.g. "⬇️ Sud" or "➡️➡️ Est x2".
// Words outside the closed enumeration are returned unchanged.
func (d Direction) Label() string {
	arrow, ok := arrows[d.Word]
	if !ok {
		return d.Word
	}
	name := cases.Title(language.French).String(d.Word)
	if d.Doubled {
		return arrow + arrow + " " + name + " " + doubleModifier
	}
	return arrow + " " + name
}

// Summary joins the direction labels with " + ". It is empty when the key
// carries no directions.
func (k Key) Summary() string {
	labels := make([]string, len(k.Directions))
	for i, d := range k.Directions {
		labels[i] = d.Label()
	}
	return strings.Join(labels, " + ")
}

// Display is the base name, followed by the direction summary when there is
// one.
func (k Key) Display() string {
	summary := k.Summary()
	if summary == "" {
		return k.BaseName
	}
	return k.BaseName + " | " + summary
}

package starlark

import (
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify strips diacritics from s, lowercases it and collapses every run
// of non-alphanumeric characters into a single dash.
func Slugify(s string) string {
	// Transformers are stateful; build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

var slugBuiltin = starlark.NewBuiltin("slug", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	if str, ok := starlark.AsString(s); ok {
		return starlark.String(Slugify(str)), nil
	}
	return starlark.String(Slugify(s.String())), nil
})

// Predeclared returns the globals available to an output-name expression:
// page (the composite as a dict), index (its position) and slug().
func Predeclared(page map[string]any, index int) (starlark.StringDict, error) {
	pageVal, err := GoToStarlark(page)
	if err != nil {
		return nil, err
	}
	return starlark.StringDict{
		"page":  pageVal,
		"index": starlark.MakeInt(index),
		"slug":  slugBuiltin,
	}, nil
}

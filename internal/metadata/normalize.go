package metadata

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// splitPattern matches collaboration markers surrounded by spaces. '&' and
// 'and' are deliberately absent because they are common in group names, and
// the surrounding spaces keep names like "Quinn XCII" intact.
var splitPattern = regexp.MustCompile(`(?i) (?:feat(?:\.|uring)?|ft\.?|with|x) `)

// commonPrefixes are function words rotated to the end of a sort key, across
// the languages that show up in practice.
var commonPrefixes = []string{
	"the ", "a ", "an ", "la ", "le ", "les ", "el ", "los ", "las ", "l'",
	"das ", "der ", "die ", "een ", "de ", "den ", "det ", "het ", "ein ", "eine ",
}

// SplitArtists flattens raw artist strings into individual names, splitting
// on feat/ft/featuring/with/x markers. Names listed in exceptions are kept
// verbatim. Order is preserved.
func SplitArtists(raw []string, exceptions []string) []string {
	out := make([]string, 0, len(raw))
	for _, artist := range raw {
		if slices.Contains(exceptions, artist) {
			out = append(out, artist)
			continue
		}
		for _, part := range splitPattern.Split(artist, -1) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// SortKey derives a sort key from a display name: Unicode-decomposed,
// lowercased, with a leading function-word prefix rotated to the end after a
// comma ("The Beatles" -> "beatles, the").
func SortKey(name string) string {
	key := strings.ToLower(norm.NFKD.String(name))
	for _, prefix := range commonPrefixes {
		if strings.HasPrefix(key, prefix) {
			return strings.TrimPrefix(key, prefix) + ", " + strings.TrimSpace(prefix)
		}
	}
	return key
}

// FormatDuration renders seconds as "m:ss", or "h:mm:ss" past an hour.
func FormatDuration(secs int) string {
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

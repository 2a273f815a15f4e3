package logo

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

var allowedExtensions = map[string]bool{
	".svg":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var logoMarkers = []string{"logo", "wordmark", "brand"}

// blockedTerms mark assets that are not the current canonical logo.
var blockedTerms = []string{
	"screenshot", "poster", "banner", "wallpaper", "icon", "favicon",
	"old", "former", "previous", "historic", "vintage", "retro",
	"concept", "draft", "proposal", "mockup", "variant",
}

// recencyWords are file name tokens that flag a current logo version.
var recencyWords = map[string]bool{
	"current": true,
	"new":     true,
}

// recentYears count as a recency marker wherever they appear in the name.
var recentYears = map[string]bool{
	"2020": true,
	"2021": true,
	"2022": true,
	"2023": true,
	"2024": true,
	"2025": true,
	"2026": true,
}

var (
	logoSuffix = regexp.MustCompile(`(?i)\s*logo.*$`)
	digitRun   = regexp.MustCompile(`\d+`)
)

// IsValidCandidate reports whether a media index file title looks like a
// usable, current logo for the search term that found it.
func IsValidCandidate(fileTitle, searchTerm string) bool {
	name := strings.ToLower(strings.TrimSpace(fileTitle))
	name = strings.TrimPrefix(name, "file:")

	if !allowedExtensions[path.Ext(name)] {
		return false
	}
	if !containsAny(name, logoMarkers) {
		return false
	}
	if containsAny(name, blockedTerms) {
		return false
	}

	tokens := tokenize(name)
	if !matchesTerm(name, tokens, searchTerm) {
		return false
	}

	recent, dated := false, false
	for _, tok := range tokens {
		if recencyWords[tok] {
			recent = true
		}
	}
	for _, year := range years(name) {
		dated = true
		if recentYears[year] {
			recent = true
		}
	}
	return recent || !dated
}

// years returns the four-digit 19xx/20xx numbers in s, including those glued
// to letters as in "logo2010". Longer digit runs are not years.
func years(s string) []string {
	var out []string
	for _, run := range digitRun.FindAllString(s, -1) {
		if len(run) == 4 && (strings.HasPrefix(run, "19") || strings.HasPrefix(run, "20")) {
			out = append(out, run)
		}
	}
	return out
}

// matchesTerm checks that the file name is about the searched channel: one
// significant word of the term (longer than two characters) occurs in the
// name, or the term's acronym is one of the name's tokens.
func matchesTerm(name string, tokens []string, searchTerm string) bool {
	stripped := strings.ToLower(logoSuffix.ReplaceAllString(searchTerm, ""))
	words := strings.Fields(stripped)

	for _, w := range words {
		if len([]rune(w)) > 2 && strings.Contains(name, w) {
			return true
		}
	}

	if len(words) < 2 {
		return false
	}
	var acronym strings.Builder
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			acronym.WriteRune(r)
		}
	}
	if acronym.Len() < 2 {
		return false
	}
	for _, tok := range tokens {
		if tok == acronym.String() {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

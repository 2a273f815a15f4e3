package logo

import "strings"

// synonym maps a keyword found in a channel name to the search phrases that
// usually find the network's canonical logo file.
type synonym struct {
	keyword string
	phrases []string
}

// synonyms is checked in order; every entry whose keyword occurs in the
// lower-cased channel name contributes all its phrases.
var synonyms = []synonym{
	{"abc", []string{"ABC logo", "American Broadcasting Company logo"}},
	{"nbc", []string{"NBC logo", "National Broadcasting Company logo"}},
	{"cbs", []string{"CBS logo", "CBS eye logo"}},
	{"fox", []string{"Fox logo", "Fox Broadcasting Company logo"}},
	{"pbs", []string{"PBS logo", "Public Broadcasting Service logo"}},
	{"cnn", []string{"CNN logo", "Cable News Network logo"}},
	{"msnbc", []string{"MSNBC logo"}},
	{"espn", []string{"ESPN logo", "ESPN wordmark"}},
	{"hbo", []string{"HBO logo", "Home Box Office logo"}},
	{"bbc", []string{"BBC logo", "British Broadcasting Corporation logo"}},
	{"discovery", []string{"Discovery Channel logo", "Discovery logo"}},
	{"national geographic", []string{"National Geographic Channel logo", "Nat Geo logo"}},
	{"nat geo", []string{"National Geographic Channel logo", "Nat Geo logo"}},
	{"history", []string{"History Channel logo", "History logo"}},
	{"mtv", []string{"MTV logo", "Music Television logo"}},
	{"cartoon network", []string{"Cartoon Network logo"}},
	{"nickelodeon", []string{"Nickelodeon logo"}},
	{"disney", []string{"Disney Channel logo", "Disney logo"}},
	{"comedy central", []string{"Comedy Central logo"}},
	{"food network", []string{"Food Network logo"}},
	{"hgtv", []string{"HGTV logo", "Home & Garden Television logo"}},
	{"tnt", []string{"TNT logo", "Turner Network Television logo"}},
	{"tbs", []string{"TBS logo", "Turner Broadcasting System logo"}},
	{"amc", []string{"AMC logo", "AMC Networks logo"}},
	{"syfy", []string{"Syfy logo"}},
	{"bravo", []string{"Bravo logo"}},
	{"showtime", []string{"Showtime logo"}},
	{"starz", []string{"Starz logo"}},
	{"cinemax", []string{"Cinemax logo"}},
	{"euronews", []string{"Euronews logo"}},
	{"al jazeera", []string{"Al Jazeera logo"}},
	{"sky", []string{"Sky logo", "Sky Group logo"}},
	{"eurosport", []string{"Eurosport logo"}},
	{"tlc", []string{"TLC logo"}},
}

// baseSuffixes are appended to the normalized name, in priority order.
var baseSuffixes = []string{
	" logo",
	" television logo",
	" TV logo",
	" network logo",
	" channel logo",
}

// SearchTerms returns the ordered, de-duplicated search strings for a channel
// name. Earlier terms are tried first. The result is never empty for a
// non-blank name.
func SearchTerms(channelName string) []string {
	name := strings.Join(strings.Fields(channelName), " ")
	if name == "" {
		return nil
	}

	terms := make([]string, 0, 1+len(baseSuffixes)+4)
	terms = append(terms, name)
	for _, suffix := range baseSuffixes {
		terms = append(terms, name+suffix)
	}

	lower := strings.ToLower(name)
	for _, syn := range synonyms {
		if strings.Contains(lower, syn.keyword) {
			terms = append(terms, syn.phrases...)
		}
	}

	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

package locate

import (
	"regexp"
	"strings"
)

var (
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)
	noiseSuffixRe   = regexp.MustCompile(`(?i)[\s,;-]*\b(?:crossing area|surrounding area|vicinity|suburbs|outskirts)$`)
	adminSuffixRe   = regexp.MustCompile(`(?i)\s+(?:region|area|city|province|district|territory|zone|sector)$`)
	conjunctionRe   = regexp.MustCompile(`(?i)^(.+?)\s+(?:and|&)\s+\S`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// knownCountries are the country names trusted as the right-hand side of a
// "city, country" split.
var knownCountries = []string{
	"palestine", "israel", "gaza", "west bank", "lebanon", "syria", "jordan",
	"iraq", "iran", "egypt", "saudi arabia", "yemen", "turkey", "russia",
	"ukraine", "china", "india", "pakistan", "afghanistan", "uzbekistan",
	"kazakhstan",
}

// Candidates turns a raw location name into the ordered list of queries to
// try. A cleaned form comes first when cleaning changed anything, then the
// raw name, then slash, comma and conjunction derived fallbacks. The result
// is deduplicated and never empty.
func Candidates(name string) []string {
	raw := strings.TrimSpace(name)

	var out []string
	if cleaned := cleanName(raw); cleaned != raw {
		out = append(out, cleaned)
	}
	out = append(out, raw)

	if strings.Contains(raw, "/") {
		out = append(out, strings.Split(raw, "/")...)
	}

	parts := splitTrim(raw, ",")
	switch {
	case len(parts) == 2:
		city, country := parts[0], parts[1]
		if isKnownCountry(country) {
			out = append(out, city+", "+country)
		} else {
			out = append(out, joinLastTwo(parts))
			if runeLen(country) >= 3 {
				out = append(out, country)
			}
		}
	case len(parts) > 2:
		out = append(out, parts[0]+", "+parts[1], joinLastTwo(parts))
	}

	if m := conjunctionRe.FindStringSubmatch(raw); m != nil {
		out = append(out, m[1])
	}

	out = dedupe(out)
	if len(out) == 0 {
		return []string{name}
	}
	return out
}

// cleanName strips parentheticals, then a trailing administrative word, then
// trailing noise phrases. The admin word goes first, so "crossing area"
// leaves "crossing" behind.
func cleanName(s string) string {
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = collapseSpace(s)
	s = adminSuffixRe.ReplaceAllString(s, "")
	s = noiseSuffixRe.ReplaceAllString(s, "")
	return strings.Trim(collapseSpace(s), " ,;-")
}

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func splitTrim(s, sep string) []string {
	raw := strings.Split(s, sep)
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func joinLastTwo(parts []string) string {
	return parts[len(parts)-2] + ", " + parts[len(parts)-1]
}

func isKnownCountry(s string) bool {
	f := fold(s)
	for _, c := range knownCountries {
		if strings.Contains(f, c) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

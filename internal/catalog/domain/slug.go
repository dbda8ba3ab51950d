package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// fallbackSlugPrefix is used for names with no ASCII letters or digits after folding (e.g. 月ノ雫).
const fallbackSlugPrefix = "store-"

// Slugify derives the URL key for a store name: accents folded, lower-cased,
// every run of other characters collapsed into one hyphen. Names that fold to
// nothing get a stable "store-<hash>" key; only a blank name yields "".
func Slugify(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-"), "-")
	if slug == "" && strings.TrimSpace(name) != "" {
		hash := uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.TrimSpace(name)))
		return fallbackSlugPrefix + strings.ReplaceAll(hash.String(), "-", "")[:8]
	}
	return slug
}

// NextSlug returns base when it is free, otherwise base-(highest suffix + 1).
// taken holds the existing slugs matching SlugPattern(base); base itself counts as suffix 1.
func NextSlug(base string, taken []string) string {
	baseTaken := false
	highest := 1
	for _, slug := range taken {
		if slug == base {
			baseTaken = true
			continue
		}
		suffix, ok := strings.CutPrefix(slug, base+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	if !baseTaken {
		return base
	}
	return fmt.Sprintf("%s-%d", base, highest+1)
}

// SlugPattern matches base and its numeric-suffixed variants.
func SlugPattern(base string) string {
	return "^" + regexp.QuoteMeta(base) + "(-[0-9]+)?$"
}

package domain_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sngm3741/store-finder/api/internal/catalog/domain"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Café A":              "cafe-a",
		"  Crème Brûlée!! ":   "creme-brulee",
		"Joe's  Pizza & Subs": "joe-s-pizza-subs",
		"ÅNGSTRÖM":            "angstrom",
		"   ":                 "",
		"123 Main":            "123-main",
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.Slugify(in), in)
	}
}

func TestSlugifyFallsBackForNonLatinNames(t *testing.T) {
	slug := domain.Slugify("月ノ雫")

	assert.Regexp(t, `^store-[0-9a-f]{8}$`, slug)
	assert.Equal(t, slug, domain.Slugify("月ノ雫"), "same name, same slug")
	assert.Equal(t, slug, domain.Slugify("  月ノ雫 "))
	assert.NotEqual(t, slug, domain.Slugify("花ノ雫"))
	assert.Regexp(t, `^store-[0-9a-f]{8}$`, domain.Slugify("---"))
}

func TestNextSlug(t *testing.T) {
	cases := []struct {
		name  string
		taken []string
		want  string
	}{
		{name: "free", taken: nil, want: "cafe-a"},
		{name: "base taken", taken: []string{"cafe-a"}, want: "cafe-a-2"},
		{name: "sequence", taken: []string{"cafe-a", "cafe-a-2"}, want: "cafe-a-3"},
		{name: "only suffix taken", taken: []string{"cafe-a-2"}, want: "cafe-a"},
		{name: "gap", taken: []string{"cafe-a-7", "cafe-a", "cafe-a-2"}, want: "cafe-a-8"},
		{name: "base removed", taken: []string{"cafe-a-2", "cafe-a-3"}, want: "cafe-a"},
		{name: "non numeric ignored", taken: []string{"cafe-a", "cafe-a-x"}, want: "cafe-a-2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.NextSlug("cafe-a", tc.taken))
		})
	}
}

func TestSlugPattern(t *testing.T) {
	re := regexp.MustCompile(domain.SlugPattern("cafe-a"))

	assert.True(t, re.MatchString("cafe-a"))
	assert.True(t, re.MatchString("cafe-a-12"))
	assert.False(t, re.MatchString("cafe-ab"))
	assert.False(t, re.MatchString("cafe-a-b"))
	assert.False(t, re.MatchString("my-cafe-a"))

	dotted := regexp.MustCompile(domain.SlugPattern("a.b"))
	assert.False(t, dotted.MatchString("axb"), "base is matched literally")
}

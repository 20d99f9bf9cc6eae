// Package assessment holds the classification scheme for article ratings:
// the per-kind rank tables, the NotA-Class sentinel, and the classifier that
// maps category titles onto rating classes.
package assessment

import (
	"regexp"

	"AssessmentTracker/internal/domain"
)

// Override customizes classification for one exact category title, typically
// to admit a project-specific class or fold a legacy name into a canonical
// one.
type Override struct {
	Title    string `yaml:"title"`
	Ranking  int    `yaml:"ranking"`
	Replaces string `yaml:"replaces"`
}

// Overrides maps exact category titles to their override.
type Overrides map[string]Override

// Classification is the outcome of classifying one category title.
type Classification struct {
	Class       string
	Ranking     int
	Replacement string
}

// Config is the process-wide, read-only classification scheme. It is built
// once from configuration and injected wherever classification happens.
type Config struct {
	quality    map[string]int
	importance map[string]int
	notAClass  string
}

// New builds a scheme from explicit rank tables. Empty tables fall back to
// the standard English Wikipedia scheme.
func New(quality, importance map[string]int, notAClass string) *Config {
	def := Default()
	cfg := &Config{quality: quality, importance: importance, notAClass: notAClass}
	if len(cfg.quality) == 0 {
		cfg.quality = def.quality
	}
	if len(cfg.importance) == 0 {
		cfg.importance = def.importance
	}
	if cfg.notAClass == "" {
		cfg.notAClass = def.notAClass
	}
	return cfg
}

// Default returns the standard English Wikipedia assessment scheme.
func Default() *Config {
	return &Config{
		quality: map[string]int{
			"FA-Class":         500,
			"FL-Class":         480,
			"A-Class":          425,
			"GA-Class":         400,
			"B-Class":          300,
			"C-Class":          225,
			"Start-Class":      150,
			"Stub-Class":       100,
			"List-Class":       80,
			"Unassessed-Class": 0,
		},
		importance: map[string]int{
			"Top-Class":        400,
			"High-Class":       300,
			"Mid-Class":        200,
			"Low-Class":        100,
			"Unknown-Class":    10,
			"Unassessed-Class": 0,
		},
		notAClass: "NotA-Class",
	}
}

// Category titles name their class with a leading run of letters terminated
// by a space, underscore, or dash: "A-Class Foo articles",
// "Mid-importance_Foo_articles".
var classToken = regexp.MustCompile(`^([A-Za-z]+)[ _-]`)

// Classify maps a category title to its rating class for the given kind.
// Exact-title overrides win over the rank tables. Titles that match neither
// are not an error; they report ok=false and the caller skips them.
func (c *Config) Classify(title string, kind domain.Kind, extra Overrides) (Classification, bool) {
	if o, ok := extra[title]; ok {
		cl := Classification{Class: o.Title, Ranking: o.Ranking, Replacement: o.Title}
		if o.Replaces != "" {
			cl.Replacement = o.Replaces
		}
		return cl, true
	}

	md := classToken.FindStringSubmatch(title)
	if md == nil {
		return Classification{}, false
	}

	class := md[1] + "-Class"
	ranking, ok := c.Ranks(kind)[class]
	if !ok {
		return Classification{}, false
	}

	return Classification{Class: class, Ranking: ranking, Replacement: class}, true
}

// Ranks returns the rank table for a kind.
func (c *Config) Ranks(kind domain.Kind) map[string]int {
	if kind == domain.KindImportance {
		return c.importance
	}
	return c.quality
}

// NotAClass is the sentinel recorded in place of values that no longer map
// to a recognized class.
func (c *Config) NotAClass() string {
	return c.notAClass
}

// Recognized lists every value a stored rating may legitimately hold for a
// kind: the configured classes plus the sentinel.
func (c *Config) Recognized(kind domain.Kind) []string {
	ranks := c.Ranks(kind)
	known := make([]string, 0, len(ranks)+1)
	for class := range ranks {
		known = append(known, class)
	}
	return append(known, c.notAClass)
}

// Uncounted lists the values excluded from the quality/importance aggregate
// counts on the project record.
func (c *Config) Uncounted() []string {
	return []string{c.notAClass, "Unassessed-Class"}
}

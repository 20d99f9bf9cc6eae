package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssessmentTracker/internal/domain"
)

func TestClassifyQuality(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cl, ok := cfg.Classify("A-Class Test articles", domain.KindQuality, nil)
	require.True(t, ok)

	assert.Equal(t, "A-Class", cl.Class)
	assert.Equal(t, cfg.Ranks(domain.KindQuality)["A-Class"], cl.Ranking)
	assert.Equal(t, "A-Class", cl.Replacement)
}

func TestClassifyImportanceSuffix(t *testing.T) {
	t.Parallel()

	// Importance categories name the class with either "-Class" or
	// "-importance"; only the leading token matters.
	cfg := Default()
	cl, ok := cfg.Classify("Mid-importance Test articles", domain.KindImportance, nil)
	require.True(t, ok)

	assert.Equal(t, "Mid-Class", cl.Class)
	assert.Equal(t, 200, cl.Ranking)
	assert.Equal(t, "Mid-Class", cl.Replacement)
}

func TestClassifyUnderscoredTitle(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cl, ok := cfg.Classify("FA-Class_Test_articles", domain.KindQuality, nil)
	require.True(t, ok)
	assert.Equal(t, "FA-Class", cl.Class)
}

func TestClassifyOverride(t *testing.T) {
	t.Parallel()

	extra := Overrides{
		"Draft-Class Test articles": {
			Title:    "Draft-Class",
			Ranking:  10,
			Replaces: "Disambig-Class",
		},
	}

	cfg := Default()
	cl, ok := cfg.Classify("Draft-Class Test articles", domain.KindQuality, extra)
	require.True(t, ok)

	assert.Equal(t, "Draft-Class", cl.Class)
	assert.Equal(t, 10, cl.Ranking)
	assert.Equal(t, "Disambig-Class", cl.Replacement)
}

func TestClassifyOverrideDefaultReplacement(t *testing.T) {
	t.Parallel()

	extra := Overrides{
		"Future-Class Test articles": {Title: "Future-Class", Ranking: 50},
	}

	cfg := Default()
	cl, ok := cfg.Classify("Future-Class Test articles", domain.KindQuality, extra)
	require.True(t, ok)
	assert.Equal(t, "Future-Class", cl.Replacement)
}

func TestClassifyMisses(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cases := []struct {
		name  string
		title string
		kind  domain.Kind
	}{
		{"no token", "123*go", domain.KindQuality},
		{"unknown class", "Foo-Class Test articles", domain.KindQuality},
		{"quality class under importance", "FA-Class Test articles", domain.KindImportance},
		{"empty", "", domain.KindQuality},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, ok := cfg.Classify(tc.title, tc.kind, nil)
			assert.False(t, ok)
		})
	}
}

func TestRecognizedIncludesSentinel(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Contains(t, cfg.Recognized(domain.KindQuality), "NotA-Class")
	assert.Contains(t, cfg.Recognized(domain.KindImportance), "Top-Class")
}

func TestNewFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cfg := New(nil, map[string]int{"Vital-Class": 999}, "")
	assert.Equal(t, "NotA-Class", cfg.NotAClass())
	assert.Equal(t, 500, cfg.Ranks(domain.KindQuality)["FA-Class"])
	assert.Equal(t, 999, cfg.Ranks(domain.KindImportance)["Vital-Class"])
}

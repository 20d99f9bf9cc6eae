package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMergeConfigKeepsDefaultsForEmptyOverride(t *testing.T) {
	t.Parallel()

	base := defaultConfig()
	merged := mergeConfig(base, Config{})

	assert.Equal(t, base.Databases, merged.Databases)
	assert.Equal(t, base.Scheduler.CronExpression, merged.Scheduler.CronExpression)
	assert.Equal(t, base.Workers, merged.Workers)
}

func TestMergeConfigOverridesProvidedFields(t *testing.T) {
	t.Parallel()

	override := Config{
		Databases: DatabaseConfig{RatingsDSN: "postgres://other"},
		Workers:   WorkerConfig{Count: 8},
		API:       APIConfig{Timeout: 3 * time.Second},
	}
	merged := mergeConfig(defaultConfig(), override)

	assert.Equal(t, "postgres://other", merged.Databases.RatingsDSN)
	assert.Equal(t, defaultConfig().Databases.WikiDSN, merged.Databases.WikiDSN)
	assert.Equal(t, 8, merged.Workers.Count)
	assert.Equal(t, defaultConfig().Workers.MaxRetries, merged.Workers.MaxRetries)
	assert.Equal(t, 3*time.Second, merged.API.Timeout)
	assert.Equal(t, defaultConfig().API.Endpoint, merged.API.Endpoint)
}

func TestProjectOverridesUnmarshal(t *testing.T) {
	t.Parallel()

	raw := `
projects:
  - name: Test
    quality:
      - category: Draft-Class Test articles
        title: Draft-Class
        ranking: 10
        replaces: Disambig-Class
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	require.Len(t, cfg.Projects, 1)
	require.Len(t, cfg.Projects[0].Quality, 1)

	o := cfg.Projects[0].Quality[0]
	assert.Equal(t, "Draft-Class Test articles", o.Category)
	assert.Equal(t, "Draft-Class", o.Title)
	assert.Equal(t, 10, o.Ranking)
	assert.Equal(t, "Disambig-Class", o.Replaces)
}

func TestSchedulerLocationFallsBackToUTC(t *testing.T) {
	t.Parallel()

	cfg := Config{Scheduler: SchedulerConfig{Timezone: "Not/AZone"}}
	cfg.bindTimezone()
	assert.Equal(t, time.UTC, cfg.Scheduler.Location())
}

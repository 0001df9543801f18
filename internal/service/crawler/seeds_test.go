package crawler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/agentpages/internal/service/crawler"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSeeds(t *testing.T) {
	want := crawler.Seeds{
		Known:      []string{"https://a.dev"},
		Domains:    []string{"acme.ai"},
		Prefixes:   []string{"weather"},
		Platforms:  []string{"https://{}.fly.dev"},
		Registries: []string{"https://registry.dev/index.json"},
	}

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "seeds.yaml", `
known: [https://a.dev]
domains: [acme.ai]
prefixes: [weather]
platforms: ["https://{}.fly.dev"]
registries: [https://registry.dev/index.json]
`)
		got, err := crawler.LoadSeeds(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "seeds.toml", `
known = ["https://a.dev"]
domains = ["acme.ai"]
prefixes = ["weather"]
platforms = ["https://{}.fly.dev"]
registries = ["https://registry.dev/index.json"]
`)
		got, err := crawler.LoadSeeds(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty path is defaults", func(t *testing.T) {
		got, err := crawler.LoadSeeds("")
		require.NoError(t, err)
		assert.Equal(t, crawler.DefaultSeeds(), got)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := crawler.LoadSeeds(writeFile(t, "seeds.json", `{}`))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := crawler.LoadSeeds(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestSeedURLs(t *testing.T) {
	s := crawler.Seeds{
		Domains:   []string{"acme.ai", " ", "http://plain.dev"},
		Prefixes:  []string{"a", "b"},
		Platforms: []string{"https://{}.fly.dev", "https://{}.web.app"},
	}
	assert.Equal(t, []string{"https://acme.ai", "http://plain.dev"}, s.DomainURLs())
	assert.Equal(t, []string{
		"https://a.fly.dev", "https://a.web.app",
		"https://b.fly.dev", "https://b.web.app",
	}, s.PlatformURLs())
}

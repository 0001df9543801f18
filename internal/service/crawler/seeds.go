package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Seeds lists where the crawler looks for agent cards.
type Seeds struct {
	// Known are base URLs checked as-is.
	Known []string `yaml:"known" toml:"known"`
	// Domains are bare hosts, checked over https.
	Domains []string `yaml:"domains" toml:"domains"`
	// Prefixes are substituted into every Platforms pattern.
	Prefixes []string `yaml:"prefixes" toml:"prefixes"`
	// Platforms are URL patterns with a {} placeholder, e.g. https://{}.vercel.app.
	Platforms []string `yaml:"platforms" toml:"platforms"`
	// Registries are JSON index URLs listing objects with a url field.
	Registries []string `yaml:"registries" toml:"registries"`
}

// LoadSeeds reads a YAML or TOML seeds file, chosen by extension. An empty
// path returns DefaultSeeds.
func LoadSeeds(path string) (Seeds, error) {
	if path == "" {
		return DefaultSeeds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seeds{}, fmt.Errorf("reading seeds file: %w", err)
	}

	var s Seeds
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &s); err != nil {
			return Seeds{}, fmt.Errorf("parsing seeds toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Seeds{}, fmt.Errorf("parsing seeds yaml: %w", err)
		}
	default:
		return Seeds{}, fmt.Errorf("unsupported seeds file %q: want .yaml, .yml or .toml", path)
	}
	return s, nil
}

// DomainURLs returns the https base URL of every seeded domain.
func (s Seeds) DomainURLs() []string {
	urls := make([]string, 0, len(s.Domains))
	for _, d := range s.Domains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if !strings.Contains(d, "://") {
			d = "https://" + d
		}
		urls = append(urls, d)
	}
	return urls
}

// PlatformURLs expands every prefix into every platform pattern, prefix-major.
func (s Seeds) PlatformURLs() []string {
	urls := make([]string, 0, len(s.Prefixes)*len(s.Platforms))
	for _, prefix := range s.Prefixes {
		for _, pattern := range s.Platforms {
			urls = append(urls, strings.ReplaceAll(pattern, "{}", prefix))
		}
	}
	return urls
}

func DefaultSeeds() Seeds {
	return Seeds{
		Known: []string{
			"https://hello.a2aregistry.org",
			"https://coinrailz.com",
			"https://austegard.com",
			"https://slippage-sentinel.vercel.app",
			"https://earnbase.vercel.app",
			"https://a2aregistry.org",
			"https://a2aagentlist.com",
			"https://ai-truism.vercel.app",
			"https://a2a-samples.web.app",
			"https://a2a-demo.web.app",
			"https://a2a.dev",
			"https://a2aprotocol.ai",
		},
		Domains: []string{
			"huggingface.co", "replicate.com", "together.ai", "fireworks.ai",
			"langchain.com", "llamaindex.ai", "crewai.com", "e2b.dev", "modal.com",
			"relevanceai.com", "superagent.sh", "agent.ai", "agentops.ai",
			"agentprotocol.ai", "agentprotocol.org", "agent.dev", "agents.dev",
			"composio.dev", "toolhouse.ai", "browserbase.com", "arcade.ai",
			"a2aprotocol.org", "a2a.ai", "agentdirectory.ai", "agenthub.ai",
		},
		Prefixes: []string{
			"a2a", "a2a-agent", "a2a-server", "a2a-demo", "a2a-sample",
			"agent", "agent-server", "agent-api", "my-agent", "ai-agent",
			"weather-agent", "travel-agent", "search-agent", "code-agent",
			"research-agent", "data-agent", "planning-agent", "support-agent",
			"langgraph-agent", "crewai-agent", "adk-agent", "hello-a2a",
		},
		Platforms: []string{
			"https://{}.vercel.app",
			"https://{}.netlify.app",
			"https://{}.fly.dev",
			"https://{}.up.railway.app",
			"https://{}.onrender.com",
			"https://{}.workers.dev",
			"https://{}.pages.dev",
			"https://{}.web.app",
			"https://{}.deno.dev",
			"https://{}.hf.space",
		},
	}
}

// Package config loads and validates the docsync configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Repositories    []Repository `json:"repositories"`
	ExcludePatterns []string     `json:"exclude_patterns,omitempty"`
	TempDir         string       `json:"temp_dir,omitempty"`
	DocsDir         string       `json:"docs_dir,omitempty"`
}

// Repository represents an external Git repository to pull content from
type Repository struct {
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Branch   string            `json:"branch,omitempty"`
	TokenEnv string            `json:"token_env,omitempty"` // Env var holding the access token
	Patterns []PatternRule     `json:"patterns,omitempty"`
	Paths    map[string]string `json:"paths,omitempty"` // Static source -> destination mapping
}

// PatternRule declares which files to pull and where they land.
type PatternRule struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Description string `json:"description,omitempty"`
	Recursive   bool   `json:"recursive,omitempty"`
}

// Token returns the repository's access token from the environment, if configured.
func (r Repository) Token() string {
	if r.TokenEnv == "" {
		return ""
	}
	return os.Getenv(r.TokenEnv)
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists. Missing files are fine; the automation
	// environment usually supplies variables directly.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the JSON content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := json.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults
	if config.TempDir == "" {
		config.TempDir = ".temp_repos"
	}
	if config.DocsDir == "" {
		config.DocsDir = "docs"
	}
	for i := range config.Repositories {
		if config.Repositories[i].Branch == "" {
			config.Repositories[i].Branch = "main"
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	seen := make(map[string]struct{}, len(c.Repositories))
	for _, repo := range c.Repositories {
		if repo.Name == "" {
			return fmt.Errorf("repository with URL %s has no name", repo.URL)
		}
		if repo.URL == "" {
			return fmt.Errorf("repository %s has no url", repo.Name)
		}
		if _, dup := seen[repo.Name]; dup {
			return fmt.Errorf("duplicate repository name: %s", repo.Name)
		}
		seen[repo.Name] = struct{}{}
		for _, rule := range repo.Patterns {
			if rule.Source == "" {
				return fmt.Errorf("repository %s has a pattern rule without a source", repo.Name)
			}
		}
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Repositories: []Repository{
			{
				Name:     "engineering",
				URL:      "https://github.com/your-org/engineering.git",
				Branch:   "main",
				TokenEnv: "ENGINEERING_REPO_TOKEN",
				Patterns: []PatternRule{
					{
						Source:      "docs/**/*.md",
						Destination: "engineering/",
						Description: "Engineering documentation",
					},
					{
						Source:      "events/*.yaml",
						Destination: "asyncapi/",
						Description: "AsyncAPI event definitions",
						Recursive:   true,
					},
				},
			},
			{
				Name:     "operations",
				URL:      "https://github.com/your-org/operations.git",
				Branch:   "main",
				TokenEnv: "OPERATIONS_REPO_TOKEN",
				Paths: map[string]string{
					"README.md":          "operations/index.md",
					"runbooks/oncall.md": "operations/oncall.md",
				},
			},
		},
		ExcludePatterns: []string{"*draft*", "*.tmp"},
		TempDir:         ".temp_repos",
		DocsDir:         "docs",
	}

	data, err := json.MarshalIndent(&exampleConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// loadEnvFiles loads environment variables from .env/.env.local files.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintf(os.Stderr, "Note: %s found but couldn't be loaded: %v\n", envPath, err)
		}
	}
}

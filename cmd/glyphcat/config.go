package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/esimov/glyphcat"
	"github.com/esimov/glyphcat/store"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"gopkg.in/yaml.v3"
)

// defaultTokenEnv names the environment variable holding the access token.
const defaultTokenEnv = "GLYPHCAT_TOKEN"

// Repo locates a glyph collection.
type Repo struct {
	// Repo is the "owner/name" pair of the collection.
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	// Dir is a local bare repository; URL a remote one. When both are empty a
	// remote on github.com is derived from Repo.
	Dir string `yaml:"dir"`
	URL string `yaml:"url"`
	// Path is the folder holding the source glyphs. Only used for sources;
	// empty means the repository root.
	Path string `yaml:"path"`
}

// Config is the run configuration, read from an optional YAML file and
// overridden by command line flags.
type Config struct {
	// Input is a local directory of glyphs. It takes precedence over Source.
	Input    string `yaml:"input"`
	Source   Repo   `yaml:"source"`
	Storage  Repo   `yaml:"storage"`
	Workers  int    `yaml:"workers"`
	Seed     int64  `yaml:"seed"`
	TokenEnv string `yaml:"token_env"`
	// DryRun publishes into an empty in-memory collection instead of the storage one.
	DryRun bool `yaml:"dry_run"`
}

// loadConfig reads the configuration file at path. An empty path yields the
// default configuration.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults sets default values for any unset fields in Config.
func (c *Config) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = glyphcat.DefaultWorkers
	}
	if c.TokenEnv == "" {
		c.TokenEnv = defaultTokenEnv
	}
	if c.Storage.Branch == "" {
		c.Storage.Branch = store.DefaultBranch
	}
	if c.Source.Branch == "" {
		c.Source.Branch = store.DefaultBranch
	}
}

// Validate checks that the Config describes a runnable batch.
func (c *Config) Validate() error {
	if _, _, err := parseRepo(c.Storage.Repo); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if c.Input == "" {
		if c.Source.Repo == "" {
			return errors.New("either an input directory or a source repository is required")
		}
		if _, _, err := parseRepo(c.Source.Repo); err != nil {
			return fmt.Errorf("source: %w", err)
		}
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	return nil
}

// parseRepo splits an "owner/name" pair.
func parseRepo(s string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return owner, strings.TrimSuffix(name, ".git"), nil
}

// auth returns the credentials found in the configured environment variable, if any.
func (c *Config) auth() transport.AuthMethod {
	token := os.Getenv(c.TokenEnv)
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: token}
}

// options converts a Repo into store options. With memory set, the
// collection is opened without any backing repository.
func (r Repo) options(auth transport.AuthMethod, memory bool) (store.Options, error) {
	owner, name, err := parseRepo(r.Repo)
	if err != nil {
		return store.Options{}, err
	}
	opts := store.Options{
		Owner:  owner,
		Name:   name,
		Branch: r.Branch,
	}
	if memory {
		return opts, nil
	}
	switch {
	case r.Dir != "":
		opts.Dir = r.Dir
	case r.URL != "":
		opts.URL = r.URL
	default:
		opts.URL = fmt.Sprintf("https://github.com/%s/%s.git", owner, name)
	}
	if opts.URL != "" {
		opts.Auth = auth
	}
	return opts, nil
}

// Package config loads gitai configuration with a defined precedence:
// CLI flags > environment variables > settings file > defaults.
//
// Paths: the settings file lives at ~/.gitai/settings.toml unless a path
// is given explicitly. Environment variables use the GITAI_ prefix with
// "__" separating sections, e.g. GITAI_AI__API_KEY sets ai.api_key.
//
// When no API key is found in flags, env, or the file, the OS keyring is
// consulted (service "gitai", user "openai") as a last resort.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"

	"github.com/JakeFAU/gitai/internal/erruser"
)

// Keyring coordinates for the API-key fallback.
const (
	keyringService = "gitai"
	keyringUser    = "openai"
)

// Bounds for num_tries; more than a handful of tries burns tokens fast.
const (
	MinTries = 1
	MaxTries = 5
)

// AI holds the completion-service settings and sampling defaults.
type AI struct {
	APIURL           string   `koanf:"api_url"`
	APIKey           string   `koanf:"api_key"`
	Model            string   `koanf:"model"`
	MaxTokens        int      `koanf:"max_tokens"`
	BudgetDivisor    int      `koanf:"budget_divisor"`
	Temperature      float64  `koanf:"temperature"`
	TopP             float64  `koanf:"top_p"`
	Stop             []string `koanf:"stop"`
	PresencePenalty  float64  `koanf:"presence_penalty"`
	FrequencyPenalty float64  `koanf:"frequency_penalty"`
	BestOf           int      `koanf:"best_of"`
	NumTries         int      `koanf:"num_tries"`
	Stochastic       bool     `koanf:"stochastic"`
	AutoAI           bool     `koanf:"auto_ai"`
	Language         string   `koanf:"language"`
	Timeout          string   `koanf:"timeout"`
}

// Git holds the repository-side settings.
type Git struct {
	LocalPath      string `koanf:"local_path"`
	AutoAdd        bool   `koanf:"auto_add"`
	SignCommits    bool   `koanf:"sign_commits"`
	SigningKeyPath string `koanf:"signing_key_path"`
	UserName       string `koanf:"user_name"`
	UserEmail      string `koanf:"user_email"`
}

// Config is the effective merged configuration.
type Config struct {
	AI  AI  `koanf:"ai"`
	Git Git `koanf:"git"`
}

// Overrides are optional CLI flag values; a non-nil pointer wins over every
// other source.
type Overrides struct {
	APIURL     *string
	APIKey     *string
	Model      *string
	Language   *string
	NumTries   *int
	Stochastic *bool
	AutoAI     *bool
	AutoAdd    *bool
	RepoPath   *string
}

// defaults mirror the original tool's long-standing values.
var defaults = map[string]interface{}{
	"ai.api_url":           "https://api.openai.com/v1",
	"ai.model":             "code-davinci-002",
	"ai.max_tokens":        256,
	"ai.budget_divisor":    4,
	"ai.temperature":       0.05,
	"ai.top_p":             1.0,
	"ai.presence_penalty":  0.1,
	"ai.frequency_penalty": 0.1,
	"ai.best_of":           1,
	"ai.num_tries":         1,
	"ai.stochastic":        false,
	"ai.auto_ai":           false,
	"ai.language":          "Python",
	"ai.timeout":           "30s",
	"git.local_path":       ".",
	"git.auto_add":         false,
	"git.sign_commits":     false,
}

// DefaultPath returns the default settings file location,
// ~/.gitai/settings.toml. Empty string when the home dir is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gitai", "settings.toml")
}

// Load merges defaults, the settings file at path (skipped silently when
// absent), GITAI_* environment variables, and finally overrides. An empty
// path means DefaultPath(). The merged config is validated before return.
func Load(path string, overrides *Overrides) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, erruser.New("Could not read the settings file at "+path+".", err)
			}
			log.Debug().Str("path", path).Msg("loaded settings file")
		}
	}

	if err := k.Load(env.Provider("GITAI_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "GITAI_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, erruser.New("The settings file is malformed.", err)
	}

	applyOverrides(&cfg, overrides)

	if cfg.AI.APIKey == "" {
		if key, err := keyring.Get(keyringService, keyringUser); err == nil {
			cfg.AI.APIKey = key
			log.Debug().Msg("api key resolved from OS keyring")
		}
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o == nil {
		return
	}
	if o.APIURL != nil {
		cfg.AI.APIURL = *o.APIURL
	}
	if o.APIKey != nil {
		cfg.AI.APIKey = *o.APIKey
	}
	if o.Model != nil {
		cfg.AI.Model = *o.Model
	}
	if o.Language != nil {
		cfg.AI.Language = *o.Language
	}
	if o.NumTries != nil {
		cfg.AI.NumTries = *o.NumTries
	}
	if o.Stochastic != nil {
		cfg.AI.Stochastic = *o.Stochastic
	}
	if o.AutoAI != nil {
		cfg.AI.AutoAI = *o.AutoAI
	}
	if o.AutoAdd != nil {
		cfg.Git.AutoAdd = *o.AutoAdd
	}
	if o.RepoPath != nil {
		cfg.Git.LocalPath = *o.RepoPath
	}
}

func validate(cfg *Config) error {
	if cfg.AI.APIURL == "" {
		return erruser.New("No completion API URL configured.", nil)
	}
	if cfg.AI.NumTries < MinTries || cfg.AI.NumTries > MaxTries {
		return erruser.New(
			fmt.Sprintf("num_tries must be between %d and %d.", MinTries, MaxTries), nil)
	}
	if _, err := time.ParseDuration(cfg.AI.Timeout); err != nil {
		return erruser.New("Invalid timeout; use a Go duration like 30s.", err)
	}
	if cfg.Git.SignCommits && cfg.Git.SigningKeyPath == "" {
		return erruser.New("Commit signing is enabled but no signing_key_path is set.", nil)
	}
	return nil
}

// TimeoutDuration returns the parsed request timeout. Call after Load; the
// value is already validated.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Sample is the annotated settings file written by "gitai config init".
const Sample = `# gitai settings

[ai]
api_url = "https://api.openai.com/v1"
api_key = ""                 # or GITAI_AI__API_KEY, or the OS keyring
model = "code-davinci-002"
max_tokens = 256             # response budget ceiling
budget_divisor = 4           # budget = prompt chars / divisor, capped at max_tokens
temperature = 0.05           # use this or top_p, not both
top_p = 1.0
presence_penalty = 0.1
frequency_penalty = 0.1
best_of = 1                  # must be >= n when set
num_tries = 1                # 1-5 candidate messages per run
stochastic = false           # vary the prompt instead of asking for n candidates
auto_ai = false              # accept the generated message without asking
language = "Python"
timeout = "30s"

[git]
local_path = "."
auto_add = false             # stage everything before diffing
sign_commits = false
signing_key_path = ""        # armored PGP private key, required when signing
user_name = ""               # defaults to git config user.name
user_email = ""              # defaults to git config user.email
`

// Init writes the sample settings file at path, refusing to overwrite an
// existing one. Parent directories are created as needed.
func Init(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return erruser.New("Could not determine the settings file location.", nil)
	}
	if _, err := os.Stat(path); err == nil {
		return erruser.New("A settings file already exists at "+path+".", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return erruser.New("Could not create the settings directory.", err)
	}
	if err := os.WriteFile(path, []byte(Sample), 0o600); err != nil {
		return erruser.New("Could not write the settings file.", err)
	}
	return nil
}

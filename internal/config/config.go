package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tnt-dev/tnt/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "tnt.json"

	// EnvFileName is the optional environment file next to the config file.
	EnvFileName = ".env"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultTemplate is the default template document.
	DefaultTemplate = "index.html"

	// DefaultContainer is the default id of the mount container.
	DefaultContainer = "app"

	// DefaultMaxDepth bounds nested effect triggers.
	DefaultMaxDepth = 100

	// DefaultCacheSize bounds the compiled-expression cache.
	DefaultCacheSize = 512
)

// Environment variables that override file settings.
const (
	EnvPort          = "TNT_PORT"
	EnvHost          = "TNT_HOST"
	EnvLogLevel      = "TNT_LOG_LEVEL"
	EnvPublishTarget = "TNT_PUBLISH_TARGET"
	EnvMaxDepth      = "TNT_MAX_EFFECT_DEPTH"
)

// Config represents the complete tnt.json configuration.
type Config struct {
	// Template is the HTML document holding the mount container.
	Template string `json:"template,omitempty"`

	// Container is the id of the element the template is mounted into.
	Container string `json:"container,omitempty"`

	// Data is a JSON or YAML file whose top-level keys become data objects.
	Data string `json:"data,omitempty"`

	// Dev contains preview server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Reactivity tunes the effect registry.
	Reactivity ReactivityConfig `json:"reactivity,omitempty"`

	// Eval tunes the expression evaluator.
	Eval EvalConfig `json:"eval,omitempty"`

	// Publish configures where rendered snapshots go.
	Publish PublishConfig `json:"publish,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains preview server settings.
type DevConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// ReactivityConfig contains effect registry settings.
type ReactivityConfig struct {
	// MaxDepth bounds how deeply triggered effects may nest.
	MaxDepth int `json:"maxDepth,omitempty"`

	// RetainNested keeps nested effects alive across parent runs.
	RetainNested bool `json:"retainNested,omitempty"`
}

// EvalConfig contains evaluator settings.
type EvalConfig struct {
	// CacheSize bounds the compiled-expression cache.
	CacheSize int `json:"cacheSize,omitempty"`
}

// PublishConfig contains snapshot publishing settings.
type PublishConfig struct {
	// Target is "s3://bucket/prefix" or a directory.
	Target string `json:"target,omitempty"`

	// Region is the AWS region for s3:// targets.
	Region string `json:"region,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New returns a configuration with every default applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads tnt.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path, then applies the .env file next
// to it and the process environment, in increasing precedence.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E008").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass the template with --template")
		}
		return nil, errors.New("E008").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E008").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}
	cfg.configPath = path

	dotenv, err := readEnvFile(filepath.Join(filepath.Dir(path), EnvFileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envLookup(dotenv)); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.New("E008").
			WithDetail("Failed to parse " + path).
			Wrap(err)
	}
	return env, nil
}

// envLookup prefers the process environment over the .env values.
func envLookup(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E008").WithDetailf("%s=%q is not a number", EnvPort, v)
		}
		c.Dev.Port = port
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Dev.Host = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPublishTarget); ok && v != "" {
		c.Publish.Target = v
	}
	if v, ok := lookup(EnvMaxDepth); ok && v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E008").WithDetailf("%s=%q is not a number", EnvMaxDepth, v)
		}
		c.Reactivity.MaxDepth = depth
	}
	return nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.Container == "" {
		c.Container = DefaultContainer
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Reactivity.MaxDepth == 0 {
		c.Reactivity.MaxDepth = DefaultMaxDepth
	}
	if c.Eval.CacheSize == 0 {
		c.Eval.CacheSize = DefaultCacheSize
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E008").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Reactivity.MaxDepth < 0 {
		return errors.New("E008").
			WithDetail("reactivity.maxDepth must be positive")
	}
	if c.Eval.CacheSize < 0 {
		return errors.New("E008").
			WithDetail("eval.cacheSize must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E008").
			WithDetailf("log.format %q is not supported", c.Log.Format).
			WithSuggestion(`Use "text" or "json"`)
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, errors.New("E008").
			WithDetailf("log.level %q is not supported", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	return level, nil
}

// Logger builds the logger described by Log, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E008").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E008").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// Resolve returns p relative to the config file's directory. Absolute paths
// and empty strings are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir() == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// DevAddress returns the address string for the preview server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing tnt.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E008").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/branding"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Settings is the resolved configuration used by the CLI.
type Settings struct {
	Dotnet     DotnetSettings     `mapstructure:"dotnet"`
	Templates  TemplateSettings   `mapstructure:"templates"`
	Layout     LayoutSettings     `mapstructure:"layout"`
	Manifest   ManifestSettings   `mapstructure:"manifest"`
	Repository RepositorySettings `mapstructure:"repository"`
	Log        LogSettings        `mapstructure:"log"`
}

// DotnetSettings configures the dotnet CLI that does the actual generation.
type DotnetSettings struct {
	Binary     string `mapstructure:"binary"`
	MinVersion string `mapstructure:"min_version"`
}

// TemplateSettings names the `dotnet new` templates used for each unit kind.
type TemplateSettings struct {
	Function string `mapstructure:"function"`
	Library  string `mapstructure:"library"`
	Tests    string `mapstructure:"tests"`
}

// LayoutSettings describes where functions live inside the repository.
type LayoutSettings struct {
	FunctionsDir string `mapstructure:"functions_dir"`
}

// ManifestSettings controls discovery of and registration in the solution file.
type ManifestSettings struct {
	Pattern string `mapstructure:"pattern"`
	Batch   bool   `mapstructure:"batch"`
}

// RepositorySettings controls repository root discovery.
type RepositorySettings struct {
	Marker string `mapstructure:"marker"`
}

// LogSettings controls console logging.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

var defaultValues = map[string]any{
	"dotnet.binary":        "dotnet",
	"dotnet.min_version":   "6.0.100",
	"templates.function":   "lambda.EmptyFunction",
	"templates.library":    "classlib",
	"templates.tests":      "xunit",
	"layout.functions_dir": "functions",
	"manifest.pattern":     "*.sln",
	"manifest.batch":       true,
	"repository.marker":    ".git",
	"log.level":            "info",
}

// active holds the viper instance populated by the most recent Load.
var active *viper.Viper

// Dir returns the path to the user config directory (~/.forge/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the user config file (~/.forge/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// RepoFilePath returns the path of the repository-level config file.
func RepoFilePath(repoRoot string) string {
	return filepath.Join(repoRoot, branding.ConfigFile())
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Keys returns every supported configuration key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaultValues))
	for k := range defaultValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKey reports whether key is a supported configuration key.
func IsKey(key string) bool {
	_, ok := defaultValues[key]
	return ok
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaultValues {
		v.SetDefault(k, val)
	}
	return v
}

// Load resolves the settings. repoRoot may be empty when no repository has
// been located yet; the repository-level file is then skipped.
func Load(repoRoot string) (*Settings, error) {
	v := newViper()

	if err := mergeFile(v, FilePath()); err != nil {
		return nil, err
	}
	if repoRoot != "" {
		if err := mergeFile(v, RepoFilePath(repoRoot)); err != nil {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	active = v
	return &s, nil
}

// mergeFile validates and merges a YAML config file into v. A missing file is
// not an error.
func mergeFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	result, err := Validate(data)
	if err != nil {
		return fmt.Errorf("validating config file %s: %w", path, err)
	}
	if !result.Valid {
		return &ValidationError{Path: path, Issues: result.Issues}
	}

	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("merging config file %s: %w", path, err)
	}
	return nil
}

// Get returns the effective value of key from the last Load, or its default
// when Load has not run. Returns empty string if not set.
func Get(key string) string {
	v := active
	if v == nil {
		v = newViper()
	}
	return v.GetString(key)
}

// Set writes a key-value pair to the user config file. Only the user file is
// rewritten; repository and environment values are left alone.
func Set(key, value string) error {
	def, ok := defaultValues[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}

	var typed any = value
	if _, isBool := def.(bool); isBool {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config key %q expects true or false, got %q", key, value)
		}
		typed = b
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()
	v := viper.New()
	v.SetConfigType(fileType)
	if data, err := os.ReadFile(configFile); err == nil {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}

	v.Set(key, typed)

	out, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	result, err := Validate(out)
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if !result.Valid {
		return &ValidationError{Path: configFile, Issues: result.Issues}
	}

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

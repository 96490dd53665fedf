// Package config loads magpie.yml.
//
// Precedence, lowest to highest: built-in defaults, magpie.yml, environment
// variables (MAGPIE_PATHS_FROM_DIR, ...; a .env file is read first), then
// command-line flags that were explicitly set.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file magpie looks for in the working directory.
const FileName = "magpie.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MAGPIE"

// Config represents magpie.yml
type Config struct {
	Project    ProjectConfig    `yaml:"project" mapstructure:"project"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Repair     RepairConfig     `yaml:"repair" mapstructure:"repair"`

	// Tables holds raw `tables:` overrides. They are decoded with yaml.v3
	// rather than viper so that map keys keep their case (CGFloat, systemGray6).
	Tables yaml.Node `yaml:"tables,omitempty" mapstructure:"-"`
}

// ProjectConfig names the generated Android project.
type ProjectConfig struct {
	PackageName string `yaml:"package_name" mapstructure:"package_name"`
	AppName     string `yaml:"app_name" mapstructure:"app_name"`
}

// PathsConfig holds the input and output directories.
type PathsConfig struct {
	FromDir        string `yaml:"from_dir" mapstructure:"from_dir"`
	TemplateIOS    string `yaml:"template_ios" mapstructure:"template_ios"`
	TemplateKotlin string `yaml:"template_kotlin" mapstructure:"template_kotlin"`
	OutputDir      string `yaml:"output_dir" mapstructure:"output_dir"`
}

// GenerationConfig controls how generated files are written.
type GenerationConfig struct {
	Clean    bool   `yaml:"clean" mapstructure:"clean"`
	Conflict string `yaml:"conflict" mapstructure:"conflict"` // overwrite, skip, diff, ask
	DryRun   bool   `yaml:"dry_run" mapstructure:"dry_run"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// RepairConfig configures `magpie fix`.
type RepairConfig struct {
	BuildCommand  string `yaml:"build_command" mapstructure:"build_command"`
	MaxIterations int    `yaml:"max_iterations" mapstructure:"max_iterations"`
	ErrorLog      string `yaml:"error_log" mapstructure:"error_log"`
}

// Default returns the configuration used when no file is present. The path
// defaults assume magpie runs from a sibling of the from/ and to/ folders.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			PackageName: "com.company.amap",
			AppName:     "MyApp",
		},
		Paths: PathsConfig{
			FromDir:        "../from",
			TemplateIOS:    "../tmpios",
			TemplateKotlin: "../tmpkotlin",
			OutputDir:      "../to",
		},
		Generation: GenerationConfig{
			Conflict: "overwrite",
		},
		Log: LogConfig{
			Level: "info",
		},
		Repair: RepairConfig{
			BuildCommand:  "./gradlew compileDebugKotlin",
			MaxIterations: 10,
			ErrorLog:      "build_errors.txt",
		},
	}
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"package-name":    "project.package_name",
	"app-name":        "project.app_name",
	"from-dir":        "paths.from_dir",
	"template-ios":    "paths.template_ios",
	"template-kotlin": "paths.template_kotlin",
	"output-dir":      "paths.output_dir",
	"clean":           "generation.clean",
	"conflict":        "generation.conflict",
	"dry-run":         "generation.dry_run",
	"log-level":       "log.level",
	"log-json":        "log.json",
	"build-cmd":       "repair.build_command",
	"max-iterations":  "repair.max_iterations",
	"error-log":       "repair.error_log",
}

// Load reads configuration from path (or ./magpie.yml when path is empty),
// applies environment overrides and binds any flags in flags that map to a
// config key. A missing file is not an error unless path was given
// explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		raw = nil
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if raw != nil {
		var tablesOnly struct {
			Tables yaml.Node `yaml:"tables"`
		}
		if err := yaml.Unmarshal(raw, &tablesOnly); err != nil {
			return nil, fmt.Errorf("failed to parse tables in %s: %w", path, err)
		}
		cfg.Tables = tablesOnly.Tables
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.package_name", d.Project.PackageName)
	v.SetDefault("project.app_name", d.Project.AppName)
	v.SetDefault("paths.from_dir", d.Paths.FromDir)
	v.SetDefault("paths.template_ios", d.Paths.TemplateIOS)
	v.SetDefault("paths.template_kotlin", d.Paths.TemplateKotlin)
	v.SetDefault("paths.output_dir", d.Paths.OutputDir)
	v.SetDefault("generation.clean", d.Generation.Clean)
	v.SetDefault("generation.conflict", d.Generation.Conflict)
	v.SetDefault("generation.dry_run", d.Generation.DryRun)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("repair.build_command", d.Repair.BuildCommand)
	v.SetDefault("repair.max_iterations", d.Repair.MaxIterations)
	v.SetDefault("repair.error_log", d.Repair.ErrorLog)
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Generation.Conflict {
	case "overwrite", "skip", "diff", "ask":
	default:
		return fmt.Errorf("invalid generation.conflict %q (want overwrite, skip, diff or ask)", c.Generation.Conflict)
	}
	if strings.TrimSpace(c.Project.PackageName) == "" {
		return fmt.Errorf("project.package_name must not be empty")
	}
	for _, part := range strings.Split(c.Project.PackageName, ".") {
		if part == "" {
			return fmt.Errorf("invalid package name %q", c.Project.PackageName)
		}
	}
	if c.Repair.MaxIterations < 1 {
		return fmt.Errorf("repair.max_iterations must be at least 1")
	}
	return nil
}

// TablesYAML re-encodes the `tables:` section, or returns nil when the file
// had none.
func (c *Config) TablesYAML() ([]byte, error) {
	if c.Tables.Kind == 0 {
		return nil, nil
	}
	return yaml.Marshal(&c.Tables)
}

// Save writes configuration to a YAML file, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

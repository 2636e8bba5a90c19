// Package dsconfig resolves a DriverConfig by layering defaults, an
// XDG-style config file, and runtime overrides, mirroring gofulmen's
// config/config.go and config/xdg.go layering order (defaults -> file ->
// runtime overrides) without that package's Crucible catalog-validation
// machinery, which has no DirSchema schema to validate against.
package dsconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dirschema/dirschema-go/metaconv"
)

// DriverConfig is the resolved configuration a Driver run uses: the base
// directory relative schema references resolve against, the working
// directory "cwd://" references resolve against, the meta convention for
// companion-path derivation, and the set of plugins to register (by name,
// deferred to the caller to supply implementations for).
type DriverConfig struct {
	SchemaBaseDir string            `yaml:"schemaBaseDir"`
	WorkingDir    string            `yaml:"workingDir"`
	Convention    metaconv.Convention `yaml:"convention"`
	Plugins       []string          `yaml:"plugins"`
	LogLevel      string            `yaml:"logLevel"`
	LogFilePath   string            `yaml:"logFilePath"`
}

// conventionDoc mirrors metaconv.Convention's fields for YAML decoding,
// since Convention itself carries no yaml tags of its own.
type conventionDoc struct {
	PathPrefix string `yaml:"pathPrefix"`
	PathSuffix string `yaml:"pathSuffix"`
	FilePrefix string `yaml:"filePrefix"`
	FileSuffix string `yaml:"fileSuffix"`
}

type fileDoc struct {
	SchemaBaseDir string         `yaml:"schemaBaseDir"`
	WorkingDir    string         `yaml:"workingDir"`
	Convention    conventionDoc  `yaml:"convention"`
	Plugins       []string       `yaml:"plugins"`
	LogLevel      string         `yaml:"logLevel"`
	LogFilePath   string         `yaml:"logFilePath"`
}

// Defaults returns DirSchema's documented default configuration: the
// current working directory as both schema base and working dir, the
// metaconv default convention, no plugins, info-level console logging.
func Defaults() DriverConfig {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return DriverConfig{
		SchemaBaseDir: cwd,
		WorkingDir:    cwd,
		Convention:    metaconv.Default(),
		LogLevel:      "info",
	}
}

// UserConfigPath returns the XDG-style config file location DirSchema looks
// for by default: $XDG_CONFIG_HOME/dirschema/config.yaml, falling back to
// ~/.config/dirschema/config.yaml.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dirschema", "config.yaml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "dirschema", "config.yaml")
	}
	return ""
}

// Load resolves a DriverConfig by layering Defaults(), the file at
// userPath (skipped entirely if userPath is empty or does not exist), and
// override on top. A nil override is treated as no-op.
func Load(userPath string, override *DriverConfig) (DriverConfig, error) {
	cfg := Defaults()

	if userPath != "" {
		data, err := os.ReadFile(userPath) // #nosec G304 -- userPath is the caller-resolved XDG config path
		switch {
		case err == nil:
			var doc fileDoc
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return DriverConfig{}, fmt.Errorf("dsconfig: parse %s: %w", userPath, err)
			}
			applyFileDoc(&cfg, doc)
		case os.IsNotExist(err):
			// absent user config is not an error; defaults stand.
		default:
			return DriverConfig{}, fmt.Errorf("dsconfig: read %s: %w", userPath, err)
		}
	}

	if override != nil {
		applyOverride(&cfg, *override)
	}

	if err := cfg.Convention.Validate(); err != nil {
		return DriverConfig{}, fmt.Errorf("dsconfig: %w", err)
	}

	return cfg, nil
}

func applyFileDoc(cfg *DriverConfig, doc fileDoc) {
	if doc.SchemaBaseDir != "" {
		cfg.SchemaBaseDir = doc.SchemaBaseDir
	}
	if doc.WorkingDir != "" {
		cfg.WorkingDir = doc.WorkingDir
	}
	if doc.LogLevel != "" {
		cfg.LogLevel = doc.LogLevel
	}
	if doc.LogFilePath != "" {
		cfg.LogFilePath = doc.LogFilePath
	}
	if len(doc.Plugins) > 0 {
		cfg.Plugins = doc.Plugins
	}
	if doc.Convention != (conventionDoc{}) {
		cfg.Convention = metaconv.Convention{
			PathPrefix: doc.Convention.PathPrefix,
			PathSuffix: doc.Convention.PathSuffix,
			FilePrefix: doc.Convention.FilePrefix,
			FileSuffix: doc.Convention.FileSuffix,
		}
	}
}

func applyOverride(cfg *DriverConfig, override DriverConfig) {
	if override.SchemaBaseDir != "" {
		cfg.SchemaBaseDir = override.SchemaBaseDir
	}
	if override.WorkingDir != "" {
		cfg.WorkingDir = override.WorkingDir
	}
	if override.LogLevel != "" {
		cfg.LogLevel = override.LogLevel
	}
	if override.LogFilePath != "" {
		cfg.LogFilePath = override.LogFilePath
	}
	if len(override.Plugins) > 0 {
		cfg.Plugins = override.Plugins
	}
	if (override.Convention != metaconv.Convention{}) {
		cfg.Convention = override.Convention
	}
}

// Package config loads the logsift configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atikulmunna/logsift/internal/parser"
	"github.com/spf13/viper"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "config/logsift.properties"

// EnvPrefix prefixes environment overrides, e.g. LOGSIFT_FORMAT_DATE.
const EnvPrefix = "LOGSIFT"

// Configuration keys.
const (
	KeyUsernamePattern = "pattern.username"
	KeyDatePattern     = "pattern.date"
	KeyMessagePattern  = "pattern.message"
	KeyPatternSyntax   = "pattern.syntax"
	KeyDateFormat      = "format.date"
	KeyOutputPath      = "path.log.output"
	KeyLogLevel        = "log.level"
)

// ErrConfig means the configuration could not be loaded or written.
var ErrConfig = errors.New("configuration cannot be loaded")

// Config holds all logsift configuration.
type Config struct {
	UsernamePattern string
	DatePattern     string
	MessagePattern  string
	PatternSyntax   string
	DateFormat      string
	OutputPath      string
	LogLevel        string

	// File is the path the configuration was read from, empty for defaults.
	File string
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyUsernamePattern, d.UsernamePattern)
	v.SetDefault(KeyDatePattern, d.DatePattern)
	v.SetDefault(KeyMessagePattern, d.MessagePattern)
	v.SetDefault(KeyPatternSyntax, d.PatternSyntax)
	v.SetDefault(KeyDateFormat, d.DateFormat)
	v.SetDefault(KeyOutputPath, d.OutputPath)
	v.SetDefault(KeyLogLevel, d.LogLevel)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration at path, merged over the defaults and
// overridden by LOGSIFT_* environment variables. The file format follows its
// extension (.properties, .yaml, .json, ...). A missing file is created with
// the defaults. An empty path uses defaults and the environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path == "" {
		return fromViper(v, ""), nil
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !supported(ext) {
		return nil, fmt.Errorf("%w: unsupported file type %q for %s (possible values: %s)",
			ErrConfig, ext, path, strings.Join(viper.SupportedExts, ", "))
	}
	v.SetConfigFile(path)

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: creating config directory: %v", ErrConfig, err)
		}
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("%w: writing default config: %v", ErrConfig, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrConfig, path)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}
	return fromViper(v, path), nil
}

func supported(ext string) bool {
	for _, e := range viper.SupportedExts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func fromViper(v *viper.Viper, file string) *Config {
	return &Config{
		UsernamePattern: v.GetString(KeyUsernamePattern),
		DatePattern:     v.GetString(KeyDatePattern),
		MessagePattern:  v.GetString(KeyMessagePattern),
		PatternSyntax:   v.GetString(KeyPatternSyntax),
		DateFormat:      v.GetString(KeyDateFormat),
		OutputPath:      v.GetString(KeyOutputPath),
		LogLevel:        v.GetString(KeyLogLevel),
		File:            file,
	}
}

// Patterns returns the field patterns for the parser.
func (c *Config) Patterns() parser.Patterns {
	return parser.Patterns{
		Username: c.UsernamePattern,
		Date:     c.DatePattern,
		Message:  c.MessagePattern,
		Syntax:   c.PatternSyntax,
	}
}

// Fields compiles every configured pattern.
func (c *Config) Fields(logger *slog.Logger) (*parser.Fields, error) {
	return parser.NewFields(c.Patterns(), c.DateFormat, logger)
}

// Level parses LogLevel, falling back to info for unknown values.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

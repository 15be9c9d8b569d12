// Package config loads clipslots settings.
//
// Precedence (lowest → highest): defaults → config file → CLIPSLOTS_* env
// vars → flags. Viper is owned by the caller; this package registers
// defaults, decodes and validates.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"go.klb.dev/clipslots/internal/paths"
)

// Keys as they appear in the config file. Env vars are the upper-cased key
// with the CLIPSLOTS_ prefix.
const (
	KeyTmpDir        = "tmpdir"
	KeyPersistDir    = "persistdir"
	KeyAlwaysPersist = "always_persist"
	KeyUnattended    = "unattended"
	KeyNoGUI         = "nogui"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLIPSLOTS"

// Config is the resolved configuration for one invocation.
type Config struct {
	// TmpDir overrides the temporary root.
	TmpDir string `mapstructure:"tmpdir"`

	// PersistDir overrides the persistent root.
	PersistDir string `mapstructure:"persistdir"`

	AlwaysPersist bool `mapstructure:"always_persist"`

	// Unattended disables prompts; collisions are replaced.
	Unattended bool `mapstructure:"unattended"`

	// NoGUI disables the desktop clipboard bridge.
	NoGUI bool `mapstructure:"nogui"`

	// LogLevel is empty for the command's default.
	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=auto text tint human json"`
}

// SetDefaults registers every key on v so env vars are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTmpDir, "")
	v.SetDefault(KeyPersistDir, "")
	v.SetDefault(KeyAlwaysPersist, false)
	v.SetDefault(KeyUnattended, false)
	v.SetDefault(KeyNoGUI, false)
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFormat, "auto")
}

// Load decodes and validates v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(expandHomeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// expandHomeHook turns a leading ~ in string values into the home directory.
func expandHomeHook() mapstructure.DecodeHookFuncKind {
	return func(from, to reflect.Kind, data any) (any, error) {
		if from != reflect.String || to != reflect.String {
			return data, nil
		}
		return ExpandHome(data.(string))
	}
}

// ExpandHome expands "~" and "~/..." against the user's home directory.
func ExpandHome(s string) (string, error) {
	if s != "~" && !strings.HasPrefix(s, "~/") {
		return s, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", s, err)
	}
	return filepath.Join(home, strings.TrimPrefix(s, "~")), nil
}

// Layout resolves the storage roots.
func (c *Config) Layout() (paths.Layout, error) {
	return paths.New(c.TmpDir, c.PersistDir, c.AlwaysPersist)
}

// ImpliedUnattended reports whether the environment rules out prompting:
// a CI variable is set or stdin is not a terminal.
func ImpliedUnattended(lookupEnv func(string) (string, bool), stdinTTY bool) bool {
	if _, ok := lookupEnv("CI"); ok {
		return true
	}
	return !stdinTTY
}

var validate = validator.New()

// Validate checks struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			strings.ToLower(e.Field()), e.Tag(), e.Value())
	}
	return err
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipslots/internal/config"
	"go.klb.dev/clipslots/internal/paths"
)

// flagKeys maps shared flag names onto config keys.
var flagKeys = map[string]string{
	"tmpdir":         config.KeyTmpDir,
	"persistdir":     config.KeyPersistDir,
	"always-persist": config.KeyAlwaysPersist,
	"unattended":     config.KeyUnattended,
	"nogui":          config.KeyNoGUI,
	"log-level":      config.KeyLogLevel,
	"log-format":     config.KeyLogFormat,
}

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPSLOTS_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPSLOTS_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)

	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipslots")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipslots/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipslots", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
	}
	return nil
}

// addCommonFlags adds the storage, prompt and logging flags every command
// shares.
func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "path to config file (overrides auto-discovery)")
	f.String("tmpdir", "", "root for temporary clipboards (default: system temp dir)")
	f.String("persistdir", "", "root for persistent clipboards (default: home dir)")
	f.Bool("always-persist", false, "keep every clipboard under the persistent root")
	f.Bool("unattended", false, "never prompt; replace on collisions")
	f.Bool("nogui", false, "do not touch the desktop clipboard")
	f.String("log-format", "auto", "log format: auto|text|json")
	f.String("log-level", "", "log level: debug|info|warn|error (default: warn)")
}

// addSlotFlag adds --clipboard/-c.
func addSlotFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("clipboard", "c", paths.DefaultSlot, "clipboard to use")
}

// addPolicyFlags adds --force and --no-clobber.
func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "replace existing items without asking")
	cmd.Flags().BoolP("no-clobber", "n", false, "never replace existing items")
	cmd.MarkFlagsMutuallyExclusive("force", "no-clobber")
}

// loadConfig decodes v and configures logging.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	resolveLogging(cfg.LogFormat, cfg.LogLevel)
	return cfg, nil
}

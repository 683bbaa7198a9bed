// Package cmd contains the flags and the config loading shared by the
// solrsync executables.
package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/esgf/solrsync/config"
	"github.com/esgf/solrsync/config/presets"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string

	// Branch is the git branch used to build the App. Designed to be overwritten by make.
	Branch string

	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// Configure loads the preset and the config file into conf. Flags set on
// the command line take precedence over both.
func Configure(flagSet *pflag.FlagSet, conf *config.Config) error {
	type override struct {
		flag  *pflag.Flag
		value string
		slice []string
	}
	var overrides []override
	flagSet.Visit(func(f *pflag.Flag) {
		o := override{flag: f, value: f.Value.String()}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			o.slice = sv.GetSlice()
		}
		overrides = append(overrides, o)
	})

	if err := loadConfig(conf, conf.Preset, conf.ConfigFile); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// apply CLI args to config
	for _, o := range overrides {
		var err error
		if sv, ok := o.flag.Value.(pflag.SliceValue); ok {
			err = sv.Replace(o.slice)
		} else {
			err = o.flag.Value.Set(o.value)
		}
		if err != nil {
			return fmt.Errorf("apply flag --%s: %w", o.flag.Name, err)
		}
	}
	return nil
}

// loadConfig loads config and preset (if provided) into the provided config.
// It first loads the preset and then overrides it with values from the config file.
func loadConfig(cfg *config.Config, preset, path string) error {
	v := viper.New()
	if path != "" {
		if err := config.LoadConfig(path, v); err != nil {
			return err
		}
	}

	// override default config with preset if provided
	if len(preset) == 0 && v.IsSet("main.preset") {
		preset = v.GetString("main.preset")
	}
	if len(preset) > 0 {
		p, err := presets.Get(preset)
		if err != nil {
			return err
		}
		*cfg = p
	}
	if path == "" {
		return nil
	}
	return config.Unmarshal(v, cfg)
}

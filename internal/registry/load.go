package registry

import (
	"bytes"

	"github.com/brendan.keane/callout/internal/errors"
	"github.com/spf13/viper"
)

// file is the on-disk registry document.
type file struct {
	Aliases []Entry `mapstructure:"aliases"`
}

// LoadFile reads a YAML (or JSON/TOML, by extension) registry file.
func LoadFile(path string, opts ...Option) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read registry file").
			WithContext("path", path).
			WithContext("suggestion", "create the file or point --registry / CALLOUT_REGISTRY at it")
	}
	return decode(v, path, opts)
}

// LoadYAML reads a registry from YAML bytes.
func LoadYAML(data []byte, opts ...Option) (*Registry, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse registry")
	}
	return decode(v, "<inline>", opts)
}

func decode(v *viper.Viper, source string, opts []Option) (*Registry, error) {
	var f file
	if err := v.Unmarshal(&f); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode registry").
			WithContext("path", source)
	}
	return New(f.Aliases, opts...)
}

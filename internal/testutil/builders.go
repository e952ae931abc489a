package testutil

import (
	"github.com/brendan.keane/callout/internal/config"
)

// ConfigBuilder provides a fluent interface for building test configurations
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder starts from the production defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: config.NewConfig()}
}

func (b *ConfigBuilder) WithRegistry(path string) *ConfigBuilder {
	b.config.RegistryPath = path
	return b
}

func (b *ConfigBuilder) WithStore(path string) *ConfigBuilder {
	b.config.StorePath = path
	return b
}

func (b *ConfigBuilder) WithTransport(transport string) *ConfigBuilder {
	b.config.Transport = transport
	return b
}

// Build returns the configuration
func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}

package config

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	calloutErrors "github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/pkg/callout"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "CALLOUT"

// Transport names accepted by --transport.
const (
	TransportNet   = "net"
	TransportResty = "resty"
)

// Config holds all application configuration
type Config struct {
	RegistryPath string
	StorePath    string
	Transport    string
	LogLevel     string
	Debug        bool

	Call CallConfig
	MCP  MCPConfig
}

// CallConfig holds the settings of a single command-line callout.
type CallConfig struct {
	Alias          string
	Method         string
	Path           string
	Query          string
	Data           string
	Headers        []string
	PatchNative    bool
	Verbose        bool
	IncludeHeaders bool
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description    string   // Server description for LLM context
	AllowedAliases []string // Empty means every registered alias
	AllowedMethods []string
}

type contextKey string

const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	return &Config{
		RegistryPath: "callout.yaml",
		StorePath:    "callout.db",
		Transport:    TransportNet,
		LogLevel:     "warn",
		Call: CallConfig{
			Method: string(callout.GET),
		},
		MCP: MCPConfig{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
		},
	}
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped; variables already set are left alone.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to load env file").
				WithContext("path", path)
		}
	}
	return nil
}

// LoadFromFlags creates a Config from the global flags. Each setting is taken
// from its flag when set, then from CALLOUT_<NAME>, then from the default.
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	cfg := NewConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("registry", cfg.RegistryPath)
	v.SetDefault("store", cfg.StorePath)
	v.SetDefault("transport", cfg.Transport)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("debug", cfg.Debug)

	for _, name := range []string{"registry", "store", "transport", "log-level", "debug"} {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(name, flag); err != nil {
			return nil, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to bind flag").
				WithContext("flag", name)
		}
	}

	cfg.RegistryPath = v.GetString("registry")
	cfg.StorePath = v.GetString("store")
	cfg.Transport = strings.ToLower(strings.TrimSpace(v.GetString("transport")))
	cfg.LogLevel = v.GetString("log-level")
	cfg.Debug = v.GetBool("debug")

	return cfg, nil
}

// LoadCallFromFlags reads the flags of the root callout command.
func LoadCallFromFlags(flags *pflag.FlagSet) (CallConfig, error) {
	call := NewConfig().Call
	var err error

	if call.Alias, err = flags.GetString("alias"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get alias flag")
	}
	if call.Alias == "" {
		call.Alias = viperEnv("alias")
	}

	if call.Method, err = flags.GetString("request"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get request flag")
	}
	call.Method = strings.ToUpper(strings.TrimSpace(call.Method))
	if call.Method == "" {
		call.Method = string(callout.GET)
	}

	if call.Query, err = flags.GetString("query"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get query flag")
	}

	if call.Data, err = flags.GetString("data"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get data flag")
	}

	if call.Headers, err = flags.GetStringArray("header"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get header flag")
	}

	if call.PatchNative, err = flags.GetBool("patch-native"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get patch-native flag")
	}

	if call.Verbose, err = flags.GetBool("verbose"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get verbose flag")
	}

	if call.IncludeHeaders, err = flags.GetBool("include"); err != nil {
		return call, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get include flag")
	}

	return call, nil
}

// LoadMCPFromFlags reads the flags of the mcp command.
func LoadMCPFromFlags(flags *pflag.FlagSet) (MCPConfig, error) {
	mcp := NewConfig().MCP
	var err error

	if mcp.Description, err = flags.GetString("desc"); err != nil {
		return mcp, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get desc flag")
	}
	if mcp.Description == "" {
		mcp.Description = viperEnv("mcp_description")
	}

	if mcp.AllowedAliases, err = flags.GetStringSlice("allow-aliases"); err != nil {
		return mcp, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get allow-aliases flag")
	}

	methods, err := flags.GetStringSlice("allow-methods")
	if err != nil {
		return mcp, calloutErrors.Wrap(err, calloutErrors.ErrorTypeConfig, "failed to get allow-methods flag")
	}
	if len(methods) > 0 {
		mcp.AllowedMethods = make([]string, 0, len(methods))
		for _, m := range methods {
			mcp.AllowedMethods = append(mcp.AllowedMethods, strings.ToUpper(strings.TrimSpace(m)))
		}
	}

	return mcp, nil
}

func viperEnv(key string) string {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindEnv(key); err != nil {
		return ""
	}
	return v.GetString(key)
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportNet, TransportResty:
	default:
		return calloutErrors.New(calloutErrors.ErrorTypeValidation, "unknown transport").
			WithContext("transport", c.Transport).
			WithContext("valid_transports", []string{TransportNet, TransportResty})
	}

	if c.RegistryPath == "" {
		return calloutErrors.New(calloutErrors.ErrorTypeConfig, "registry path is required").
			WithContext("suggestion", "set CALLOUT_REGISTRY or use --registry")
	}

	return nil
}

// Validate ensures the call settings describe a well-formed callout.
func (c CallConfig) Validate() error {
	if c.Alias == "" {
		return calloutErrors.New(calloutErrors.ErrorTypeValidation, "alias is required").
			WithContext("field", "alias").
			WithContext("suggestion", "set CALLOUT_ALIAS or use --alias")
	}

	if _, ok := callout.ParseVerb(c.Method); !ok {
		return calloutErrors.New(calloutErrors.ErrorTypeValidation, "invalid HTTP method").
			WithContext("field", "method").
			WithContext("method", c.Method).
			WithContext("valid_methods", verbNames())
	}

	if _, err := ParseHeaders(c.Headers); err != nil {
		return err
	}

	return nil
}

// Validate ensures MCP configuration is valid
func (c MCPConfig) Validate() error {
	for _, method := range c.AllowedMethods {
		if _, ok := callout.ParseVerb(method); !ok {
			return calloutErrors.New(calloutErrors.ErrorTypeValidation, "invalid HTTP method in allow-methods").
				WithContext("method", method).
				WithContext("valid_methods", verbNames())
		}
	}
	return nil
}

// Verb returns the parsed request method.
func (c CallConfig) Verb() callout.Verb {
	verb, _ := callout.ParseVerb(c.Method)
	return verb
}

// PatchPolicy maps --patch-native onto the client option.
func (c CallConfig) PatchPolicy() callout.PatchPolicy {
	if c.PatchNative {
		return callout.PatchNative
	}
	return callout.PatchOverride
}

// HeaderMap returns the -H values as a header map, or nil when none were given
// so that the client's default headers apply.
func (c CallConfig) HeaderMap() (map[string]string, error) {
	return ParseHeaders(c.Headers)
}

// ParseHeaders converts "Name: value" strings into a map. A nil or empty
// slice yields nil.
func ParseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, calloutErrors.New(calloutErrors.ErrorTypeValidation, "header must be in 'Name: value' form").
				WithContext("field", "header").
				WithContext("header", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

func verbNames() []string {
	verbs := callout.Verbs()
	names := make([]string, len(verbs))
	for i, v := range verbs {
		names[i] = string(v)
	}
	return names
}

package registry

import (
	"net/url"
	"strings"

	"github.com/brendan.keane/callout/internal/errors"
)

// Auth policy names.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthSigV4  = "sigv4"
	AuthOAuth2 = "oauth2"
)

// Entry is one alias in the registry file. Exactly one of URL and OpenAPI is
// set; with OpenAPI the base URL comes from the document's servers.
type Entry struct {
	Name        string     `mapstructure:"name"`
	URL         string     `mapstructure:"url"`
	OpenAPI     string     `mapstructure:"openapi"`
	Description string     `mapstructure:"description"`
	Auth        AuthConfig `mapstructure:"auth"`
}

// AuthConfig selects and parameterizes the credential policy of an alias.
// Secrets are normally read from the environment variables named by the
// *_env fields when a request is authorized.
type AuthConfig struct {
	Type string `mapstructure:"type"`

	Token    string `mapstructure:"token"`
	TokenEnv string `mapstructure:"token_env"`

	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	PasswordEnv string `mapstructure:"password_env"`

	Service string `mapstructure:"service"`
	Region  string `mapstructure:"region"`

	ClientID        string   `mapstructure:"client_id"`
	ClientSecret    string   `mapstructure:"client_secret"`
	ClientSecretEnv string   `mapstructure:"client_secret_env"`
	TokenURL        string   `mapstructure:"token_url"`
	Scopes          []string `mapstructure:"scopes"`
}

// Kind returns the normalized auth type, defaulting to none.
func (a AuthConfig) Kind() string {
	kind := strings.ToLower(strings.TrimSpace(a.Type))
	if kind == "" {
		return AuthNone
	}
	return kind
}

// Source returns the URL or OpenAPI location the entry was configured with.
func (e Entry) Source() string {
	if e.OpenAPI != "" {
		return e.OpenAPI
	}
	return e.URL
}

func (e Entry) validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New(errors.ErrorTypeConfig, "alias entry has no name")
	}

	switch {
	case e.URL == "" && e.OpenAPI == "":
		return errors.New(errors.ErrorTypeConfig, "alias needs either url or openapi").
			WithContext("alias", e.Name)
	case e.URL != "" && e.OpenAPI != "":
		return errors.New(errors.ErrorTypeConfig, "alias sets both url and openapi").
			WithContext("alias", e.Name)
	}

	if e.URL != "" {
		if err := validateBaseURL(e.URL); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid alias url").
				WithContext("alias", e.Name).
				WithContext("url", e.URL)
		}
	}

	return e.Auth.validate(e.Name)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "lambda":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New(errors.ErrorTypeConfig, "missing host")
	}
	return nil
}

func (a AuthConfig) validate(alias string) error {
	missing := func(field string) error {
		return errors.New(errors.ErrorTypeConfig, "incomplete auth configuration").
			WithContext("alias", alias).
			WithContext("auth", a.Kind()).
			WithContext("missing", field)
	}

	switch a.Kind() {
	case AuthNone:
	case AuthBearer:
		if a.Token == "" && a.TokenEnv == "" {
			return missing("token or token_env")
		}
	case AuthBasic:
		if a.Username == "" {
			return missing("username")
		}
		if a.Password == "" && a.PasswordEnv == "" {
			return missing("password or password_env")
		}
	case AuthSigV4:
		if a.Service == "" {
			return missing("service")
		}
	case AuthOAuth2:
		if a.ClientID == "" {
			return missing("client_id")
		}
		if a.TokenURL == "" {
			return missing("token_url")
		}
		if a.ClientSecret == "" && a.ClientSecretEnv == "" {
			return missing("client_secret or client_secret_env")
		}
	default:
		return errors.New(errors.ErrorTypeConfig, "unknown auth type").
			WithContext("alias", alias).
			WithContext("auth", a.Type)
	}
	return nil
}

package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/brendan.keane/callout/internal/errors"
	"github.com/brendan.keane/callout/pkg/callout"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// secret returns the literal value, or the named environment variable.
func secret(literal, envName, field string) (string, error) {
	if literal != "" {
		return literal, nil
	}
	if value, ok := os.LookupEnv(envName); ok && value != "" {
		return value, nil
	}
	return "", errors.New(errors.ErrorTypeAuth, "credential not available").
		WithContext("field", field).
		WithContext("env", envName).
		WithContext("suggestion", "export "+envName+" or add it to .env")
}

// newAuthorizer builds the credential policy for an entry. A nil result
// means requests go out unauthenticated.
func newAuthorizer(auth AuthConfig, httpClient *http.Client) callout.Authorizer {
	switch auth.Kind() {
	case AuthBearer:
		return &BearerAuthorizer{Token: auth.Token, TokenEnv: auth.TokenEnv}
	case AuthBasic:
		return &BasicAuthorizer{Username: auth.Username, Password: auth.Password, PasswordEnv: auth.PasswordEnv}
	case AuthSigV4:
		return &SigV4Authorizer{Service: auth.Service, Region: auth.Region}
	case AuthOAuth2:
		return &OAuth2Authorizer{
			ClientID:        auth.ClientID,
			ClientSecret:    auth.ClientSecret,
			ClientSecretEnv: auth.ClientSecretEnv,
			TokenURL:        auth.TokenURL,
			Scopes:          auth.Scopes,
			HTTPClient:      httpClient,
		}
	}
	return nil
}

// BearerAuthorizer sets a static bearer token.
type BearerAuthorizer struct {
	Token    string
	TokenEnv string
}

func (a *BearerAuthorizer) Authorize(_ context.Context, req *http.Request) error {
	token, err := secret(a.Token, a.TokenEnv, "token")
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// BasicAuthorizer sets HTTP basic credentials.
type BasicAuthorizer struct {
	Username    string
	Password    string
	PasswordEnv string
}

func (a *BasicAuthorizer) Authorize(_ context.Context, req *http.Request) error {
	password, err := secret(a.Password, a.PasswordEnv, "password")
	if err != nil {
		return err
	}
	req.SetBasicAuth(a.Username, password)
	return nil
}

// SigV4Authorizer signs requests with AWS Signature Version 4. Credentials
// come from the default AWS chain unless Credentials is set. lambda:// URLs
// are invoked through the Lambda API and are not signed here.
type SigV4Authorizer struct {
	Service     string
	Region      string
	Credentials aws.CredentialsProvider
	Now         func() time.Time

	mu     sync.Mutex
	signer *v4.Signer
}

// load resolves region and credentials once they are available. Failures are
// not cached, so a later call retries.
func (a *SigV4Authorizer) load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.signer != nil {
		return nil
	}

	if a.Credentials == nil || a.Region == "" {
		var opts []func(*awsconfig.LoadOptions) error
		if a.Region != "" {
			opts = append(opts, awsconfig.WithRegion(a.Region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeAuth, "failed to load AWS configuration").
				WithContext("suggestion", "ensure AWS credentials are configured")
		}
		if a.Region == "" {
			a.Region = cfg.Region
		}
		if a.Credentials == nil {
			a.Credentials = cfg.Credentials
		}
	}
	a.signer = v4.NewSigner()
	return nil
}

func (a *SigV4Authorizer) Authorize(ctx context.Context, req *http.Request) error {
	if req.URL.Scheme == "lambda" {
		return nil
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if a.Region == "" {
		return errors.New(errors.ErrorTypeAuth, "AWS region not configured").
			WithContext("suggestion", "set region on the alias or AWS_REGION")
	}

	creds, err := a.Credentials.Retrieve(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to retrieve AWS credentials")
	}

	payloadHash, err := hashBody(req)
	if err != nil {
		return err
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	if err := a.signer.SignHTTP(ctx, creds, req, payloadHash, a.Service, a.Region, now()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to sign request with SigV4").
			WithContext("service", a.Service).
			WithContext("region", a.Region)
	}
	return nil
}

// hashBody returns the hex SHA-256 of the body and leaves the body readable.
func hashBody(req *http.Request) (string, error) {
	if req.Body == nil || req.Body == http.NoBody {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to read request body for signing")
	}
	req.Body = io.NopCloser(strings.NewReader(string(body)))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// OAuth2Authorizer obtains tokens with the client-credentials grant. Tokens
// are cached and refreshed when they expire.
type OAuth2Authorizer struct {
	ClientID        string
	ClientSecret    string
	ClientSecretEnv string
	TokenURL        string
	Scopes          []string
	HTTPClient      *http.Client

	mu     sync.Mutex
	source oauth2.TokenSource
}

// tokenSource reads the client secret on first use. Only a successful source
// is kept; a missing secret is looked up again on the next call.
func (a *OAuth2Authorizer) tokenSource() (oauth2.TokenSource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.source != nil {
		return a.source, nil
	}

	clientSecret, err := secret(a.ClientSecret, a.ClientSecretEnv, "client_secret")
	if err != nil {
		return nil, err
	}

	cfg := clientcredentials.Config{
		ClientID:     a.ClientID,
		ClientSecret: clientSecret,
		TokenURL:     a.TokenURL,
		Scopes:       a.Scopes,
	}

	// The token source outlives the request that first needs it.
	ctx := context.Background()
	if a.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.HTTPClient)
	}
	a.source = cfg.TokenSource(ctx)
	return a.source, nil
}

func (a *OAuth2Authorizer) Authorize(_ context.Context, req *http.Request) error {
	source, err := a.tokenSource()
	if err != nil {
		return err
	}

	token, err := source.Token()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeAuth, "failed to obtain OAuth2 token").
			WithContext("token_url", a.TokenURL)
	}
	token.SetAuthHeader(req)
	return nil
}

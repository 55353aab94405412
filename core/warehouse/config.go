package warehouse

import "strings"

// Config holds configuration for the external warehouse API.
type Config struct {
	// URL is the base URL of the warehouse API.
	URL string `mapstructure:"api_url" default:""`
	// AuthMethod selects how requests are authenticated (apikey, bearer, basic, headers, none).
	AuthMethod string `mapstructure:"auth_method" default:"none"`
	// ApiKey is the key sent when AuthMethod is "apikey".
	ApiKey string `mapstructure:"api_key" default:""`
	// ApiKeyHeader is the header name used for the API key.
	ApiKeyHeader string `mapstructure:"api_key_header" default:"X-Api-Key"`
	// BearerToken is the token sent when AuthMethod is "bearer".
	BearerToken string `mapstructure:"bearer_token" default:""`
	// BasicUser is the username sent when AuthMethod is "basic".
	BasicUser string `mapstructure:"basic_user" default:""`
	// BasicPassword is the password sent when AuthMethod is "basic".
	BasicPassword string `mapstructure:"basic_password" default:""`
	// CustomHeaders holds extra headers when AuthMethod is "headers",
	// as a comma-separated list of "Name: Value" pairs.
	CustomHeaders string `mapstructure:"custom_headers" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"request_timeout" default:"30"`
	// MaxRetries is the retry budget for transient failures per page fetch.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// PageSize is the number of records requested per page.
	PageSize int `mapstructure:"page_size" default:"200"`
	// BackoffBaseMS is the initial retry delay in milliseconds; it doubles
	// per attempt up to a fixed cap.
	BackoffBaseMS int `mapstructure:"backoff_base_ms" default:"500"`
}

const (
	AuthNone    = "none"
	AuthApiKey  = "apikey"
	AuthBearer  = "bearer"
	AuthBasic   = "basic"
	AuthHeaders = "headers"
)

// IsValidAuthMethod checks if the configured auth method is recognized.
func (c Config) IsValidAuthMethod() bool {
	switch c.AuthMethod {
	case AuthNone, AuthApiKey, AuthBearer, AuthBasic, AuthHeaders:
		return true
	default:
		return false
	}
}

// Headers parses CustomHeaders into name/value pairs. Malformed entries are skipped.
func (c Config) Headers() map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.CustomHeaders, ",") {
		name, value, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" {
			continue
		}
		headers[name] = value
	}
	return headers
}

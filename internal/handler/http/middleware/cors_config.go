package middleware

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DefaultAllowedOrigin is the browser extension permitted when
// CORS_ALLOWED_ORIGINS is not set.
const DefaultAllowedOrigin = "chrome-extension://oobgghfnikgdjofecgkadooeinfakdnk"

// allowedSchemes lists origin schemes accepted in configuration.
var allowedSchemes = map[string]bool{
	"http":             true,
	"https":            true,
	"chrome-extension": true,
	"moz-extension":    true,
}

// ConfigSource loads CORS settings.
type ConfigSource interface {
	LoadOrigins() ([]string, error)
	LoadMethods() ([]string, error)
	LoadHeaders() ([]string, error)
	LoadMaxAge() (int, error)
	LoadAllowCredentials() (bool, error)
}

// EnvConfigSource loads CORS settings from environment variables:
//
//	CORS_ALLOWED_ORIGINS     comma-separated origins (default: DefaultAllowedOrigin)
//	CORS_ALLOWED_METHODS     comma-separated methods (default: GET,POST,OPTIONS)
//	CORS_ALLOWED_HEADERS     comma-separated headers (default: Content-Type,X-Request-ID)
//	CORS_MAX_AGE             preflight cache seconds (default: 600)
//	CORS_ALLOW_CREDENTIALS   true/false (default: false)
type EnvConfigSource struct{}

// LoadOrigins parses CORS_ALLOWED_ORIGINS.
// Each origin must be scheme://host with no path, query, fragment or trailing slash.
func (s *EnvConfigSource) LoadOrigins() ([]string, error) {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if raw == "" {
		return []string{DefaultAllowedOrigin}, nil
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if err := validateOrigin(origin); err != nil {
			return nil, err
		}
		origins = append(origins, origin)
	}

	if len(origins) == 0 {
		return nil, fmt.Errorf("at least one valid origin must be configured in CORS_ALLOWED_ORIGINS")
	}
	return origins, nil
}

func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin URL '%s': %w", origin, err)
	}
	if !allowedSchemes[u.Scheme] {
		return fmt.Errorf("origin must use http, https, chrome-extension or moz-extension scheme: %s", origin)
	}
	if u.Host == "" {
		return fmt.Errorf("origin must include a host: %s", origin)
	}
	if strings.HasSuffix(origin, "/") {
		return fmt.Errorf("origin must not have trailing slash: %s", origin)
	}
	if u.Path != "" {
		return fmt.Errorf("origin must not include path: %s", origin)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin must not include query string or fragment: %s", origin)
	}
	return nil
}

// LoadMethods parses CORS_ALLOWED_METHODS.
func (s *EnvConfigSource) LoadMethods() ([]string, error) {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_METHODS"))
	if raw == "" {
		return []string{"GET", "POST", "OPTIONS"}, nil
	}

	valid := map[string]bool{"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true, "OPTIONS": true}

	var methods []string
	for _, method := range strings.Split(raw, ",") {
		method = strings.ToUpper(strings.TrimSpace(method))
		if method == "" {
			continue
		}
		if !valid[method] {
			return nil, fmt.Errorf("invalid HTTP method '%s': must be one of GET, POST, PUT, DELETE, PATCH, OPTIONS", method)
		}
		methods = append(methods, method)
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("at least one valid HTTP method must be configured in CORS_ALLOWED_METHODS")
	}
	return methods, nil
}

// LoadHeaders parses CORS_ALLOWED_HEADERS.
func (s *EnvConfigSource) LoadHeaders() ([]string, error) {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_HEADERS"))
	if raw == "" {
		return []string{"Content-Type", "X-Request-ID"}, nil
	}

	var headers []string
	for _, header := range strings.Split(raw, ",") {
		if header = strings.TrimSpace(header); header != "" {
			headers = append(headers, header)
		}
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("at least one valid header must be configured in CORS_ALLOWED_HEADERS")
	}
	return headers, nil
}

// LoadMaxAge parses CORS_MAX_AGE.
func (s *EnvConfigSource) LoadMaxAge() (int, error) {
	raw := strings.TrimSpace(os.Getenv("CORS_MAX_AGE"))
	if raw == "" {
		return 600, nil
	}

	maxAge, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid CORS_MAX_AGE '%s': must be a valid integer", raw)
	}
	if maxAge < 0 {
		return 0, fmt.Errorf("CORS_MAX_AGE must be non-negative, got: %d", maxAge)
	}
	return maxAge, nil
}

// LoadAllowCredentials parses CORS_ALLOW_CREDENTIALS.
func (s *EnvConfigSource) LoadAllowCredentials() (bool, error) {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOW_CREDENTIALS"))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid CORS_ALLOW_CREDENTIALS '%s': must be true or false", raw)
	}
	return v, nil
}

// LoadCORSConfig loads the CORS configuration from environment variables.
func LoadCORSConfig(logger *slog.Logger) (*CORSConfig, error) {
	return LoadCORSConfigFromSource(&EnvConfigSource{}, logger)
}

// LoadCORSConfigFromSource loads the CORS configuration from source.
func LoadCORSConfigFromSource(source ConfigSource, logger *slog.Logger) (*CORSConfig, error) {
	origins, err := source.LoadOrigins()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed origins: %w", err)
	}

	methods, err := source.LoadMethods()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed methods: %w", err)
	}

	headers, err := source.LoadHeaders()
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed headers: %w", err)
	}

	maxAge, err := source.LoadMaxAge()
	if err != nil {
		return nil, fmt.Errorf("failed to load max age: %w", err)
	}

	credentials, err := source.LoadAllowCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to load allow credentials: %w", err)
	}

	return &CORSConfig{
		AllowedMethods:   methods,
		AllowedHeaders:   headers,
		AllowCredentials: credentials,
		MaxAge:           maxAge,
		Validator:        NewWhitelistValidator(origins),
		Logger:           logger,
	}, nil
}

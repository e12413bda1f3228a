package api

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"

	"autoshop/internal/config"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	clientKeyUnknown      = "unknown"

	PermReadDashboard     = "read:dashboard"
	PermReadSales         = "read:sales"
	PermReadDirectory     = "read:directory"
	PermWriteTransactions = "write:transactions"
)

var (
	errMissingKey       = errors.New("missing api key headers")
	errInvalidKey       = errors.New("invalid api key")
	errInvalidExtra     = errors.New("invalid extra header")
	errPermissionDenied = errors.New("permission denied")
	errRateLimited      = errors.New("rate limit exceeded")
)

// HTTPAuth provides API-key auth and per-client rate limiting.
type HTTPAuth struct {
	cfg         config.APIConfig
	apiKeyName  string
	extraName   string
	clients     map[string]config.APIClientKey
	rateLimiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{
		cfg:         cfg,
		apiKeyName:  headerName(cfg.Auth.HeaderAPIKey, apiKeyHeaderDefault),
		extraName:   headerName(cfg.Auth.HeaderExtra, apiExtraHeaderDefault),
		clients:     m,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

func headerName(configured, fallback string) string {
	if h := strings.TrimSpace(strings.ToLower(configured)); h != "" {
		return h
	}
	return fallback
}

// Wrap guards next. Health checks bypass auth and limiting.
func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if !a.rateLimiter.allow(a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, errRateLimited.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyName))
	extra := strings.TrimSpace(r.Header.Get(a.extraName))
	if apiKey == "" || extra == "" {
		return errMissingKey
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return errInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return errInvalidExtra
	}

	return checkPermissions(client, requiredPermission(r))
}

func checkPermissions(client config.APIClientKey, required string) error {
	if required == "" {
		return nil
	}
	// If permissions list is empty, treat as allow-all.
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermission(r *http.Request) string {
	path := r.URL.Path
	switch {
	case path == "/api/v1/dashboard":
		return PermReadDashboard
	case strings.HasPrefix(path, "/api/v1/sales"):
		return PermReadSales
	case path == "/api/v1/customers", path == "/api/v1/employees":
		return PermReadDirectory
	case strings.HasPrefix(path, "/api/v1/drafts"):
		return PermWriteTransactions
	default:
		return ""
	}
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.apiKeyName)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

// Package keycloak obtains service-account access tokens via the OpenID
// Connect resource owner password grant.
package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/metrics"
)

// DefaultLifetime is assumed when neither expires_in nor the JWT exp claim is available.
const DefaultLifetime = 300 * time.Second

// Config holds the identity provider settings.
type Config struct {
	BaseURL  string // e.g. https://keycloak:8843
	Realm    string
	ClientID string
	Username string
	Password string
	Logger   *zap.Logger
}

// Provider issues tokens from a Keycloak realm. It does not cache.
type Provider struct {
	httpClient *http.Client
	tokenURL   string
	clientID   string
	username   string
	password   string
	logger     *zap.Logger
	now        func() time.Time
}

// NewProvider creates a token provider. httpClient carries timeouts and TLS settings.
func NewProvider(cfg *Config, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		httpClient: httpClient,
		tokenURL:   TokenURL(cfg.BaseURL, cfg.Realm),
		clientID:   cfg.ClientID,
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     logger,
		now:        time.Now,
	}
}

// TokenURL builds the realm's token endpoint.
func TokenURL(baseURL, realm string) string {
	return strings.TrimRight(baseURL, "/") + "/realms/" + url.PathEscape(realm) + "/protocol/openid-connect/token"
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token implements domain.TokenSource. Every failure wraps domain.ErrAuthentication.
func (p *Provider) Token(ctx context.Context) (domain.Token, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {p.clientID},
		"username":   {p.username},
		"password":   {p.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Token{}, fmt.Errorf("build token request: %v: %w", err, domain.ErrAuthentication)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	now := p.now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.TokenRequestsTotal.WithLabelValues("error").Inc()
		return domain.Token{}, fmt.Errorf("token request: %v: %w", err, domain.ErrAuthentication)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.TokenRequestsTotal.WithLabelValues("error").Inc()
		return domain.Token{}, fmt.Errorf("read token response: %v: %w", err, domain.ErrAuthentication)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TokenRequestsTotal.WithLabelValues("rejected").Inc()
		p.logger.Warn("Token request rejected", zap.Int("status", resp.StatusCode))
		return domain.Token{}, fmt.Errorf("token endpoint returned %d: %w", resp.StatusCode, domain.ErrAuthentication)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		metrics.TokenRequestsTotal.WithLabelValues("error").Inc()
		return domain.Token{}, fmt.Errorf("malformed token response: %w", domain.ErrAuthentication)
	}

	metrics.TokenRequestsTotal.WithLabelValues("success").Inc()
	return domain.Token{
		AccessToken: tr.AccessToken,
		ExpiresAt:   expiry(tr, now),
	}, nil
}

// expiry prefers expires_in, then the unverified exp claim, then DefaultLifetime.
func expiry(tr tokenResponse, now time.Time) time.Time {
	if tr.ExpiresIn > 0 {
		return now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	if exp, ok := jwtExpiry(tr.AccessToken); ok && exp.After(now) {
		return exp
	}
	return now.Add(DefaultLifetime)
}

// jwtExpiry reads exp without verifying the signature; the token is only forwarded.
func jwtExpiry(raw string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	tok, _, err := parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

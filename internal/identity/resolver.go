package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yeonjae-dev/pizzaria-sns/models"
)

// TokenSigner creates anonymous accounts against the external identity
// service and returns the new account id.
type TokenSigner interface {
	SignUpAnonymous(ctx context.Context) (string, error)
}

// Resolver derives the session's Principal: an anonymous account id from the
// identity service and a best-effort network address from the configured
// IP-lookup endpoints. The first successful resolution is cached for the
// lifetime of the Resolver and never refreshed.
type Resolver struct {
	signer    TokenSigner
	endpoints []string
	client    *http.Client
	logger    *zap.Logger

	mu        sync.Mutex
	resolved  bool
	principal models.Principal
}

// NewResolver creates a Resolver querying the given IP-lookup endpoints in
// order until one succeeds
func NewResolver(signer TokenSigner, endpoints []string, logger *zap.Logger) *Resolver {
	return &Resolver{
		signer:    signer,
		endpoints: endpoints,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
	}
}

// Resolve returns the session principal, resolving it on first use. The
// anonymous sign-in is retried once and blocks the session on repeated
// failure; the IP lookup falls back to a synthesized session identifier so
// like semantics still hold within the session.
func (r *Resolver) Resolve(ctx context.Context) (models.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return r.principal, nil
	}

	accountID, err := r.signer.SignUpAnonymous(ctx)
	if err != nil {
		r.logger.Warn("anonymous sign-in failed, retrying once", zap.Error(err))
		accountID, err = r.signer.SignUpAnonymous(ctx)
		if err != nil {
			return models.Principal{}, fmt.Errorf("anonymous sign-in failed: %w", err)
		}
	}

	ip := r.lookupIP(ctx)
	if ip == "" {
		ip = fallbackID()
		r.logger.Warn("all IP-lookup services failed, using session-local fallback id", zap.String("fallback", ip))
	}

	r.principal = models.Principal{AccountID: accountID, IPAddress: ip}
	r.resolved = true
	return r.principal, nil
}

func (r *Resolver) lookupIP(ctx context.Context) string {
	for _, endpoint := range r.endpoints {
		if ip := r.queryEndpoint(ctx, endpoint); ip != "" {
			return ip
		}
	}
	return ""
}

func (r *Resolver) queryEndpoint(ctx context.Context, endpoint string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("IP lookup failed", zap.String("endpoint", endpoint), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.IP
}

// fallbackID synthesizes a per-session identifier of the form
// anonymous-<epoch-millis>-<suffix>, not durable across sessions.
func fallbackID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("anonymous-%d-%s", time.Now().UnixMilli(), suffix)
}

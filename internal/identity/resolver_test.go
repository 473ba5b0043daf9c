package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSigner struct {
	id    string
	fails int
	calls int
}

func (s *stubSigner) SignUpAnonymous(ctx context.Context) (string, error) {
	s.calls++
	if s.calls <= s.fails {
		return "", errors.New("identity service unavailable")
	}
	return s.id, nil
}

func ipServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveUsesPrimaryEndpoint(t *testing.T) {
	primary := ipServer(t, `{"ip":"203.0.113.10"}`, http.StatusOK)
	secondary := ipServer(t, `{"ip":"203.0.113.99"}`, http.StatusOK)

	signer := &stubSigner{id: "acct-1"}
	r := NewResolver(signer, []string{primary.URL, secondary.URL}, zap.NewNop())

	principal, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", principal.AccountID)
	assert.Equal(t, "203.0.113.10", principal.IPAddress)
}

func TestResolveFallsThroughToSecondary(t *testing.T) {
	primary := ipServer(t, `oops`, http.StatusInternalServerError)
	secondary := ipServer(t, `{"ip":"203.0.113.99"}`, http.StatusOK)

	r := NewResolver(&stubSigner{id: "acct-1"}, []string{primary.URL, secondary.URL}, zap.NewNop())

	principal, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.99", principal.IPAddress)
}

func TestResolveSynthesizesFallbackID(t *testing.T) {
	primary := ipServer(t, ``, http.StatusServiceUnavailable)
	secondary := ipServer(t, `{"notip":"x"}`, http.StatusOK)

	r := NewResolver(&stubSigner{id: "acct-1"}, []string{primary.URL, secondary.URL}, zap.NewNop())

	principal, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^anonymous-\d+-[a-z0-9]{6}$`), principal.IPAddress)
}

func TestResolveCachesFirstResolution(t *testing.T) {
	srv := ipServer(t, `{"ip":"203.0.113.10"}`, http.StatusOK)
	signer := &stubSigner{id: "acct-1"}
	r := NewResolver(signer, []string{srv.URL}, zap.NewNop())
	ctx := context.Background()

	first, err := r.Resolve(ctx)
	require.NoError(t, err)
	second, err := r.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, signer.calls, "resolution must not refresh within the session")
}

func TestResolveFallbackIDStableWithinSession(t *testing.T) {
	srv := ipServer(t, ``, http.StatusBadGateway)
	r := NewResolver(&stubSigner{id: "acct-1"}, []string{srv.URL}, zap.NewNop())
	ctx := context.Background()

	first, err := r.Resolve(ctx)
	require.NoError(t, err)
	second, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.IPAddress, second.IPAddress, "all mutations in the session share the fallback id")
}

func TestResolveRetriesSignInOnce(t *testing.T) {
	srv := ipServer(t, `{"ip":"203.0.113.10"}`, http.StatusOK)

	signer := &stubSigner{id: "acct-1", fails: 1}
	r := NewResolver(signer, []string{srv.URL}, zap.NewNop())

	principal, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", principal.AccountID)
	assert.Equal(t, 2, signer.calls)
}

func TestResolveBlocksWhenSignInKeepsFailing(t *testing.T) {
	srv := ipServer(t, `{"ip":"203.0.113.10"}`, http.StatusOK)

	signer := &stubSigner{id: "acct-1", fails: 2}
	r := NewResolver(signer, []string{srv.URL}, zap.NewNop())

	_, err := r.Resolve(context.Background())
	require.Error(t, err, "operations must not proceed with a null account id")
	assert.Equal(t, 2, signer.calls, "exactly one retry")

	// the failure is not cached; a later attempt may succeed
	principal, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", principal.AccountID)
}

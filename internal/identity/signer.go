package identity

import (
	"context"
	"fmt"

	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// IdentityToolkitSigner signs up anonymous accounts through the Google
// Identity Toolkit, the REST counterpart of the Firebase client SDK's
// anonymous sign-in.
type IdentityToolkitSigner struct {
	service *identitytoolkit.Service
}

// NewIdentityToolkitSigner creates a signer authenticated by the project's
// web API key
func NewIdentityToolkitSigner(ctx context.Context, apiKey string) (*IdentityToolkitSigner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Firebase web API key not provided")
	}
	service, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error initializing identity toolkit service: %w", err)
	}
	return &IdentityToolkitSigner{service: service}, nil
}

// SignUpAnonymous creates a new anonymous account and returns its id. An
// empty signup request yields an anonymous user.
func (s *IdentityToolkitSigner) SignUpAnonymous(ctx context.Context) (string, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{}
	resp, err := s.service.Relyingparty.SignupNewUser(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("identity toolkit signup failed: %w", err)
	}
	if resp.LocalId == "" {
		return "", fmt.Errorf("identity toolkit returned an empty account id")
	}
	return resp.LocalId, nil
}

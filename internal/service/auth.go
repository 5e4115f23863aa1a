package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider  ports.AuthProvider
	Directory ports.Directory // optional, nil disables signup confirmation
}

// AuthService orchestrates the login flow. Tokens issued by the provider are
// handed back to the HTTP layer, which writes them into cookies; nothing is
// persisted server-side.
type AuthService struct {
	provider  ports.AuthProvider
	directory ports.Directory
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider:  opts.Provider,
		directory: opts.Directory,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		redirectURL = "/"
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin completes an authentication flow by exchanging the code for
// the provider token set.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*ports.TokenSet, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	tokens, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	return &tokens, nil
}

// ConfirmSignup assigns the default role to a freshly confirmed account so
// it can use the user-tier endpoints without operator intervention.
func (s *AuthService) ConfirmSignup(ctx context.Context, username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if s.directory == nil {
		return errors.New("signup confirmation is not configured")
	}
	if err := s.directory.AssignDefaultRole(ctx, username); err != nil {
		return fmt.Errorf("assign default role: %w", err)
	}
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var ErrInvalidGoogleToken = errors.New("invalid google token")

// GoogleIdentity is what a verified Google ID token tells us about the caller.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks ID tokens against Google's public keys with the
// OAuth client id as audience.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	if credential == "" {
		return nil, ErrInvalidGoogleToken
	}

	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if payload.Subject == "" || email == "" {
		return nil, ErrInvalidGoogleToken
	}
	name, _ := payload.Claims["name"].(string)

	return &GoogleIdentity{
		Subject: payload.Subject,
		Email:   email,
		Name:    name,
	}, nil
}

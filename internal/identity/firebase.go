package identity

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initialises the Admin SDK from a base64-encoded service
// account JSON bundle.
func NewFirebaseVerifier(ctx context.Context, serviceKeyB64 string) (*FirebaseVerifier, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(serviceKeyB64))
	if err != nil {
		return nil, fmt.Errorf("decode service key: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := decoded.Claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return Principal{}, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}
	return Principal{UID: decoded.UID, Email: strings.ToLower(email)}, nil
}

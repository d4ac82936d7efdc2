package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

// Provider authenticates reviewers against an external identity service.
// Errors are *apperrors.Error of KindAuth carrying a generic reason.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context, userID string) error
}

// userDirectory is the part of the Firebase Admin auth client we use.
type userDirectory interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseProvider verifies passwords with the Identity Toolkit REST API and
// reads profile and custom claims through the Admin SDK.
type FirebaseProvider struct {
	toolkit *identitytoolkit.Service
	users   userDirectory
}

// InitFirebase initializes the Firebase Admin SDK and returns the Auth client
func InitFirebase(ctx context.Context, credentialsPath string) (*auth.Client, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %v", err)
	}

	return client, nil
}

func NewFirebaseProvider(ctx context.Context, credentialsPath, apiKey string) (*FirebaseProvider, error) {
	if apiKey == "" {
		return nil, errors.New("firebase web API key is required")
	}
	users, err := InitFirebase(ctx, credentialsPath)
	if err != nil {
		return nil, err
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating identity toolkit client: %v", err)
	}
	return &FirebaseProvider{toolkit: toolkit, users: users}, nil
}

func newFirebaseProvider(toolkit *identitytoolkit.Service, users userDirectory) *FirebaseProvider {
	return &FirebaseProvider{toolkit: toolkit, users: users}
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapProviderError(err)
	}

	record, err := p.users.GetUser(ctx, resp.LocalId)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, apperrors.Auth(apperrors.InvalidCredentials, err)
		}
		return nil, mapProviderError(err)
	}
	if record.Disabled {
		return nil, apperrors.Auth(apperrors.InvalidCredentials, errors.New("user disabled"))
	}

	return userFromRecord(record, resp.Email), nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context, userID string) error {
	if err := p.users.RevokeRefreshTokens(ctx, userID); err != nil {
		return mapProviderError(err)
	}
	return nil
}

func userFromRecord(record *auth.UserRecord, fallbackEmail string) *User {
	user := &User{Role: RoleAuthority}
	if record.UserInfo != nil {
		user.ID = record.UID
		user.Email = record.Email
		user.Name = record.DisplayName
	}
	if user.Email == "" {
		user.Email = fallbackEmail
	}
	if role, ok := record.CustomClaims["role"].(string); ok && Role(role) == RoleAdmin {
		user.Role = RoleAdmin
	}
	if dept, ok := record.CustomClaims["department"].(string); ok {
		user.Department = dept
	}
	return user
}

// Identity Toolkit reports bad credentials through these messages.
var invalidCredentialMessages = []string{
	"INVALID_PASSWORD",
	"EMAIL_NOT_FOUND",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
	"MISSING_PASSWORD",
}

// mapProviderError reduces a provider failure to a generic reason. The raw
// error is kept for logging only.
func mapProviderError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, m := range invalidCredentialMessages {
			if strings.HasPrefix(gerr.Message, m) {
				return apperrors.Auth(apperrors.InvalidCredentials, err)
			}
		}
		if gerr.Code >= http.StatusInternalServerError {
			return apperrors.Auth(apperrors.NetworkUnavailable, err)
		}
		return apperrors.Auth(apperrors.Unknown, err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Auth(apperrors.NetworkUnavailable, err)
	}
	return apperrors.Auth(apperrors.Unknown, err)
}

// DisabledProvider rejects every sign-in. Used when Firebase is not configured
// outside production.
type DisabledProvider struct{}

func (DisabledProvider) SignIn(context.Context, string, string) (*User, error) {
	return nil, apperrors.Auth(apperrors.Unknown, errors.New("identity provider not configured"))
}

func (DisabledProvider) SignOut(context.Context, string) error {
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"retailtracker/internal/core"
	"retailtracker/internal/store"
)

var (
	ErrEmptyEmail    = errors.New("email is required")
	ErrEmptyPassword = errors.New("password is required")
)

// DemoUserID derives a stable user id from an email address.
func DemoUserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("retailtracker:"+email)).String()
}

// DemoLogin accepts any non-empty credentials and upserts the matching user.
// It exists for development setups without an identity provider.
func DemoLogin(ctx context.Context, users store.UserStore, email, password string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	verr := &core.ValidationError{}
	if email == "" {
		verr.Add("email", ErrEmptyEmail)
	}
	if password == "" {
		verr.Add("password", ErrEmptyPassword)
	}
	if err := verr.Err(); err != nil {
		return core.User{}, err
	}

	u, err := users.UpsertUser(ctx, core.User{
		ID:        DemoUserID(email),
		Email:     email,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		if errors.Is(err, core.ErrUnexpected) {
			return core.User{}, fmt.Errorf("demo login: %w", err)
		}
		return core.User{}, fmt.Errorf("demo login: %w: %w", core.ErrUnexpected, err)
	}
	return u, nil
}

package service

import (
	"context"
	"testing"

	"github.com/spec-kit/civic-report-service/internal/config"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/store"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

func newAuthForTest() *AuthService {
	return NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            4,
	}, store.NewMemoryUserStore())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthForTest()

	user, token, _, err := svc.Register(ctx, "Asha", "Asha@Example.com", "+911234567890", "s3cret", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleCitizen {
		t.Fatalf("Role = %q, want default citizen", user.Role)
	}
	if user.Email != "asha@example.com" {
		t.Fatalf("Email = %q, want lowercased", user.Email)
	}
	if token == "" {
		t.Fatalf("Register must return a token")
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleCitizen {
		t.Fatalf("claims = %+v", claims)
	}

	loggedIn, token, _, err := svc.Login(ctx, "ASHA@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID || token == "" {
		t.Fatalf("login returned wrong account")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthForTest()

	if _, _, _, err := svc.Register(ctx, "A", "a@example.com", "", "pw", domain.RoleAdmin); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, _, err := svc.Register(ctx, "B", "a@example.com", "", "pw", "")
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("duplicate email: %v, want CONFLICT", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthForTest()
	if _, _, _, err := svc.Register(ctx, "A", "a@example.com", "", "right", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "a@example.com", "wrong")
	if apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("bad password: %v, want UNAUTHORIZED", err)
	}

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	if apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("unknown email: %v, want UNAUTHORIZED", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthForTest()

	_, _, _, err := svc.Register(ctx, "A", "", "", "pw", "")
	if apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("missing email: %v, want VALIDATION_FAILED", err)
	}

	_, _, _, err = svc.Register(ctx, "A", "a@example.com", "", "pw", "superuser")
	if apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("unknown role: %v, want VALIDATION_FAILED", err)
	}
}

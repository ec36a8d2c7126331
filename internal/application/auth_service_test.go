package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/infrastructure/memory"
	"github.com/bloghive/bloghive-api/pkg/helpers"
	"github.com/bloghive/bloghive-api/pkg/mailer"
)

type fakePublisher struct {
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var job mailer.EmailJob
	if err := json.Unmarshal(b, &job); err != nil {
		return err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func newAuthService(store *memory.Store) (*AuthService, *fakePublisher) {
	pub := &fakePublisher{}
	return &AuthService{
		Users:         store,
		Tokens:        store,
		JWT:           helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour),
		Pub:           pub,
		ResetTokenTTL: time.Hour,
		ResetURL:      "http://localhost/reset-password",
		MailEnabled:   true,
	}, pub
}

// The Auth middleware looks a session up by its user_id field; keep the
// wire shape stable.
func TestSessionJSONShape(t *testing.T) {
	sess := Session{
		UserID:    "u1",
		Username:  "alice",
		Email:     "alice@example.com",
		Role:      entity.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(sess)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["user_id"] != "u1" {
		t.Errorf("user_id = %v", m["user_id"])
	}
	if m["role"] != "user" {
		t.Errorf("role = %v", m["role"])
	}
}

func TestRegisterForcesUserRole(t *testing.T) {
	svc, pub := newAuthService(memory.NewStore())

	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != entity.RoleUser {
		t.Errorf("role = %q, want %q", u.Role, entity.RoleUser)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if len(pub.jobs) != 1 || pub.jobs[0].Template != "welcome" {
		t.Errorf("expected one welcome email job, got %+v", pub.jobs)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(memory.NewStore())
	ctx := context.Background()

	in := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in.Username = "alice2"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(memory.NewStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, pair, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected token pair")
	}

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != entity.RoleUser {
		t.Errorf("claims = %+v, want user %s role user", claims, u.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(memory.NewStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginBlockedAccount(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := store.ToggleBlock(ctx, u.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "password123"); !errors.Is(err, ErrAccountBlocked) {
		t.Errorf("err = %v, want ErrAccountBlocked", err)
	}
}

func TestRefreshRejectsBlocked(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newAuthService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh before block: %v", err)
	}

	if _, err := store.ToggleBlock(ctx, u.ID); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrAccountBlocked) {
		t.Errorf("err = %v, want ErrAccountBlocked", err)
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	store := memory.NewStore()
	svc, pub := newAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pub.jobs = nil

	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if len(pub.jobs) != 1 || pub.jobs[0].Template != "reset_password" {
		t.Fatalf("expected one reset email job, got %+v", pub.jobs)
	}

	resetURL, _ := pub.jobs[0].Data["ResetURL"].(string)
	token := resetURL[len("http://localhost/reset-password/"):]
	if token == "" {
		t.Fatal("no token in reset url")
	}

	if err := svc.ResetPassword(ctx, token, "newpassword1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "newpassword1"); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	// Token is single use.
	if err := svc.ResetPassword(ctx, token, "another123"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("second reset err = %v, want ErrInvalidResetToken", err)
	}
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	svc, pub := newAuthService(memory.NewStore())
	if err := svc.ForgotPassword(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if len(pub.jobs) != 0 {
		t.Errorf("expected no email jobs, got %+v", pub.jobs)
	}
}

func TestResetPasswordBadToken(t *testing.T) {
	svc, _ := newAuthService(memory.NewStore())
	if err := svc.ResetPassword(context.Background(), "bogus", "newpassword1"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("err = %v, want ErrInvalidResetToken", err)
	}
}

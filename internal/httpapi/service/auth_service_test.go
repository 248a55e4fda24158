package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"reviewhub/database"
	"reviewhub/internal/apperr"
	"reviewhub/internal/auth"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/pkg/logger"
)

// recordingMailer captures outbound mail so tests can read the code back.
type recordingMailer struct {
	to   []string
	body []string
	fail bool
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.fail {
		return apperr.Delivery(fmt.Errorf("smtp unreachable"))
	}
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(m.body) == 0 {
		t.Fatal("no mail was sent")
	}
	body := m.body[len(m.body)-1]
	idx := strings.LastIndex(body, ": ")
	if idx < 0 {
		t.Fatalf("unexpected mail body %q", body)
	}
	return body[idx+2:]
}

func newAuthService(t *testing.T, mail *recordingMailer) (AuthService, repository.UserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	codes := auth.NewCodeGenerator("test-confirmation-secret")
	tokens := auth.NewTokenIssuer("test-jwt-secret", time.Hour)
	return NewAuthService(userRepo, codes, tokens, mail, log), userRepo
}

func TestSignupThenToken(t *testing.T) {
	mail := &recordingMailer{}
	svc, _ := newAuthService(t, mail)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, []string{"alice@example.com"}, mail.to)

	token, err := svc.IssueToken(ctx, "alice", mail.lastCode(t))
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestSignup_ReservedUsername(t *testing.T) {
	svc, _ := newAuthService(t, &recordingMailer{})

	_, err := svc.Signup(context.Background(), "me", "me@example.com")
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "username")
	}
}

func TestSignup_ResendSamePair(t *testing.T) {
	mail := &recordingMailer{}
	svc, _ := newAuthService(t, mail)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)
	_, err = svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, mail.body, 2)
}

func TestSignup_UsernameTakenByOtherEmail(t *testing.T) {
	svc, _ := newAuthService(t, &recordingMailer{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "other@example.com")
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindConflict, ae.Kind)
		assert.Contains(t, ae.Fields, "username")
	}
}

func TestSignup_EmailTakenByOtherUsername(t *testing.T) {
	svc, _ := newAuthService(t, &recordingMailer{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)

	_, err = svc.Signup(ctx, "bob", "alice@example.com")
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindConflict, ae.Kind)
		assert.Contains(t, ae.Fields, "email")
	}
}

func TestSignup_DeliveryFailureKeepsUser(t *testing.T) {
	mail := &recordingMailer{fail: true}
	svc, userRepo := newAuthService(t, mail)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.Error(t, err)
	assert.NotNil(t, user)

	// The record survives so a later signup retry can resend a code.
	stored, err := userRepo.FindByUsername(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
}

func TestIssueToken_CodeIsSingleUse(t *testing.T) {
	mail := &recordingMailer{}
	svc, _ := newAuthService(t, mail)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)
	code := mail.lastCode(t)

	_, err = svc.IssueToken(ctx, "alice", code)
	assert.NoError(t, err)

	// The exchange bumped last_login, so the same code no longer verifies.
	_, err = svc.IssueToken(ctx, "alice", code)
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindInvalidCredentials, ae.Kind)
	}
}

func TestIssueToken_UnknownUser(t *testing.T) {
	svc, _ := newAuthService(t, &recordingMailer{})

	_, err := svc.IssueToken(context.Background(), "ghost", "0-abc")
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindNotFound, ae.Kind)
	}
}

func TestIssueToken_WrongCode(t *testing.T) {
	mail := &recordingMailer{}
	svc, _ := newAuthService(t, mail)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com")
	assert.NoError(t, err)

	_, err = svc.IssueToken(ctx, "alice", "0-definitelywrong")
	ae := apperr.As(err)
	if assert.NotNil(t, ae) {
		assert.Equal(t, apperr.KindInvalidCredentials, ae.Kind)
	}
}

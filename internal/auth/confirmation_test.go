package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reviewhub/internal/httpapi/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
	}
}

func TestIssueCode_RoundTrip(t *testing.T) {
	gen := NewCodeGenerator("test-secret")
	user := testUser()

	code := gen.IssueCode(user)
	assert.NotEmpty(t, code)
	assert.True(t, gen.VerifyCode(user, code))
}

func TestVerifyCode_WrongSecret(t *testing.T) {
	user := testUser()
	code := NewCodeGenerator("secret-a").IssueCode(user)

	assert.False(t, NewCodeGenerator("secret-b").VerifyCode(user, code))
}

func TestVerifyCode_WrongUser(t *testing.T) {
	gen := NewCodeGenerator("test-secret")
	code := gen.IssueCode(testUser())

	other := testUser()
	other.ID = "user-456"
	assert.False(t, gen.VerifyCode(other, code))
}

func TestVerifyCode_Malformed(t *testing.T) {
	gen := NewCodeGenerator("test-secret")
	user := testUser()

	assert.False(t, gen.VerifyCode(user, ""))
	assert.False(t, gen.VerifyCode(user, "nodash"))
	assert.False(t, gen.VerifyCode(user, "!!-abcdef"))
	assert.False(t, gen.VerifyCode(user, "-abcdef"))
}

func TestVerifyCode_InvalidatedByLogin(t *testing.T) {
	gen := NewCodeGenerator("test-secret")
	user := testUser()

	code := gen.IssueCode(user)
	assert.True(t, gen.VerifyCode(user, code))

	// A token exchange bumps last_login; old codes must stop working.
	now := time.Now().UTC()
	user.LastLogin = &now
	assert.False(t, gen.VerifyCode(user, code))
}

func TestVerifyCode_InvalidatedByPasswordChange(t *testing.T) {
	gen := NewCodeGenerator("test-secret")
	user := testUser()
	user.Password = "old-hash"

	code := gen.IssueCode(user)
	assert.True(t, gen.VerifyCode(user, code))

	user.Password = "new-hash"
	assert.False(t, gen.VerifyCode(user, code))
}

func TestVerifyCode_Expiry(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := NewCodeGenerator("test-secret")
	gen.now = func() time.Time { return issued }

	user := testUser()
	code := gen.IssueCode(user)

	// Still valid right at the age limit.
	gen.now = func() time.Time { return issued.Add(MaxAgeBuckets * time.Hour) }
	assert.True(t, gen.VerifyCode(user, code))

	// One bucket past the limit it is dead.
	gen.now = func() time.Time { return issued.Add((MaxAgeBuckets + 1) * time.Hour) }
	assert.False(t, gen.VerifyCode(user, code))
}

func TestVerifyCode_SurvivesSubSecondTruncation(t *testing.T) {
	gen := NewCodeGenerator("test-secret")
	login := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	user := testUser()
	user.LastLogin = &login
	code := gen.IssueCode(user)

	// The storage backend may drop fractional seconds on the way back.
	stored := login.Truncate(time.Second)
	user.LastLogin = &stored
	assert.True(t, gen.VerifyCode(user, code))
}

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/httpapi/models"
)

const (
	// bucketSize is the granularity of the code's time component.
	bucketSize = time.Hour
	// MaxAgeBuckets bounds how many buckets old a code may be.
	MaxAgeBuckets = 24
	// digestLen is the number of hex digits kept from the HMAC.
	digestLen = 20
)

// CodeGenerator derives confirmation codes from user state. The digest
// covers the password hash and last login, so a successful token exchange
// (which clears the password and bumps last_login) invalidates every code
// issued before it without any code ever being stored.
type CodeGenerator struct {
	secret []byte
	now    func() time.Time
}

func NewCodeGenerator(secret string) *CodeGenerator {
	return &CodeGenerator{secret: []byte(secret), now: time.Now}
}

// IssueCode returns a code of the form base36(bucket) + "-" + digest.
func (g *CodeGenerator) IssueCode(user *models.User) string {
	bucket := g.currentBucket()
	return strconv.FormatInt(bucket, 36) + "-" + g.digest(user, bucket)
}

// VerifyCode recomputes the digest for the code's own time bucket and
// compares in constant time, then checks the bucket against MaxAgeBuckets.
func (g *CodeGenerator) VerifyCode(user *models.User, code string) bool {
	prefix, digest, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	bucket, err := strconv.ParseInt(prefix, 36, 64)
	if err != nil || bucket < 0 {
		return false
	}
	expected := g.digest(user, bucket)
	if !hmac.Equal([]byte(expected), []byte(digest)) {
		return false
	}
	if g.currentBucket()-bucket > MaxAgeBuckets {
		return false
	}
	return true
}

func (g *CodeGenerator) currentBucket() int64 {
	return g.now().Unix() / int64(bucketSize/time.Second)
}

func (g *CodeGenerator) digest(user *models.User, bucket int64) string {
	// Last login is truncated to whole seconds so codes survive storage
	// backends that drop sub-second precision.
	login := ""
	if user.LastLogin != nil {
		login = user.LastLogin.UTC().Truncate(time.Second).Format(time.RFC3339)
	}
	password := user.Password
	if password == "" {
		password = "password"
	}
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "%s%s%s%d", user.ID, password, login, bucket)
	return hex.EncodeToString(mac.Sum(nil))[:digestLen]
}

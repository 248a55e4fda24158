package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ReservedUsername is refused at signup and user administration; it would
// shadow the /users/me route.
const ReservedUsername = "me"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type User struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string     `gorm:"uniqueIndex;not null;size:150" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null;size:254" json:"email"`
	Password  string     `gorm:"column:password_hash" json:"-"` // empty until set by an admin
	Role      string     `gorm:"default:'user';not null;size:20" json:"role"`
	Bio       string     `gorm:"type:text" json:"bio"`
	FirstName string     `gorm:"size:150" json:"first_name"`
	LastName  string     `gorm:"size:150" json:"last_name"`
	IsStaff   bool       `gorm:"not null;default:false" json:"-"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

// SetRole updates the role and recomputes the derived staff flag in the
// same step, so the two can never go out of sync.
func (user *User) SetRole(role string) error {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	user.Role = role
	user.IsStaff = role == RoleAdmin
	return nil
}

func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin
}

// ValidateUsername enforces the username character set and the reserved
// value.
func ValidateUsername(username string) error {
	if username == ReservedUsername {
		return fmt.Errorf("username %q is reserved", ReservedUsername)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may only contain letters, digits and @/./+/-/_")
	}
	return nil
}

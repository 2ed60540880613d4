package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model for the rental marketplace
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string     `bun:"password_hash,notnull" json:"-"`
	FullName          string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	Role              UserRole   `bun:"role,notnull" json:"role,omitempty"`
	IsVerifiedAgent   bool       `bun:"is_verified_agent" json:"is_verified_agent"`
	ProfilePictureURL string     `bun:"profile_picture_url" json:"profile_picture_url,omitempty"`
	Phone             string     `bun:"phone_number" json:"phone_number,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

var _ Identity = (*User)(nil)

// GetID implements Identity
func (u *User) GetID() string { return u.ID.String() }

// GetEmail implements Identity
func (u *User) GetEmail() string { return u.Email }

// GetRole implements Identity
func (u *User) GetRole() string { return string(u.Role) }

// PasswordResetToken is a single use, time limited secret that
// authorizes exactly one password change for its owning account.
// Spent tokens are kept around as an audit trail, they are never
// physically deleted.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Secret        string     `bun:"token,notnull,unique" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Used          bool       `bun:"used,notnull,default:false" json:"used"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the token is past its expiry at the given instant.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

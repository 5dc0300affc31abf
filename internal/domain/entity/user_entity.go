package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID                 bson.ObjectID `bson:"_id,omitempty"`
	FullName           string        `bson:"full_name"`
	Email              string        `bson:"email"`
	Password           string        `bson:"password"`
	Verified           bool          `bson:"verified"`
	VerificationCode   string        `bson:"verification_code"`
	ResetCode          string        `bson:"reset_code,omitempty"`
	ResetCodeExpiresAt *time.Time    `bson:"reset_code_expires_at,omitempty"`
	ImageURL           string        `bson:"img,omitempty"`
	CreatedAt          time.Time     `bson:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at"`
}

// ResetCodeValid reports whether code matches an unexpired reset code.
func (u *User) ResetCodeValid(code string, now time.Time) bool {
	if u.ResetCode == "" || u.ResetCode != code || u.ResetCodeExpiresAt == nil {
		return false
	}
	return now.Before(*u.ResetCodeExpiresAt)
}

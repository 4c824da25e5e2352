package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a credential record. The password hash and the verification code are
// never serialized to JSON; they only travel through bson.
type User struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                   string             `bson:"name" json:"name"`
	Email                  string             `bson:"email" json:"email"`
	PasswordHash           string             `bson:"password_hash" json:"-"`
	EmailVerified          bool               `bson:"email_verified" json:"emailVerified"`
	VerificationCode       string             `bson:"verification_code" json:"-"`
	VerificationCodeExpiry *time.Time         `bson:"verification_code_expiry" json:"-"`
	ProfilePicture         string             `bson:"profile_picture" json:"profilePicture,omitempty"`
	CreatedAt              time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the shape returned to clients after login and on /me.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}

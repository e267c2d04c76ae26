package domain

import (
	"strings"
	"time"
)

// Account is a registered email/password identity.
// EmailVerifiedAt stays nil until the signup code is confirmed; LockoutUntil
// is nil when the account is not locked.
type Account struct {
	AccountID        string     `json:"id" dynamodbav:"account_id"`
	Email            string     `json:"email" dynamodbav:"email"`
	PasswordHash     string     `json:"-" dynamodbav:"password_hash"`
	EmailVerifiedAt  *time.Time `json:"emailVerifiedAt,omitempty" dynamodbav:"email_verified_at"`
	FailedLoginCount int        `json:"-" dynamodbav:"failed_login_count"`
	LockoutUntil     *time.Time `json:"-" dynamodbav:"lockout_until"`
	CreatedAt        time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

// Verified reports whether the account confirmed its email address.
func (a *Account) Verified() bool { return a.EmailVerifiedAt != nil }

// LockedAt reports whether a lockout is still in force at now.
func (a *Account) LockedAt(now time.Time) bool {
	return a.LockoutUntil != nil && now.Before(*a.LockoutUntil)
}

// NormalizeEmail is the canonical form under which accounts are stored and
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the minimal public view of an authenticated account.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

package domain

import "time"

// VerificationCode stores the bcrypt hash of a 6-digit signup code.
// PK: account_id, SK: code_id (ULID, so the newest record sorts last).
type VerificationCode struct {
	AccountID      string     `json:"account_id" dynamodbav:"account_id"`
	CodeID         string     `json:"code_id" dynamodbav:"code_id"`
	CodeHash       string     `json:"-" dynamodbav:"code_hash"`
	ExpiresAt      time.Time  `json:"expires_at" dynamodbav:"expires_at"`
	FailedAttempts int        `json:"failed_attempts" dynamodbav:"failed_attempts"`
	LastAttemptAt  *time.Time `json:"last_attempt_at" dynamodbav:"last_attempt_at"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
}

// ExpiredAt reports whether the code can no longer be redeemed at now.
func (v *VerificationCode) ExpiredAt(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

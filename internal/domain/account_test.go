package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.Com\t"))
}

func TestAccount_LockedAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(2 * time.Minute)
	a := &Account{LockoutUntil: &until}

	assert.True(t, a.LockedAt(now))
	assert.False(t, a.LockedAt(until))
	assert.False(t, (&Account{}).LockedAt(now))
}

func TestVerificationCode_ExpiredAt(t *testing.T) {
	exp := time.Date(2025, 3, 1, 12, 15, 0, 0, time.UTC)
	v := &VerificationCode{ExpiresAt: exp}

	assert.False(t, v.ExpiredAt(exp))
	assert.True(t, v.ExpiredAt(exp.Add(time.Millisecond)))
}

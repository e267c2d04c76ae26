package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/fawziabuhussin/task-manager-api/internal/pkg/id"
	pkgtoken "github.com/fawziabuhussin/task-manager-api/internal/pkg/token"
	"github.com/sirupsen/logrus"
)

const (
	codeDigits = 6
	codeTTL    = 15 * time.Minute

	// A code record refuses comparisons once it has this many failures and
	// the last attempt happened within attemptWindow.
	maxCodeAttempts = 5
	attemptWindow   = 60 * time.Second
)

// Update field names shared with the stores.
const (
	fieldEmailVerifiedAt = "email_verified_at"
	fieldUpdatedAt       = "updated_at"
	fieldFailedAttempts  = "failed_attempts"
	fieldLastAttemptAt   = "last_attempt_at"
)

const (
	verificationSubject = "Your verification code"
	verificationBody    = "Your code is: %s"
)

// AccountStore is the slice of the account repository the flow needs.
type AccountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

// CodeStore keeps verification codes; Latest returns the newest per account.
type CodeStore interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	Latest(ctx context.Context, accountID string) (*domain.VerificationCode, error)
	Update(ctx context.Context, accountID, codeID string, updates map[string]interface{}) error
}

type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) error
	Verify(ctx context.Context, req domain.VerifyRequest) error
	ResendCode(ctx context.Context, req domain.ResendCodeRequest) error
}

// ServiceDeps wires the collaborators. Now and NewCode default to the wall
// clock and a crypto/rand 6-digit generator when nil.
type ServiceDeps struct {
	Accounts AccountStore
	Codes    CodeStore
	Hasher   Hasher
	Mailer   Mailer
	Log      logrus.FieldLogger
	Now      func() time.Time
	NewCode  func() (string, error)
}

type service struct {
	accounts AccountStore
	codes    CodeStore
	hasher   Hasher
	mailer   Mailer
	log      logrus.FieldLogger
	now      func() time.Time
	newCode  func() (string, error)
}

func NewService(d ServiceDeps) Service {
	s := &service{
		accounts: d.Accounts,
		codes:    d.Codes,
		hasher:   d.Hasher,
		mailer:   d.Mailer,
		log:      d.Log,
		now:      d.Now,
		newCode:  d.NewCode,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = func() (string, error) { return pkgtoken.NewNumericCode(codeDigits) }
	}
	return s
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) error {
	email := domain.NormalizeEmail(req.Email)
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("Email already exists: %w", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	a := &domain.Account{
		AccountID:    id.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return err
	}
	s.log.WithField("account_id", a.AccountID).Info("account created")
	return s.issueCode(ctx, a)
}

func (s *service) Verify(ctx context.Context, req domain.VerifyRequest) error {
	a, err := s.lookup(ctx, req.Email)
	if err != nil {
		return err
	}
	rec, err := s.codes.Latest(ctx, a.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("No verification code. Signup again.: %w", domain.ErrBadRequest)
	}
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if rec.ExpiredAt(now) {
		return fmt.Errorf("Code expired: %w", domain.ErrBadRequest)
	}
	if rec.LastAttemptAt != nil && now.Sub(*rec.LastAttemptAt) < attemptWindow && rec.FailedAttempts >= maxCodeAttempts {
		return fmt.Errorf("Too many attempts. Try again later.: %w", domain.ErrTooManyAttempts)
	}

	ok := s.hasher.Verify(req.Code, rec.CodeHash)
	failed := 0
	if !ok {
		failed = rec.FailedAttempts + 1
	}
	if err := s.codes.Update(ctx, a.AccountID, rec.CodeID, map[string]interface{}{
		fieldFailedAttempts: failed,
		fieldLastAttemptAt:  now,
	}); err != nil {
		return err
	}
	if !ok {
		s.log.WithFields(logrus.Fields{"account_id": a.AccountID, "failed_attempts": failed}).Info("verification code mismatch")
		return fmt.Errorf("Invalid code: %w", domain.ErrBadRequest)
	}

	if err := s.accounts.Update(ctx, a.AccountID, map[string]interface{}{
		fieldEmailVerifiedAt: now,
		fieldUpdatedAt:       now,
	}); err != nil {
		return err
	}
	s.log.WithField("account_id", a.AccountID).Info("email verified")
	return nil
}

func (s *service) ResendCode(ctx context.Context, req domain.ResendCodeRequest) error {
	a, err := s.lookup(ctx, req.Email)
	if err != nil {
		return err
	}
	if a.Verified() {
		return fmt.Errorf("Email already verified: %w", domain.ErrConflict)
	}
	return s.issueCode(ctx, a)
}

func (s *service) lookup(ctx context.Context, email string) (*domain.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("User not found: %w", domain.ErrNotFound)
	}
	return a, err
}

// issueCode stores a fresh code record, superseding any earlier one, and
// mails the plaintext code to the account address.
func (s *service) issueCode(ctx context.Context, a *domain.Account) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	codeHash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	rec := &domain.VerificationCode{
		AccountID: a.AccountID,
		CodeID:    id.New(),
		CodeHash:  codeHash,
		ExpiresAt: now.Add(codeTTL),
		CreatedAt: now,
	}
	if err := s.codes.Put(ctx, rec); err != nil {
		return err
	}
	if err := s.mailer.SendEmail(ctx, a.Email, verificationSubject, fmt.Sprintf(verificationBody, code)); err != nil {
		s.log.WithError(err).WithField("account_id", a.AccountID).Error("could not deliver verification code")
		return err
	}
	return nil
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	jwtinfra "github.com/fawziabuhussin/task-manager-api/internal/infrastructure/jwt"
	pkgtoken "github.com/fawziabuhussin/task-manager-api/internal/pkg/token"
	"github.com/sirupsen/logrus"
)

const (
	maxFailedLogins = 3
	lockoutDuration = 2 * time.Minute

	// Millisecond UTC timestamp used in lockout messages.
	lockoutLayout = "2006-01-02T15:04:05.000Z07:00"
)

const (
	fieldFailedLoginCount = "failed_login_count"
	fieldLockoutUntil     = "lockout_until"
	fieldUpdatedAt        = "updated_at"
)

type AccountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
}

type Hasher interface {
	Verify(plain, digest string) bool
}

type TokenProvider interface {
	Sign(userID, email string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

// LoginResult carries the credentials minted by a successful login.
type LoginResult struct {
	AccessToken string
	CSRFToken   string
	Identity    domain.Identity
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	// Resolve reports the identity behind an access token. It never fails:
	// any problem yields (nil, false).
	Resolve(ctx context.Context, accessToken string) (*domain.Identity, bool)
	IssueCSRF() (string, error)
}

type ServiceDeps struct {
	Accounts AccountStore
	Hasher   Hasher
	Tokens   TokenProvider
	Log      logrus.FieldLogger
	Now      func() time.Time
	NewCSRF  func() (string, error)
}

type service struct {
	accounts AccountStore
	hasher   Hasher
	tokens   TokenProvider
	log      logrus.FieldLogger
	now      func() time.Time
	newCSRF  func() (string, error)
}

func NewService(d ServiceDeps) Service {
	s := &service{
		accounts: d.Accounts,
		hasher:   d.Hasher,
		tokens:   d.Tokens,
		log:      d.Log,
		now:      d.Now,
		newCSRF:  d.NewCSRF,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCSRF == nil {
		s.newCSRF = pkgtoken.NewCSRFToken
	}
	return s
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	a, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if a.LockedAt(now) {
		return nil, fmt.Errorf("Account locked. Try after %s: %w",
			a.LockoutUntil.UTC().Format(lockoutLayout), domain.ErrTooManyAttempts)
	}
	if !a.Verified() {
		return nil, fmt.Errorf("Email not verified.: %w", domain.ErrForbidden)
	}

	if !s.hasher.Verify(req.Password, a.PasswordHash) {
		return nil, s.recordFailure(ctx, a, now)
	}

	if err := s.accounts.Update(ctx, a.AccountID, map[string]interface{}{
		fieldFailedLoginCount: 0,
		fieldLockoutUntil:     (*time.Time)(nil),
		fieldUpdatedAt:        now,
	}); err != nil {
		return nil, err
	}
	access, err := s.tokens.Sign(a.AccountID, a.Email)
	if err != nil {
		return nil, err
	}
	csrf, err := s.newCSRF()
	if err != nil {
		return nil, err
	}
	s.log.WithField("account_id", a.AccountID).Info("login succeeded")
	return &LoginResult{
		AccessToken: access,
		CSRFToken:   csrf,
		Identity:    domain.Identity{ID: a.AccountID, Email: a.Email},
	}, nil
}

// recordFailure persists a failed password attempt and returns the error to
// surface. The third consecutive failure locks the account and resets the
// counter.
func (s *service) recordFailure(ctx context.Context, a *domain.Account, now time.Time) error {
	failed := a.FailedLoginCount + 1
	updates := map[string]interface{}{
		fieldFailedLoginCount: failed,
		fieldLockoutUntil:     (*time.Time)(nil),
		fieldUpdatedAt:        now,
	}
	var lockoutUntil time.Time
	if failed >= maxFailedLogins {
		lockoutUntil = now.Add(lockoutDuration)
		updates[fieldFailedLoginCount] = 0
		updates[fieldLockoutUntil] = lockoutUntil
	}
	if err := s.accounts.Update(ctx, a.AccountID, updates); err != nil {
		return err
	}
	if lockoutUntil.IsZero() {
		return fmt.Errorf("Invalid credentials: %w", domain.ErrUnauthorized)
	}
	s.log.WithFields(logrus.Fields{"account_id": a.AccountID, "until": lockoutUntil}).Warn("account locked")
	return fmt.Errorf("Too many attempts. Locked until %s: %w",
		lockoutUntil.Format(lockoutLayout), domain.ErrTooManyAttempts)
}

func (s *service) Resolve(ctx context.Context, accessToken string) (*domain.Identity, bool) {
	if accessToken == "" {
		return nil, false
	}
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, false
	}
	a, err := s.accounts.Get(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).WithField("account_id", claims.UserID).Error("resolve session")
		}
		return nil, false
	}
	return &domain.Identity{ID: a.AccountID, Email: a.Email}, true
}

func (s *service) IssueCSRF() (string, error) {
	return s.newCSRF()
}

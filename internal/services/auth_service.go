package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abdullaharshad/budget-tracker/internal/auth"
	"github.com/abdullaharshad/budget-tracker/internal/mailer"
	"github.com/abdullaharshad/budget-tracker/internal/models"
	"github.com/abdullaharshad/budget-tracker/internal/repository"
)

// AuthService drives the credential lifecycle: signup creates an unverified
// record with a one-time code, verify-email flips it to verified exactly once,
// and login issues a session token only for verified credentials.
type AuthService struct {
	users   repository.UserRepository
	hasher  *auth.Hasher
	tokens  *auth.TokenIssuer
	mail    mailer.Mailer
	logger  *zap.SugaredLogger
	codeTTL time.Duration
	devMode bool

	// now is swappable so expiry behavior can be tested deterministically.
	now func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenIssuer,
	mail mailer.Mailer,
	logger *zap.SugaredLogger,
	codeTTL time.Duration,
	devMode bool,
) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		mail:    mail,
		logger:  logger,
		codeTTL: codeTTL,
		devMode: devMode,
		now:     time.Now,
	}
}

// SignupResult tells the handler whether the code was delivered out-of-band.
// VerificationCode is only populated by the development fallback.
type SignupResult struct {
	Email                string
	RequiresVerification bool
	EmailDelivered       bool
	VerificationCode     string
}

// LoginResult carries the minted token and the public view of the user.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new unverified credential. Email uniqueness is enforced
// by the store's unique index; there is deliberately no pre-check, so two
// concurrent signups with the same address cannot race past each other.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*SignupResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, NewValidationError("Please provide all required fields (name, email, password)")
	}
	if ok, msg := auth.ValidatePasswordPolicy(password); !ok {
		return nil, NewValidationError(msg)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	code := auth.GenerateVerificationCode()
	expiry := auth.CodeExpiryFrom(now, s.codeTTL)

	user := &models.User{
		Name:                   name,
		Email:                  email,
		PasswordHash:           hash,
		EmailVerified:          false,
		VerificationCode:       code,
		VerificationCodeExpiry: &expiry,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	res := &SignupResult{
		Email:                user.Email,
		RequiresVerification: true,
		EmailDelivered:       s.deliverCode(ctx, user.Email, user.Name, code),
	}
	if !res.EmailDelivered && s.devMode {
		res.VerificationCode = code
	}
	return res, nil
}

// VerifyEmail transitions an unverified credential to verified. The code is
// compared as an exact string and the expiry check is strict greater-than, so
// a code submitted at the expiry instant still passes.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return NewValidationError("Please provide email and verification code")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}
	if user.VerificationCode != code {
		return ErrInvalidCode
	}
	if user.VerificationCodeExpiry != nil && s.now().After(*user.VerificationCodeExpiry) {
		return ErrCodeExpired
	}

	user.EmailVerified = true
	user.VerificationCode = ""
	user.VerificationCodeExpiry = nil
	return s.users.Update(ctx, user)
}

// ResendCode issues a fresh code and expiry, invalidating any prior code.
func (s *AuthService) ResendCode(ctx context.Context, email string) (*SignupResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, NewValidationError("Please provide email")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	code := auth.GenerateVerificationCode()
	expiry := auth.CodeExpiryFrom(s.now(), s.codeTTL)
	user.VerificationCode = code
	user.VerificationCodeExpiry = &expiry
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	res := &SignupResult{
		Email:                user.Email,
		RequiresVerification: true,
		EmailDelivered:       s.deliverCode(ctx, user.Email, user.Name, code),
	}
	if !res.EmailDelivered && s.devMode {
		res.VerificationCode = code
	}
	return res, nil
}

// Login authenticates a verified credential and mints a session token.
// Unknown email and wrong password return the same generic error so callers
// cannot probe which addresses are registered. The verified-state check runs
// before the password comparison, so an unverified account always gets
// ErrEmailNotVerified regardless of the submitted password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, NewValidationError("Please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	s.logger.Infow("login successful", "email", user.Email)
	return &LoginResult{Token: token, User: user.Public()}, nil
}

// UpdateName changes the display name of an existing credential.
func (s *AuthService) UpdateName(ctx context.Context, userID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("Name is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return NewValidationError("Current password and new password are required")
	}
	if ok, msg := auth.ValidatePasswordPolicy(newPassword); !ok {
		return NewValidationError(msg)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !s.hasher.Compare(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// SetProfilePicture records the stored filename and returns the previous one
// so the caller can remove the stale file from disk.
func (s *AuthService) SetProfilePicture(ctx context.Context, userID, filename string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	old := user.ProfilePicture
	user.ProfilePicture = filename
	if err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	return old, nil
}

// GetUser loads a credential by id for profile reads.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// deliverCode attempts out-of-band delivery. Failure is soft: the code stays
// valid, nothing is retried, and the caller decides what to tell the client.
func (s *AuthService) deliverCode(ctx context.Context, email, name, code string) bool {
	if s.mail == nil || !s.mail.IsConfigured() {
		s.logger.Warnw("email not configured, verification code not delivered", "email", email)
		s.logger.Debugw("verification code", "email", email, "code", code)
		return false
	}
	if err := s.mail.SendVerificationCode(ctx, email, name, code); err != nil {
		s.logger.Errorw("failed to send verification email", "email", email, "error", err)
		return false
	}
	s.logger.Infow("verification email sent", "email", email)
	return true
}

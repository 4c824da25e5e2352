package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/abdullaharshad/budget-tracker/internal/auth"
	"github.com/abdullaharshad/budget-tracker/internal/models"
	"github.com/abdullaharshad/budget-tracker/internal/repository"
)

// memUserRepo is an in-memory UserRepository with the same duplicate-email
// semantics as the Mongo implementation.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]models.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID.Hex()] = *u
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := u
	return &cp, nil
}

func (r *memUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID.Hex()]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[u.ID.Hex()] = *u
	return nil
}

type fakeMailer struct {
	configured bool
	fail       bool
	sent       []string
}

func (m *fakeMailer) IsConfigured() bool { return m.configured }

func (m *fakeMailer) SendVerificationCode(_ context.Context, toEmail, _, _ string) error {
	if m.fail {
		return assert.AnError
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

type fixture struct {
	svc   *AuthService
	repo  *memUserRepo
	mail  *fakeMailer
	clock *time.Time
}

func newFixture(t *testing.T, devMode bool, mail *fakeMailer) *fixture {
	t.Helper()
	repo := newMemUserRepo()
	hasher := auth.NewHasher(4)
	tokens := auth.NewTokenIssuer("test-secret", 7*24*time.Hour)
	svc := NewAuthService(repo, hasher, tokens, mail, zap.NewNop().Sugar(), 10*time.Minute, devMode)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &fixture{svc: svc, repo: repo, mail: mail, clock: &now}
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) signup(t *testing.T, name, email, password string) *SignupResult {
	t.Helper()
	res, err := f.svc.Signup(context.Background(), name, email, password)
	require.NoError(t, err)
	return res
}

func TestSignup_CreatesUnverifiedCredential(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	res := f.signup(t, "  Alice  ", "Alice@X.com ", "Passw0rd!")
	assert.Equal(t, "alice@x.com", res.Email)
	assert.True(t, res.RequiresVerification)

	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.False(t, user.EmailVerified)
	assert.Len(t, user.VerificationCode, 6)
	require.NotNil(t, user.VerificationCodeExpiry)
	assert.Equal(t, f.clock.Add(10*time.Minute), *user.VerificationCodeExpiry)

	// The plaintext never lands in the store.
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestSignup_MissingFields(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	for _, tc := range []struct{ name, email, password string }{
		{"", "a@x.com", "Passw0rd!"},
		{"Alice", "", "Passw0rd!"},
		{"Alice", "a@x.com", ""},
	} {
		_, err := f.svc.Signup(context.Background(), tc.name, tc.email, tc.password)
		assert.True(t, IsValidation(err), "expected validation error for %+v", tc)
	}
}

func TestSignup_WeakPassword(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	_, err := f.svc.Signup(context.Background(), "Alice", "alice@x.com", "weak")
	require.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	// Case-insensitively equal address always fails the second attempt.
	_, err := f.svc.Signup(context.Background(), "Mallory", "ALICE@X.COM", "Passw0rd!")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignup_DevFallbackReturnsCode(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{configured: false})

	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	assert.False(t, res.EmailDelivered)

	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.VerificationCode, res.VerificationCode)
}

func TestSignup_ProductionNeverReturnsCode(t *testing.T) {
	f := newFixture(t, false, &fakeMailer{configured: false})

	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	assert.False(t, res.EmailDelivered)
	assert.Empty(t, res.VerificationCode)
}

func TestSignup_DeliveryFailureIsSoft(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{configured: true, fail: true})

	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	assert.False(t, res.EmailDelivered)
	assert.NotEmpty(t, res.VerificationCode)
}

func TestSignup_DeliverySuccess(t *testing.T) {
	mail := &fakeMailer{configured: true}
	f := newFixture(t, true, mail)

	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	assert.True(t, res.EmailDelivered)
	assert.Empty(t, res.VerificationCode)
	assert.Equal(t, []string{"alice@x.com"}, mail.sent)
}

func TestVerifyEmail_Success(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	err := f.svc.VerifyEmail(context.Background(), "Alice@X.com", res.VerificationCode)
	require.NoError(t, err)

	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.Empty(t, user.VerificationCode)
	assert.Nil(t, user.VerificationCodeExpiry)

	// Verification is one-shot: a repeat with the same code now fails.
	err = f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerifyEmail_NotFound(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	err := f.svc.VerifyEmail(context.Background(), "ghost@x.com", "123456")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyEmail_WrongCode(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	wrong := "000000"
	if wrong == res.VerificationCode {
		wrong = "000001"
	}
	err := f.svc.VerifyEmail(context.Background(), "alice@x.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyEmail_ExactStringMatch(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	// Force a code with a leading zero: "12345" must not match "012345".
	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	user.VerificationCode = "012345"
	require.NoError(t, f.repo.Update(context.Background(), user))

	err = f.svc.VerifyEmail(context.Background(), "alice@x.com", "12345")
	assert.ErrorIs(t, err, ErrInvalidCode)

	err = f.svc.VerifyEmail(context.Background(), "alice@x.com", "012345")
	assert.NoError(t, err)
}

func TestVerifyEmail_Expiry(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	// Valid exactly at the expiry instant.
	f.advance(10 * time.Minute)
	err := f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode)
	assert.NoError(t, err)
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	f.advance(10*time.Minute + time.Second)
	err := f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestResendCode_InvalidatesPriorCode(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	first := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	second, err := f.svc.ResendCode(context.Background(), "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, second.VerificationCode)

	if first.VerificationCode != second.VerificationCode {
		err = f.svc.VerifyEmail(context.Background(), "alice@x.com", first.VerificationCode)
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	err = f.svc.VerifyEmail(context.Background(), "alice@x.com", second.VerificationCode)
	assert.NoError(t, err)
}

func TestResendCode_AlreadyVerified(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode))

	_, err := f.svc.ResendCode(context.Background(), "alice@x.com")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestResendCode_NotFound(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	_, err := f.svc.ResendCode(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	_, err := f.svc.Login(context.Background(), "ghost@x.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnverifiedRegardlessOfPassword(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	_, err := f.svc.Login(context.Background(), "alice@x.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = f.svc.Login(context.Background(), "alice@x.com", "totally-wrong")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode))

	_, err := f.svc.Login(context.Background(), "alice@x.com", "Wr0ngPass!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SuccessIssuesValidToken(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode))

	login, err := f.svc.Login(context.Background(), "ALICE@x.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, "Alice", login.User.Name)
	assert.Equal(t, "alice@x.com", login.User.Email)

	userID, err := f.svc.tokens.Validate(login.Token)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, userID)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode))

	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	id := user.ID.Hex()

	err = f.svc.ChangePassword(context.Background(), id, "Wr0ngPass!", "NewPassw0rd!")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = f.svc.ChangePassword(context.Background(), id, "Passw0rd!", "weak")
	assert.True(t, IsValidation(err))

	require.NoError(t, f.svc.ChangePassword(context.Background(), id, "Passw0rd!", "NewPassw0rd!"))

	_, err = f.svc.Login(context.Background(), "alice@x.com", "Passw0rd!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(context.Background(), "alice@x.com", "NewPassw0rd!")
	assert.NoError(t, err)
}

func TestUpdateName(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)

	_, err = f.svc.UpdateName(context.Background(), user.ID.Hex(), "   ")
	assert.True(t, IsValidation(err))

	updated, err := f.svc.UpdateName(context.Background(), user.ID.Hex(), "  Alice Smith ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
}

func TestSetProfilePicture(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})
	f.signup(t, "Alice", "alice@x.com", "Passw0rd!")

	user, err := f.repo.FindByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	id := user.ID.Hex()

	old, err := f.svc.SetProfilePicture(context.Background(), id, "pic-1.png")
	require.NoError(t, err)
	assert.Empty(t, old)

	old, err = f.svc.SetProfilePicture(context.Background(), id, "pic-2.png")
	require.NoError(t, err)
	assert.Equal(t, "pic-1.png", old)

	old, err = f.svc.SetProfilePicture(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, "pic-2.png", old)
}

// Full happy path: signup, verify within the window, login.
func TestSignupVerifyLoginScenario(t *testing.T) {
	f := newFixture(t, true, &fakeMailer{})

	res := f.signup(t, "Alice", "alice@x.com", "Passw0rd!")
	require.Len(t, res.VerificationCode, 6)
	assert.False(t, strings.ContainsAny(res.VerificationCode, "abcdefghijklmnopqrstuvwxyz"))

	f.advance(5 * time.Minute)
	require.NoError(t, f.svc.VerifyEmail(context.Background(), "alice@x.com", res.VerificationCode))

	login, err := f.svc.Login(context.Background(), "alice@x.com", "Passw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "Alice", login.User.Name)
	assert.Equal(t, "alice@x.com", login.User.Email)
	assert.NotEmpty(t, login.User.ID)
}

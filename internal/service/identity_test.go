package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/config"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
	"github.com/user/deadpan/internal/testutil"
)

type captureSender struct {
	codes map[string]string
}

func (s *captureSender) SendCode(_ context.Context, user *model.User, code string) error {
	s.codes[user.ID] = code
	return nil
}

func newIdentity(t *testing.T, cfg config.IdentityConfig) (*LocalIdentity, *repository.Repositories, *captureSender) {
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	sender := &captureSender{codes: map[string]string{}}
	return NewLocalIdentity(repos, cfg, sender), repos, sender
}

func register(t *testing.T, id *LocalIdentity, email string) *model.User {
	t.Helper()
	u, err := id.Register(context.Background(), RegisterInput{
		Nickname:        "Tester",
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	return u
}

func TestIdentity_Register(t *testing.T) {
	id, _, _ := newIdentity(t, config.IdentityConfig{})
	ctx := context.Background()

	u := register(t, id, "  New.User@Example.com ")
	assert.Equal(t, "new.user@example.com", u.Email)
	assert.Equal(t, u.Email, u.UserName)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Len(t, u.ID, 36)

	_, err := id.Register(ctx, RegisterInput{Nickname: "Other", Email: "new.user@example.com", Password: "secret123", ConfirmPassword: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = id.Register(ctx, RegisterInput{Nickname: "ab", Email: "not-an-email", Password: "123", ConfirmPassword: "456"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "nickname")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
	assert.Contains(t, appErr.Fields, "confirm_password")
}

func TestIdentity_SignIn(t *testing.T) {
	id, _, _ := newIdentity(t, config.IdentityConfig{})
	ctx := context.Background()
	u := register(t, id, "sign@example.com")

	res, err := id.SignIn(ctx, "SIGN@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, SignInSuccess, res.Status)
	assert.Equal(t, u.ID, res.User.ID)

	res, err = id.SignIn(ctx, "sign@example.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, SignInFailure, res.Status)
	assert.Nil(t, res.User)

	res, err = id.SignIn(ctx, "nobody@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, SignInFailure, res.Status)
}

func TestIdentity_Lockout(t *testing.T) {
	id, repos, _ := newIdentity(t, config.IdentityConfig{
		LockoutEnabled:    true,
		MaxFailedAttempts: 3,
		LockoutDuration:   5 * time.Minute,
	})
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	id.now = func() time.Time { return now }
	u := register(t, id, "lock@example.com")

	for i := 0; i < 2; i++ {
		res, err := id.SignIn(ctx, "lock@example.com", "bad")
		require.NoError(t, err)
		assert.Equal(t, SignInFailure, res.Status)
	}
	res, err := id.SignIn(ctx, "lock@example.com", "bad")
	require.NoError(t, err)
	assert.Equal(t, SignInLockedOut, res.Status)

	// 锁定期间正确密码也无法登录
	res, err = id.SignIn(ctx, "lock@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, SignInLockedOut, res.Status)

	now = now.Add(6 * time.Minute)
	res, err = id.SignIn(ctx, "lock@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, SignInSuccess, res.Status)

	stored, err := repos.User.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.AccessFailedCount)
	assert.Nil(t, stored.LockoutEnd)
}

func TestIdentity_LockoutDisabledByDefault(t *testing.T) {
	id, _, _ := newIdentity(t, config.IdentityConfig{MaxFailedAttempts: 1})
	ctx := context.Background()
	register(t, id, "free@example.com")

	for i := 0; i < 3; i++ {
		res, err := id.SignIn(ctx, "free@example.com", "bad")
		require.NoError(t, err)
		assert.Equal(t, SignInFailure, res.Status)
	}
	res, err := id.SignIn(ctx, "free@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, SignInSuccess, res.Status)
}

func TestIdentity_TwoFactor(t *testing.T) {
	id, repos, sender := newIdentity(t, config.IdentityConfig{TwoFactorCodeTTL: time.Minute})
	ctx := context.Background()
	u := register(t, id, "2fa@example.com")
	require.NoError(t, repos.User.SetTwoFactor(ctx, u.ID, true))

	res, err := id.SignIn(ctx, "2fa@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, SignInRequiresVerification, res.Status)
	code := sender.codes[u.ID]
	require.Len(t, code, 6)

	res, err = id.TwoFactorVerify(ctx, u.ID, "not-it")
	require.NoError(t, err)
	assert.Equal(t, SignInFailure, res.Status)

	res, err = id.TwoFactorVerify(ctx, u.ID, code)
	require.NoError(t, err)
	assert.Equal(t, SignInSuccess, res.Status)

	// 验证码只能用一次
	res, err = id.TwoFactorVerify(ctx, u.ID, code)
	require.NoError(t, err)
	assert.Equal(t, SignInFailure, res.Status)
}

func TestIdentity_ExternalLogin(t *testing.T) {
	id, _, _ := newIdentity(t, config.IdentityConfig{})
	ctx := context.Background()
	existing := register(t, id, "linked@example.com")

	// 同邮箱的已有账号被绑定
	res, err := id.ExternalProviderCallback(ctx, ExternalLoginInfo{Provider: "Google", ProviderKey: "g-1", Email: "Linked@example.com"})
	require.NoError(t, err)
	require.Equal(t, SignInSuccess, res.Status)
	assert.Equal(t, existing.ID, res.User.ID)

	// 新邮箱创建账号
	res, err = id.ExternalProviderCallback(ctx, ExternalLoginInfo{Provider: "Google", ProviderKey: "g-2", Email: "fresh@example.com"})
	require.NoError(t, err)
	require.Equal(t, SignInSuccess, res.Status)
	fresh := res.User
	assert.Equal(t, "fresh", fresh.Nickname)

	// 已绑定的 key 直接登录，不再看邮箱
	res, err = id.ExternalProviderCallback(ctx, ExternalLoginInfo{Provider: "Google", ProviderKey: "g-2", Email: "changed@example.com"})
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, res.User.ID)

	_, err = id.ExternalProviderCallback(ctx, ExternalLoginInfo{Provider: "Google", ProviderKey: "g-3"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIdentity_ExternalLoginRequiresTwoFactor(t *testing.T) {
	id, repos, sender := newIdentity(t, config.IdentityConfig{TwoFactorCodeTTL: time.Minute})
	ctx := context.Background()
	u := register(t, id, "guarded@example.com")
	require.NoError(t, repos.User.SetTwoFactor(ctx, u.ID, true))
	info := ExternalLoginInfo{Provider: "Google", ProviderKey: "g-1", Email: "guarded@example.com"}

	// 首次绑定
	res, err := id.ExternalProviderCallback(ctx, info)
	require.NoError(t, err)
	require.Equal(t, SignInRequiresVerification, res.Status)
	assert.Equal(t, u.ID, res.User.ID)
	first := sender.codes[u.ID]
	require.Len(t, first, 6)

	// 已绑定后再次登录
	res, err = id.ExternalProviderCallback(ctx, info)
	require.NoError(t, err)
	require.Equal(t, SignInRequiresVerification, res.Status)
	code := sender.codes[u.ID]

	res, err = id.TwoFactorVerify(ctx, u.ID, code)
	require.NoError(t, err)
	assert.Equal(t, SignInSuccess, res.Status)
}

func TestIdentity_IsInRoleAndFindUser(t *testing.T) {
	id, repos, _ := newIdentity(t, config.IdentityConfig{})
	ctx := context.Background()
	u := register(t, id, "role@example.com")

	ok, err := id.IsInRole(ctx, u.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repos.User.UpdateRole(ctx, u.ID, model.RoleAdmin))
	ok, err = id.IsInRole(ctx, u.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = id.IsInRole(ctx, "missing", model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = id.FindUser(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

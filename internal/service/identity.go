package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/config"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

// SignInStatus 登录结果状态
type SignInStatus string

const (
	SignInSuccess              SignInStatus = "success"
	SignInLockedOut            SignInStatus = "locked_out"
	SignInRequiresVerification SignInStatus = "requires_verification"
	SignInFailure              SignInStatus = "failure"
)

// SignInResult 登录结果。Failure 时 User 为空
type SignInResult struct {
	Status SignInStatus
	User   *model.User
}

// RegisterInput 注册表单
type RegisterInput struct {
	Nickname        string `json:"nickname" form:"nickname" validate:"required,min=3,max=50"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

// ExternalLoginInfo 外部登录回调得到的身份
type ExternalLoginInfo struct {
	Provider    string
	ProviderKey string
	Email       string
}

// Identity 身份认证能力
type Identity interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	TwoFactorVerify(ctx context.Context, userID, code string) (*SignInResult, error)
	ExternalProviderCallback(ctx context.Context, info ExternalLoginInfo) (*SignInResult, error)
	IsInRole(ctx context.Context, userID, role string) (bool, error)
	FindUser(ctx context.Context, userID string) (*model.User, error)
}

// CodeSender 发送两步验证码
type CodeSender interface {
	SendCode(ctx context.Context, user *model.User, code string) error
}

// LogCodeSender 把验证码写进日志，用于开发环境
type LogCodeSender struct{}

func (LogCodeSender) SendCode(_ context.Context, user *model.User, code string) error {
	logging.Info().Str("user_id", user.ID).Str("email", user.Email).Str("code", code).
		Msg("[Identity] 两步验证码")
	return nil
}

// LocalIdentity 基于本地数据库的身份实现
type LocalIdentity struct {
	repos  *repository.Repositories
	cfg    config.IdentityConfig
	sender CodeSender
	codes  *cache.Cache
	now    func() time.Time
}

var _ Identity = (*LocalIdentity)(nil)

func NewLocalIdentity(repos *repository.Repositories, cfg config.IdentityConfig, sender CodeSender) *LocalIdentity {
	if sender == nil {
		sender = LogCodeSender{}
	}
	if cfg.TwoFactorCodeTTL <= 0 {
		cfg.TwoFactorCodeTTL = 5 * time.Minute
	}
	return &LocalIdentity{
		repos:  repos,
		cfg:    cfg,
		sender: sender,
		codes:  cache.New(cfg.TwoFactorCodeTTL, 2*cfg.TwoFactorCodeTTL),
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 注册本地账号，用户名即邮箱
func (s *LocalIdentity) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	existing, err := s.repos.User.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("email is already registered")
	}

	user := &model.User{
		ID:       uuid.NewString(),
		Email:    in.Email,
		UserName: in.Email,
		Nickname: in.Nickname,
		Role:     model.RoleUser,
	}
	if err := s.repos.User.Create(ctx, user, in.Password); err != nil {
		return nil, err
	}

	logging.Info().Str("user_id", user.ID).Msg("[Identity] 新用户注册")
	return user, nil
}

// SignIn 密码登录
func (s *LocalIdentity) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.repos.User.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &SignInResult{Status: SignInFailure}, nil
	}
	if s.isLockedOut(user) {
		return &SignInResult{Status: SignInLockedOut}, nil
	}

	if !s.repos.User.CheckPassword(user, password) {
		return s.failAttempt(ctx, user)
	}

	if user.TwoFactorEnabled {
		if err := s.issueCode(ctx, user); err != nil {
			return nil, err
		}
		return &SignInResult{Status: SignInRequiresVerification, User: user}, nil
	}

	return s.succeed(ctx, user)
}

// TwoFactorVerify 校验验证码，验证码只能使用一次
func (s *LocalIdentity) TwoFactorVerify(ctx context.Context, userID, code string) (*SignInResult, error) {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &SignInResult{Status: SignInFailure}, nil
	}
	if s.isLockedOut(user) {
		return &SignInResult{Status: SignInLockedOut}, nil
	}

	expected, ok := s.codes.Get(userID)
	code = strings.TrimSpace(code)
	if !ok || subtle.ConstantTimeCompare([]byte(expected.(string)), []byte(code)) != 1 {
		return s.failAttempt(ctx, user)
	}
	s.codes.Delete(userID)

	return s.succeed(ctx, user)
}

// ExternalProviderCallback 外部登录：已绑定直接登录，否则按邮箱绑定或新建账号
func (s *LocalIdentity) ExternalProviderCallback(ctx context.Context, info ExternalLoginInfo) (*SignInResult, error) {
	if info.Provider == "" || info.ProviderKey == "" {
		return &SignInResult{Status: SignInFailure}, nil
	}

	user, err := s.repos.User.FindByLogin(ctx, info.Provider, info.ProviderKey)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return s.externalSignIn(ctx, user)
	}

	email := normalizeEmail(info.Email)
	if email == "" {
		return nil, apperrors.InvalidInput("external provider did not return an email address")
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err = tx.User.FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			nickname, _, _ := strings.Cut(email, "@")
			user = &model.User{
				ID:       uuid.NewString(),
				Email:    email,
				UserName: email,
				Nickname: nickname,
				Role:     model.RoleUser,
			}
			if err := tx.User.Create(ctx, user, ""); err != nil {
				return err
			}
		}
		return tx.User.AddLogin(ctx, user.ID, info.Provider, info.ProviderKey)
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("user_id", user.ID).Str("provider", info.Provider).Msg("[Identity] 外部登录已绑定")
	return s.externalSignIn(ctx, user)
}

// externalSignIn 外部身份已确认；开启两步验证的账号仍需验证码
func (s *LocalIdentity) externalSignIn(ctx context.Context, user *model.User) (*SignInResult, error) {
	if s.isLockedOut(user) {
		return &SignInResult{Status: SignInLockedOut}, nil
	}
	if user.TwoFactorEnabled {
		if err := s.issueCode(ctx, user); err != nil {
			return nil, err
		}
		return &SignInResult{Status: SignInRequiresVerification, User: user}, nil
	}
	return s.succeed(ctx, user)
}

func (s *LocalIdentity) IsInRole(ctx context.Context, userID, role string) (bool, error) {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	return user.Role == role, nil
}

func (s *LocalIdentity) FindUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user", userID)
	}
	return user, nil
}

func (s *LocalIdentity) isLockedOut(user *model.User) bool {
	return s.cfg.LockoutEnabled && user.LockoutEnd != nil && user.LockoutEnd.After(s.now())
}

// failAttempt 记录一次失败，达到阈值后锁定
func (s *LocalIdentity) failAttempt(ctx context.Context, user *model.User) (*SignInResult, error) {
	if !s.cfg.LockoutEnabled {
		return &SignInResult{Status: SignInFailure}, nil
	}

	count := user.AccessFailedCount + 1
	if s.cfg.MaxFailedAttempts > 0 && count >= s.cfg.MaxFailedAttempts {
		end := s.now().Add(s.cfg.LockoutDuration)
		if err := s.repos.User.RecordAccessFailure(ctx, user.ID, 0, &end); err != nil {
			return nil, err
		}
		logging.Warn().Str("user_id", user.ID).Time("until", end).Msg("[Identity] 账号已锁定")
		return &SignInResult{Status: SignInLockedOut}, nil
	}

	if err := s.repos.User.RecordAccessFailure(ctx, user.ID, count, nil); err != nil {
		return nil, err
	}
	return &SignInResult{Status: SignInFailure}, nil
}

func (s *LocalIdentity) succeed(ctx context.Context, user *model.User) (*SignInResult, error) {
	if user.AccessFailedCount > 0 || user.LockoutEnd != nil {
		if err := s.repos.User.ResetAccessFailures(ctx, user.ID); err != nil {
			return nil, err
		}
		user.AccessFailedCount = 0
		user.LockoutEnd = nil
	}
	return &SignInResult{Status: SignInSuccess, User: user}, nil
}

func (s *LocalIdentity) issueCode(ctx context.Context, user *model.User) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	s.codes.Set(user.ID, code, s.cfg.TwoFactorCodeTTL)
	return s.sender.SendCode(ctx, user, code)
}

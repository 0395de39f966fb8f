package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/deadpan/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建用户，password 非空时写入哈希
func (r *UserRepository) Create(ctx context.Context, user *model.User, password string) error {
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail 根据邮箱查找用户
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// CheckPassword 验证密码
func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// UpdateRole 更新用户角色
func (r *UserRepository) UpdateRole(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("role", role).Error
}

// SetTwoFactor 开关两步验证
func (r *UserRepository) SetTwoFactor(ctx context.Context, userID string, enabled bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("two_factor_enabled", enabled).Error
}

// RecordAccessFailure 写入失败次数与锁定截止时间
func (r *UserRepository) RecordAccessFailure(ctx context.Context, userID string, count int, lockoutEnd *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"access_failed_count": count,
		"lockout_end":         lockoutEnd,
	}).Error
}

// ResetAccessFailures 登录成功后清零
func (r *UserRepository) ResetAccessFailures(ctx context.Context, userID string) error {
	return r.RecordAccessFailure(ctx, userID, 0, nil)
}

// ListAll 获取所有用户列表
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Order("user_name ASC").Order("id ASC").Find(&users).Error
	return users, err
}

// Delete 删除用户。收藏与外部登录由外键级联，影评需调用方先删除
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("id = ?", userID).Delete(&model.User{}).Error
}

// FindByLogin 根据外部登录查找绑定的用户
func (r *UserRepository) FindByLogin(ctx context.Context, provider, providerKey string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_logins ON user_logins.user_id = users.id").
		Where("user_logins.provider = ? AND user_logins.provider_key = ?", provider, providerKey).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// AddLogin 绑定外部登录
func (r *UserRepository) AddLogin(ctx context.Context, userID, provider, providerKey string) error {
	login := &model.UserLogin{
		Provider:    provider,
		ProviderKey: providerKey,
		UserID:      userID,
	}
	return r.db.WithContext(ctx).Create(login).Error
}

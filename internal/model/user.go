package model

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	ID                string     `json:"id" gorm:"primaryKey;size:36"`
	Email             string     `json:"email" gorm:"uniqueIndex;size:256;not null"`
	UserName          string     `json:"username" gorm:"uniqueIndex;size:256;not null"`
	Nickname          string     `json:"nickname"`
	PasswordHash      string     `json:"-"`
	Role              string     `json:"role"`
	TwoFactorEnabled  bool       `json:"two_factor_enabled"`
	AccessFailedCount int        `json:"-"`
	LockoutEnd        *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// DisplayName 昵称为空时取用户名 @ 之前的部分
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Nickname) != "" {
		return u.Nickname
	}
	name, _, _ := strings.Cut(u.UserName, "@")
	return name
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary 对外展示的用户摘要
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, DisplayName: u.DisplayName()}
}

// UserSummary 用户摘要
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// UserLogin 外部登录绑定（provider + key 唯一）
type UserLogin struct {
	Provider    string `gorm:"primaryKey;size:64"`
	ProviderKey string `gorm:"primaryKey;size:256"`
	UserID      string `gorm:"size:36;not null;index"`
	User        *User  `gorm:"constraint:OnDelete:CASCADE"`
}

// Favorite 用户与电影的收藏关系，无额外属性
type Favorite struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	MovieID   int       `json:"movie_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Movie     *Movie    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Profile 个人主页数据
type Profile struct {
	User           *User          `json:"user"`
	DisplayName    string         `json:"display_name"`
	Reviews        []*ReviewEntry `json:"reviews"`
	FavoriteMovies []*Movie       `json:"favorite_movies"`
}

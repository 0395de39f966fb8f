// Package testutil 测试用的内存数据库与数据构造
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB 打开独立的内存 SQLite（外键开启，单连接）并完成迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.Migrate(db))
	return db
}

// CreateUser 创建普通用户，email 为空时自动生成
func CreateUser(t testing.TB, db *gorm.DB, email, nickname string) *model.User {
	t.Helper()
	if email == "" {
		email = fmt.Sprintf("user%d@example.com", seq.Add(1))
	}
	user := &model.User{
		ID:       uuid.NewString(),
		Email:    email,
		UserName: email,
		Nickname: nickname,
		Role:     model.RoleUser,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user, ""))
	return user
}

// CreateAdmin 创建管理员
func CreateAdmin(t testing.TB, db *gorm.DB) *model.User {
	t.Helper()
	user := CreateUser(t, db, "", "admin")
	require.NoError(t, db.Model(user).Update("role", model.RoleAdmin).Error)
	user.Role = model.RoleAdmin
	return user
}

// CreateMovie 创建电影
func CreateMovie(t testing.TB, db *gorm.DB, title, director string, year int) *model.Movie {
	t.Helper()
	movie := &model.Movie{
		Title:       title,
		Director:    director,
		ReleaseYear: year,
		PosterUrls:  "https://image.tmdb.org/t/p/original/" + uuid.NewString() + ".jpg",
	}
	require.NoError(t, db.Create(movie).Error)
	return movie
}

// CreateReview 直接写入一条影评
func CreateReview(t testing.TB, db *gorm.DB, userID string, movieID int, rating float64, comment string, at time.Time) *model.Review {
	t.Helper()
	review := &model.Review{
		UserID:     userID,
		MovieID:    movieID,
		Rating:     rating,
		Comment:    comment,
		ReviewDate: at,
	}
	require.NoError(t, db.Create(review).Error)
	return review
}

// AddFavorite 直接写入收藏关系
func AddFavorite(t testing.TB, db *gorm.DB, userID string, movieID int) {
	t.Helper()
	require.NoError(t, repository.NewFavoriteRepository(db).Add(context.Background(), userID, movieID))
}

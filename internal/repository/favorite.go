package repository

import (
	"context"
	"time"

	"github.com/user/deadpan/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add 添加收藏
func (r *FavoriteRepository) Add(ctx context.Context, userID string, movieID int) error {
	favorite := &model.Favorite{
		UserID:    userID,
		MovieID:   movieID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(favorite).Error
}

// Remove 取消收藏
func (r *FavoriteRepository) Remove(ctx context.Context, userID string, movieID int) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND movie_id = ?", userID, movieID).Delete(&model.Favorite{}).Error
}

// Exists 检查是否已收藏
func (r *FavoriteRepository) Exists(ctx context.Context, userID string, movieID int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	return count > 0, err
}

// DeleteByMovie 清空电影的收藏关系
func (r *FavoriteRepository) DeleteByMovie(ctx context.Context, movieID int) (int64, error) {
	res := r.db.WithContext(ctx).Where("movie_id = ?", movieID).Delete(&model.Favorite{})
	return res.RowsAffected, res.Error
}

// ListMovies 用户收藏的电影，按标题排序
func (r *FavoriteRepository) ListMovies(ctx context.Context, userID string) ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.movie_id = movies.id").
		Where("favorites.user_id = ?", userID).
		Order("movies.title ASC").Order("movies.id ASC").
		Find(&movies).Error
	return movies, err
}

// ListUsers 收藏了该电影的用户
func (r *FavoriteRepository) ListUsers(ctx context.Context, movieID int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.user_id = users.id").
		Where("favorites.movie_id = ?", movieID).
		Order("favorites.created_at ASC").
		Find(&users).Error
	return users, err
}

// CountByMovie 电影被收藏次数
func (r *FavoriteRepository) CountByMovie(ctx context.Context, movieID int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}

// CountByUser 统计用户收藏数量
func (r *FavoriteRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

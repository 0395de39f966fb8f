package repository

import (
	"context"
	"errors"

	"github.com/user/deadpan/internal/model"
	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindByID 根据 ID 查找影评，不存在返回 nil
func (r *ReviewRepository) FindByID(ctx context.Context, id int) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).First(&review, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByMovieAndUser 查找某用户对某电影的影评
func (r *ReviewRepository) FindByMovieAndUser(ctx context.Context, movieID int, userID string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("movie_id = ? AND user_id = ?", movieID, userID).
		Order("id ASC").
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Create 创建影评
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// UpdateComment 只更新评论内容
func (r *ReviewRepository) UpdateComment(ctx context.Context, id int, comment string) error {
	return r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Update("comment", comment).Error
}

// UpdateRating 只更新评分
func (r *ReviewRepository) UpdateRating(ctx context.Context, id int, rating float64) error {
	return r.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", id).Update("rating", rating).Error
}

// Delete 删除单条影评
func (r *ReviewRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&model.Review{}, id).Error
}

// DeleteByMovie 删除电影下的全部影评
func (r *ReviewRepository) DeleteByMovie(ctx context.Context, movieID int) (int64, error) {
	res := r.db.WithContext(ctx).Where("movie_id = ?", movieID).Delete(&model.Review{})
	return res.RowsAffected, res.Error
}

// DeleteByUser 删除用户写过的全部影评
func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Review{})
	return res.RowsAffected, res.Error
}

// ListByMovie 电影的影评（含作者），最新在前
func (r *ReviewRepository) ListByMovie(ctx context.Context, movieID int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).Preload("User").
		Where("movie_id = ?", movieID).
		Order("review_date DESC").Order("id DESC").
		Find(&reviews).Error
	return reviews, err
}

// ListByUser 用户的影评（含电影），最新在前
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).Preload("Movie").
		Where("user_id = ?", userID).
		Order("review_date DESC").Order("id DESC").
		Find(&reviews).Error
	return reviews, err
}

// Recent 最近的 limit 条影评，同时加载电影与作者
func (r *ReviewRepository) Recent(ctx context.Context, limit int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).Preload("Movie").Preload("User").
		Order("review_date DESC").Order("id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// CountByMovie 电影的影评数
func (r *ReviewRepository) CountByMovie(ctx context.Context, movieID int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}

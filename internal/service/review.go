package service

import (
	"context"
	"slices"
	"time"

	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

// RatingInput 评分表单
type RatingInput struct {
	MovieID int     `json:"movie_id" form:"movie_id" validate:"required"`
	Rating  float64 `json:"rating" form:"rating" validate:"gte=0,lte=5,halfstep"`
}

// CommentInput 评论表单
type CommentInput struct {
	MovieID int    `json:"movie_id" form:"movie_id" validate:"required"`
	Comment string `json:"comment" form:"comment"`
}

// ReviewService 每个 (movie, user) 至多一条影评，评分与评论可分别写入
type ReviewService struct {
	repos *repository.Repositories
	now   func() time.Time
}

func NewReviewService(repos *repository.Repositories) *ReviewService {
	return &ReviewService{repos: repos, now: time.Now}
}

// UpsertComment 已有影评只改评论，否则新建 rating=0 的影评
func (s *ReviewService) UpsertComment(ctx context.Context, userID string, in CommentInput) (*model.Review, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return s.upsert(ctx, userID, in.MovieID,
		func(tx *repository.Repositories, r *model.Review) error {
			r.Comment = in.Comment
			return tx.Review.UpdateComment(ctx, r.ID, in.Comment)
		},
		&model.Review{Rating: 0, Comment: in.Comment},
	)
}

// UpsertRating 评分须在 [0, 5]；已有影评只改评分，否则新建空评论的影评
func (s *ReviewService) UpsertRating(ctx context.Context, userID string, in RatingInput) (*model.Review, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return s.upsert(ctx, userID, in.MovieID,
		func(tx *repository.Repositories, r *model.Review) error {
			r.Rating = in.Rating
			return tx.Review.UpdateRating(ctx, r.ID, in.Rating)
		},
		&model.Review{Rating: in.Rating, Comment: ""},
	)
}

func (s *ReviewService) upsert(
	ctx context.Context,
	userID string,
	movieID int,
	update func(tx *repository.Repositories, r *model.Review) error,
	fresh *model.Review,
) (*model.Review, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("sign in required")
	}

	var result *model.Review
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		movie, err := tx.Movie.FindByID(ctx, movieID)
		if err != nil {
			return err
		}
		if movie == nil {
			return apperrors.NotFound("movie", movieID)
		}
		user, err := tx.User.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperrors.NotFound("user", userID)
		}

		existing, err := tx.Review.FindByMovieAndUser(ctx, movieID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return update(tx, existing)
		}

		fresh.MovieID = movieID
		fresh.UserID = userID
		fresh.ReviewDate = s.now()
		result = fresh
		return tx.Review.Create(ctx, fresh)
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Int("review_id", result.ID).Int("movie_id", movieID).Str("user_id", userID).
		Msg("[Review] 影评已保存")
	return result, nil
}

// Delete 只有作者或持有管理员角色的用户可以删除
func (s *ReviewService) Delete(ctx context.Context, reviewID int, userID string, roles []string) error {
	review, err := s.repos.Review.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return apperrors.NotFound("review", reviewID)
	}
	if review.UserID != userID && !slices.Contains(roles, model.RoleAdmin) {
		return apperrors.Forbidden("only the author or an administrator can delete this review")
	}

	if err := s.repos.Review.Delete(ctx, reviewID); err != nil {
		return err
	}

	logging.Info().Int("review_id", reviewID).Int("movie_id", review.MovieID).Str("by", userID).
		Msg("[Review] 影评已删除")
	return nil
}

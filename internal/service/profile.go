package service

import (
	"context"

	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

type ProfileService struct {
	repos *repository.Repositories
}

func NewProfileService(repos *repository.Repositories) *ProfileService {
	return &ProfileService{repos: repos}
}

// Get 用户信息、影评（最新在前）和收藏（按标题）
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.repos.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user", userID)
	}

	reviews, err := s.repos.Review.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	movies, err := s.repos.Favorite.ListMovies(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		User:           user,
		DisplayName:    user.DisplayName(),
		Reviews:        make([]*model.ReviewEntry, 0, len(reviews)),
		FavoriteMovies: movies,
	}
	if profile.FavoriteMovies == nil {
		profile.FavoriteMovies = []*model.Movie{}
	}
	for _, r := range reviews {
		profile.Reviews = append(profile.Reviews, model.NewReviewEntry(r))
	}
	return profile, nil
}

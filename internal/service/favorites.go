package service

import (
	"context"

	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/repository"
)

type FavoritesService struct {
	repos *repository.Repositories
}

func NewFavoritesService(repos *repository.Repositories) *FavoritesService {
	return &FavoritesService{repos: repos}
}

// Toggle 已收藏则取消，否则加入。返回操作后的收藏状态
func (s *FavoritesService) Toggle(ctx context.Context, userID string, movieID int) (bool, error) {
	var favorited bool
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := tx.User.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperrors.NotFound("user", userID)
		}
		movie, err := tx.Movie.FindByID(ctx, movieID)
		if err != nil {
			return err
		}
		if movie == nil {
			return apperrors.NotFound("movie", movieID)
		}

		exists, err := tx.Favorite.Exists(ctx, userID, movieID)
		if err != nil {
			return err
		}
		if exists {
			return tx.Favorite.Remove(ctx, userID, movieID)
		}
		favorited = true
		return tx.Favorite.Add(ctx, userID, movieID)
	})
	if err != nil {
		return false, err
	}

	logging.Info().Str("user_id", userID).Int("movie_id", movieID).Bool("favorited", favorited).
		Msg("[Favorites] 收藏状态已切换")
	return favorited, nil
}

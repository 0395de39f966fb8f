package service

import (
	"context"

	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

// AdminService 用户管理
type AdminService struct {
	repos *repository.Repositories
}

func NewAdminService(repos *repository.Repositories) *AdminService {
	return &AdminService{repos: repos}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repos.User.ListAll(ctx)
}

// DeleteUser 先删该用户的影评再删用户；收藏与外部登录由存储层级联删除
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	var reviews int64
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		user, err := tx.User.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperrors.NotFound("user", userID)
		}

		if reviews, err = tx.Review.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.User.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	logging.Info().Str("user_id", userID).Int64("reviews", reviews).Msg("[Admin] 用户已删除")
	return nil
}

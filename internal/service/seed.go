package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

//go:embed seeddata/movies.json
var seedMovies []byte

// SeedMovies 内置的初始电影列表
func SeedMovies() ([]model.MovieInput, error) {
	var movies []model.MovieInput
	if err := json.Unmarshal(seedMovies, &movies); err != nil {
		return nil, fmt.Errorf("解析初始电影数据失败: %w", err)
	}
	return movies, nil
}

// SeedResult 初始化结果统计
type SeedResult struct {
	AdminCreated  bool
	MoviesCreated int
	MoviesUpdated int
}

// Seed 创建管理员账号并按标题写入初始电影，可重复执行
func Seed(ctx context.Context, repos *repository.Repositories, adminEmail, adminPassword string) (*SeedResult, error) {
	movies, err := SeedMovies()
	if err != nil {
		return nil, err
	}

	res := &SeedResult{}
	err = repos.Transaction(ctx, func(tx *repository.Repositories) error {
		adminEmail = normalizeEmail(adminEmail)
		admin, err := tx.User.FindByEmail(ctx, adminEmail)
		if err != nil {
			return err
		}
		if admin == nil {
			admin = &model.User{
				ID:       uuid.NewString(),
				Email:    adminEmail,
				UserName: adminEmail,
				Nickname: "Admin",
				Role:     model.RoleAdmin,
			}
			if err := tx.User.Create(ctx, admin, adminPassword); err != nil {
				return err
			}
			res.AdminCreated = true
		} else if !admin.IsAdmin() {
			if err := tx.User.UpdateRole(ctx, admin.ID, model.RoleAdmin); err != nil {
				return err
			}
		}

		for i := range movies {
			in := movies[i]
			existing, err := tx.Movie.FindByTitle(ctx, in.Title)
			if err != nil {
				return err
			}
			if existing == nil {
				m := &model.Movie{}
				in.Apply(m)
				if err := tx.Movie.Create(ctx, m); err != nil {
					return err
				}
				res.MoviesCreated++
				continue
			}
			in.Apply(existing)
			if err := tx.Movie.Save(ctx, existing); err != nil {
				return err
			}
			res.MoviesUpdated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Bool("admin_created", res.AdminCreated).
		Int("movies_created", res.MoviesCreated).
		Int("movies_updated", res.MoviesUpdated).
		Msg("[Seed] 初始数据写入完成")
	return res, nil
}

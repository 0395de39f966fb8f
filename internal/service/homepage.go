package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

const (
	recentReviewLimit = 6
	spotlightSize     = 6
)

// HomepageService 首页聚合，每次调用重新计算和抽样
type HomepageService struct {
	repos   *repository.Repositories
	sampler Sampler
}

func NewHomepageService(repos *repository.Repositories, sampler Sampler) *HomepageService {
	return &HomepageService{repos: repos, sampler: sampler}
}

// Build 组装首页。viewerID 为空表示未登录
func (s *HomepageService) Build(ctx context.Context, viewerID string) (*model.Homepage, error) {
	page := &model.Homepage{
		DirectorRecommendations: []*model.Movie{},
		DecadeRecommendations:   []*model.Movie{},
	}

	recent, err := s.recentReviews(ctx)
	if err != nil {
		return nil, err
	}
	page.RecentReviews = recent

	if err := s.directorSpotlight(ctx, page); err != nil {
		return nil, err
	}
	if err := s.decadeSpotlight(ctx, page); err != nil {
		return nil, err
	}

	if viewerID != "" {
		viewer, err := s.repos.User.FindByID(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if viewer != nil {
			page.WelcomeName = viewer.DisplayName()
		}
	}

	return page, nil
}

func (s *HomepageService) recentReviews(ctx context.Context) ([]*model.RecentReview, error) {
	reviews, err := s.repos.Review.Recent(ctx, recentReviewLimit)
	if err != nil {
		return nil, err
	}

	res := make([]*model.RecentReview, 0, len(reviews))
	for _, r := range reviews {
		item := &model.RecentReview{
			MovieID: r.MovieID,
			Rating:  r.Rating,
			UserID:  r.UserID,
		}
		if r.Movie != nil {
			item.MovieTitle = r.Movie.Title
			item.PosterUrls = r.Movie.PosterUrls
		}
		if r.User != nil {
			item.UserDisplayName = r.User.DisplayName()
		}
		// 作者本人是否收藏了这部电影
		liked, err := s.repos.Favorite.Exists(ctx, r.UserID, r.MovieID)
		if err != nil {
			return nil, err
		}
		item.UserLikedMovie = liked
		res = append(res, item)
	}
	return res, nil
}

func (s *HomepageService) directorSpotlight(ctx context.Context, page *model.Homepage) error {
	directors, err := s.repos.Movie.DistinctDirectors(ctx)
	if err != nil {
		return err
	}
	director, ok := PickOne(s.sampler, directors)
	if !ok {
		return nil
	}

	movies, err := s.repos.Movie.ListByDirector(ctx, director)
	if err != nil {
		return err
	}
	page.RecommendedDirectorName = director
	page.DirectorRecommendations = SampleN(s.sampler, movies, spotlightSize)
	return nil
}

func (s *HomepageService) decadeSpotlight(ctx context.Context, page *model.Homepage) error {
	years, err := s.repos.Movie.DistinctReleaseYears(ctx)
	if err != nil {
		return err
	}
	decade, ok := PickOne(s.sampler, CandidateDecades(years))
	if !ok {
		return nil
	}

	movies, err := s.repos.Movie.ListByYearRange(ctx, decade, decade+9)
	if err != nil {
		return err
	}
	page.RecommendedDecade = fmt.Sprintf("%ds", decade)
	page.DecadeRecommendations = SampleN(s.sampler, movies, spotlightSize)
	return nil
}

// CandidateDecades 至少有一部电影的年代（升序），忽略未知年份
func CandidateDecades(years []int) []int {
	decades := make([]int, 0, len(years))
	for _, y := range years {
		if y <= 0 {
			continue
		}
		d := y / 10 * 10
		if !slices.Contains(decades, d) {
			decades = append(decades, d)
		}
	}
	slices.Sort(decades)
	return decades
}

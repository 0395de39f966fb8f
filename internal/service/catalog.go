package service

import (
	"context"
	"strings"

	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
)

// 列表排序键（大小写不敏感），未识别的键按标题升序
const (
	SortTitle        = "title"
	SortTitleDesc    = "title_desc"
	SortDirector     = "director"
	SortDirectorDesc = "director_desc"
	SortYear         = "year"
	SortYearDesc     = "year_desc"
)

// SortLinks 各列表头点击后应使用的排序键
type SortLinks struct {
	Title    string `json:"title"`
	Director string `json:"director"`
	Year     string `json:"year"`
}

// MovieList 电影列表页数据
type MovieList struct {
	Movies    []*model.Movie `json:"movies"`
	Sort      string         `json:"sort"`
	Search    string         `json:"search"`
	SortLinks SortLinks      `json:"sort_links"`
}

// ParseSort 排序键 -> 排序列与方向
func ParseSort(key string) (column string, desc bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case SortTitleDesc:
		return "title", true
	case SortDirector:
		return "director", false
	case SortDirectorDesc:
		return "director", true
	case SortYear:
		return "release_year", false
	case SortYearDesc:
		return "release_year", true
	default:
		return "title", false
	}
}

// NextSortKeys 当前列再次点击时切换升降序
func NextSortKeys(current string) SortLinks {
	current = strings.ToLower(strings.TrimSpace(current))

	links := SortLinks{Title: "", Director: SortDirector, Year: SortYear}
	if current == "" || current == SortTitle {
		links.Title = SortTitleDesc
	}
	if current == SortDirector {
		links.Director = SortDirectorDesc
	}
	if current == SortYear {
		links.Year = SortYearDesc
	}
	return links
}

type CatalogService struct {
	repos    *repository.Repositories
	metadata MetadataClient
}

func NewCatalogService(repos *repository.Repositories, metadata MetadataClient) *CatalogService {
	return &CatalogService{repos: repos, metadata: metadata}
}

// List 先按标题/导演过滤，再排序
func (s *CatalogService) List(ctx context.Context, sortKey, search string) (*MovieList, error) {
	search = strings.TrimSpace(search)
	column, desc := ParseSort(sortKey)

	movies, err := s.repos.Movie.List(ctx, repository.MovieQuery{
		Search:    search,
		OrderBy:   column,
		OrderDesc: desc,
	})
	if err != nil {
		return nil, err
	}

	return &MovieList{
		Movies:    movies,
		Sort:      sortKey,
		Search:    search,
		SortLinks: NextSortKeys(sortKey),
	}, nil
}

// GetDetails 电影详情。viewerID 为空表示未登录
func (s *CatalogService) GetDetails(ctx context.Context, movieID int, viewerID string) (*model.MovieDetails, error) {
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repos.Review.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.Favorite.ListUsers(ctx, movieID)
	if err != nil {
		return nil, err
	}

	details := &model.MovieDetails{
		Movie:         movie,
		Reviews:       make([]*model.ReviewEntry, 0, len(reviews)),
		FavoritedBy:   make([]*model.UserSummary, 0, len(users)),
		FavoriteCount: len(users),
	}
	for _, r := range reviews {
		details.Reviews = append(details.Reviews, model.NewReviewEntry(r))
		if viewerID != "" && r.UserID == viewerID {
			details.ViewerRating = r.Rating
		}
	}
	for _, u := range users {
		details.FavoritedBy = append(details.FavoritedBy, u.Summary())
		if viewerID != "" && u.ID == viewerID {
			details.IsFavorited = true
		}
	}

	return details, nil
}

// Create 新建电影，标题必填
func (s *CatalogService) Create(ctx context.Context, in model.MovieInput) (*model.Movie, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	movie := &model.Movie{}
	in.Apply(movie)
	if err := s.repos.Movie.Create(ctx, movie); err != nil {
		return nil, err
	}

	logging.Info().Int("movie_id", movie.ID).Str("title", movie.Title).Msg("[Catalog] 电影已创建")
	return movie, nil
}

// Update 整体替换电影字段，不影响影评与收藏
func (s *CatalogService) Update(ctx context.Context, movieID int, in model.MovieInput) (*model.Movie, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	in.Apply(movie)
	if err := s.repos.Movie.Save(ctx, movie); err != nil {
		return nil, err
	}

	logging.Info().Int("movie_id", movie.ID).Msg("[Catalog] 电影已更新")
	return movie, nil
}

// Delete 依次删除影评、收藏关系、电影本身，整体在一个事务内
func (s *CatalogService) Delete(ctx context.Context, movieID int) error {
	var reviews, favorites int64
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		movie, err := tx.Movie.FindByID(ctx, movieID)
		if err != nil {
			return err
		}
		if movie == nil {
			return apperrors.NotFound("movie", movieID)
		}

		if reviews, err = tx.Review.DeleteByMovie(ctx, movieID); err != nil {
			return err
		}
		if favorites, err = tx.Favorite.DeleteByMovie(ctx, movieID); err != nil {
			return err
		}
		return tx.Movie.Delete(ctx, movieID)
	})
	if err != nil {
		return err
	}

	logging.Info().Int("movie_id", movieID).
		Int64("reviews", reviews).
		Int64("favorites", favorites).
		Msg("[Catalog] 电影已删除")
	return nil
}

// ImportFromMetadata 在元数据服务中按标题搜索
func (s *CatalogService) ImportFromMetadata(ctx context.Context, title string) ([]model.MetadataSearchResult, error) {
	if strings.TrimSpace(title) == "" {
		return []model.MetadataSearchResult{}, nil
	}
	results, err := s.metadata.Search(ctx, title)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}
	return results, nil
}

// FetchMetadataDetails 拉取详情并映射为电影表单，不落库
func (s *CatalogService) FetchMetadataDetails(ctx context.Context, externalID int) (*model.MovieInput, error) {
	if externalID <= 0 {
		return nil, apperrors.InvalidInput("external id must be positive")
	}
	details, err := s.metadata.Details(ctx, externalID)
	if err != nil {
		return nil, apperrors.Upstream(err)
	}

	in := MapDetailsToMovie(details, s.metadata.ImageBaseURL())
	return &in, nil
}

func (s *CatalogService) findMovie(ctx context.Context, movieID int) (*model.Movie, error) {
	if movieID <= 0 {
		return nil, apperrors.NotFound("movie", movieID)
	}
	movie, err := s.repos.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, apperrors.NotFound("movie", movieID)
	}
	return movie, nil
}

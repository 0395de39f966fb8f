package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/user/deadpan/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// MovieQuery 列表查询条件：先过滤再排序
type MovieQuery struct {
	Search    string
	OrderBy   string // title / director / release_year
	OrderDesc bool
}

var movieOrderColumns = map[string]bool{
	"title":        true,
	"director":     true,
	"release_year": true,
}

// List 按条件列出电影，标题或导演包含关键字
func (r *MovieRepository) List(ctx context.Context, q MovieQuery) ([]*model.Movie, error) {
	tx := r.db.WithContext(ctx).Model(&model.Movie{})

	if q.Search != "" {
		like := "%" + escapeLike(q.Search) + "%"
		tx = tx.Where(`title LIKE ? ESCAPE '\' OR director LIKE ? ESCAPE '\'`, like, like)
	}

	column := q.OrderBy
	if !movieOrderColumns[column] {
		column = "title"
	}
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.OrderDesc}).
		Order("id ASC")

	var movies []*model.Movie
	err := tx.Find(&movies).Error
	return movies, err
}

// FindByID 根据 ID 查找电影，不存在返回 nil
func (r *MovieRepository) FindByID(ctx context.Context, id int) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).First(&movie, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByTitle 根据标题精确查找
func (r *MovieRepository) FindByTitle(ctx context.Context, title string) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Create 创建电影
func (r *MovieRepository) Create(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Create(movie).Error
}

// Save 整体覆盖电影字段（零值同样写入）
func (r *MovieRepository) Save(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Model(movie).Select("*").Omit("id").Updates(movie).Error
}

// Delete 删除电影行。调用方需先清理影评与收藏
func (r *MovieRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithContext(ctx).Delete(&model.Movie{}, id).Error
}

// Count 电影总数
func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Movie{}).Count(&count).Error
	return count, err
}

// DistinctDirectors 所有不重复的导演名（忽略空值）
func (r *MovieRepository) DistinctDirectors(ctx context.Context) ([]string, error) {
	var directors []string
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Where("director IS NOT NULL AND director <> ''").
		Distinct().Order("director ASC").
		Pluck("director", &directors).Error
	return directors, err
}

// ListByDirector 某导演的全部电影
func (r *MovieRepository) ListByDirector(ctx context.Context, director string) ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.WithContext(ctx).Where("director = ?", director).Order("id ASC").Find(&movies).Error
	return movies, err
}

// DistinctReleaseYears 所有出现过的上映年份
func (r *MovieRepository) DistinctReleaseYears(ctx context.Context) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).Model(&model.Movie{}).
		Distinct().Order("release_year ASC").
		Pluck("release_year", &years).Error
	return years, err
}

// ListByYearRange 上映年份在 [from, to] 内的电影
func (r *MovieRepository) ListByYearRange(ctx context.Context, from, to int) ([]*model.Movie, error) {
	var movies []*model.Movie
	err := r.db.WithContext(ctx).
		Where("release_year >= ? AND release_year <= ?", from, to).
		Order("id ASC").
		Find(&movies).Error
	return movies, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

package model

import (
	"strings"
)

// Movie 电影
type Movie struct {
	ID            int    `json:"movie_id" gorm:"primaryKey"`
	Title         string `json:"title" gorm:"not null;index"`
	Director      string `json:"director" gorm:"index"`
	ReleaseYear   int    `json:"release_year" gorm:"index"`
	Synopsis      string `json:"synopsis"`
	ShortSynopsis string `json:"short_synopsis"`
	WrittenBy     string `json:"written_by"`
	MusicBy       string `json:"music_by"`
	Starring      string `json:"starring"`
	PosterUrls    string `json:"poster_urls"` // 逗号分隔的绝对地址
}

// Posters 拆分海报地址
func (m *Movie) Posters() []string {
	if m.PosterUrls == "" {
		return nil
	}
	res := []string{}
	for _, p := range strings.Split(m.PosterUrls, ",") {
		if s := strings.TrimSpace(p); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// MovieInput 新建/编辑电影的表单字段
type MovieInput struct {
	Title         string `json:"title" form:"title" validate:"required"`
	Director      string `json:"director" form:"director"`
	ReleaseYear   int    `json:"release_year" form:"release_year" validate:"gte=0"`
	Synopsis      string `json:"synopsis" form:"synopsis"`
	ShortSynopsis string `json:"short_synopsis" form:"short_synopsis"`
	WrittenBy     string `json:"written_by" form:"written_by"`
	MusicBy       string `json:"music_by" form:"music_by"`
	Starring      string `json:"starring" form:"starring"`
	PosterUrls    string `json:"poster_urls" form:"poster_urls"`
}

// Apply 用表单字段整体覆盖电影属性
func (in *MovieInput) Apply(m *Movie) {
	m.Title = strings.TrimSpace(in.Title)
	m.Director = in.Director
	m.ReleaseYear = in.ReleaseYear
	m.Synopsis = in.Synopsis
	m.ShortSynopsis = in.ShortSynopsis
	m.WrittenBy = in.WrittenBy
	m.MusicBy = in.MusicBy
	m.Starring = in.Starring
	m.PosterUrls = in.PosterUrls
}

// MovieDetails 电影详情页数据
type MovieDetails struct {
	Movie         *Movie         `json:"movie"`
	Reviews       []*ReviewEntry `json:"reviews"`
	FavoritedBy   []*UserSummary `json:"favorited_by"`
	ViewerRating  float64        `json:"viewer_rating"`
	IsFavorited   bool           `json:"is_favorited"`
	FavoriteCount int            `json:"favorite_count"`
}

// MetadataSearchResult 元数据搜索结果
type MetadataSearchResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
}

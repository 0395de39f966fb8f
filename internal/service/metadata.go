package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/user/deadpan/internal/model"
)

// MetadataClient 外部电影元数据接口（只读）
type MetadataClient interface {
	Search(ctx context.Context, title string) ([]model.MetadataSearchResult, error)
	Details(ctx context.Context, id int) (*TMDBMovieDetails, error)
	ImageBaseURL() string
}

type tmdbSearchResponse struct {
	Results []model.MetadataSearchResult `json:"results"`
}

// TMDBMovieDetails 详情接口（append_to_response=credits,images）
type TMDBMovieDetails struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Overview    string      `json:"overview"`
	ReleaseDate string      `json:"release_date"`
	Credits     TMDBCredits `json:"credits"`
	Images      TMDBImages  `json:"images"`
}

type TMDBCredits struct {
	Cast []TMDBCastMember `json:"cast"`
	Crew []TMDBCrewMember `json:"crew"`
}

type TMDBCastMember struct {
	Name string `json:"name"`
}

type TMDBCrewMember struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

type TMDBImages struct {
	Posters []TMDBImage `json:"posters"`
}

type TMDBImage struct {
	FilePath string `json:"file_path"`
}

const maxStarring = 10

// MapDetailsToMovie 把详情映射成电影表单字段，纯函数
func MapDetailsToMovie(d *TMDBMovieDetails, imageBaseURL string) model.MovieInput {
	in := model.MovieInput{
		Title:         d.Title,
		Director:      firstCrew(d.Credits.Crew, "Director"),
		WrittenBy:     firstCrew(d.Credits.Crew, "Screenplay", "Writer"),
		MusicBy:       firstCrew(d.Credits.Crew, "Original Music Composer"),
		ReleaseYear:   parseReleaseYear(d.ReleaseDate),
		Synopsis:      d.Overview,
		ShortSynopsis: d.Overview,
	}

	cast := d.Credits.Cast
	if len(cast) > maxStarring {
		cast = cast[:maxStarring]
	}
	names := make([]string, 0, len(cast))
	for _, c := range cast {
		names = append(names, c.Name)
	}
	in.Starring = strings.Join(names, ", ")

	posters := make([]string, 0, len(d.Images.Posters))
	for _, p := range d.Images.Posters {
		posters = append(posters, imageBaseURL+p.FilePath)
	}
	in.PosterUrls = strings.Join(posters, ",")

	return in
}

// firstCrew 按出现顺序返回第一个职务匹配的成员
func firstCrew(crew []TMDBCrewMember, jobs ...string) string {
	for _, c := range crew {
		for _, job := range jobs {
			if c.Job == job {
				return c.Name
			}
		}
	}
	return ""
}

// parseReleaseYear 取日期前四位，失败返回 0
func parseReleaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

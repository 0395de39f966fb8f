package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
	"github.com/user/deadpan/internal/testutil"
)

func TestCandidateDecades(t *testing.T) {
	assert.Equal(t, []int{1980, 1990, 2000, 2010}, CandidateDecades([]int{1984, 1989, 1995, 2000, 2014}))
	assert.Equal(t, []int{1970, 2000}, CandidateDecades([]int{2004, 0, 1977, 2001}))
	assert.Empty(t, CandidateDecades(nil))
}

func TestHomepage_EmptyCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewHomepageService(repository.NewRepositories(db), NewRandSampler(1))

	page, err := svc.Build(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, page.RecentReviews)
	assert.Empty(t, page.RecommendedDirectorName)
	assert.Empty(t, page.DirectorRecommendations)
	assert.Empty(t, page.RecommendedDecade)
	assert.Empty(t, page.DecadeRecommendations)
}

func TestHomepage_RecentReviews(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewHomepageService(repository.NewRepositories(db), NewRandSampler(1))

	fan := testutil.CreateUser(t, db, "fan@example.com", "")
	critic := testutil.CreateUser(t, db, "critic@example.com", "The Critic")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var latest *model.Movie
	for i := 0; i < 8; i++ {
		m := testutil.CreateMovie(t, db, fmt.Sprintf("Movie %d", i), "Director", 1990+i)
		author := critic
		if i%2 == 0 {
			author = fan
		}
		testutil.CreateReview(t, db, author.ID, m.ID, 4, "", base.Add(time.Duration(i)*time.Hour))
		latest = m
	}
	// 最新一条的作者是 critic，他收藏了该电影；fan 收藏的电影不影响 critic 的条目
	testutil.AddFavorite(t, db, critic.ID, latest.ID)
	testutil.AddFavorite(t, db, fan.ID, latest.ID-1)

	page, err := svc.Build(context.Background(), fan.ID)
	require.NoError(t, err)
	require.Len(t, page.RecentReviews, 6)

	first := page.RecentReviews[0]
	assert.Equal(t, "Movie 7", first.MovieTitle)
	assert.Equal(t, "The Critic", first.UserDisplayName)
	assert.Equal(t, critic.ID, first.UserID)
	assert.NotEmpty(t, first.PosterUrls)
	assert.True(t, first.UserLikedMovie)

	second := page.RecentReviews[1]
	assert.Equal(t, "fan", second.UserDisplayName)
	assert.True(t, second.UserLikedMovie)
	assert.False(t, page.RecentReviews[2].UserLikedMovie)

	assert.Equal(t, "fan", page.WelcomeName)
}

func TestHomepage_Spotlights(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewHomepageService(repository.NewRepositories(db), NewRandSampler(2024))

	for i := 0; i < 9; i++ {
		testutil.CreateMovie(t, db, fmt.Sprintf("Lynch %d", i), "David Lynch", 1977+i)
	}
	testutil.CreateMovie(t, db, "2046", "Wong Kar-wai", 2004)

	for run := 0; run < 20; run++ {
		page, err := svc.Build(context.Background(), "")
		require.NoError(t, err)

		require.NotEmpty(t, page.RecommendedDirectorName)
		assert.LessOrEqual(t, len(page.DirectorRecommendations), spotlightSize)
		seen := map[int]bool{}
		for _, m := range page.DirectorRecommendations {
			assert.Equal(t, page.RecommendedDirectorName, m.Director)
			assert.False(t, seen[m.ID])
			seen[m.ID] = true
		}
		if page.RecommendedDirectorName == "David Lynch" {
			assert.Len(t, page.DirectorRecommendations, spotlightSize)
		}

		require.Contains(t, []string{"1970s", "1980s", "2000s"}, page.RecommendedDecade)
		var decade int
		_, err = fmt.Sscanf(page.RecommendedDecade, "%ds", &decade)
		require.NoError(t, err)
		require.NotEmpty(t, page.DecadeRecommendations)
		for _, m := range page.DecadeRecommendations {
			assert.GreaterOrEqual(t, m.ReleaseYear, decade)
			assert.Less(t, m.ReleaseYear, decade+10)
		}
	}
}

func TestHomepage_SpotlightFollowsSampler(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateMovie(t, db, "Eraserhead", "David Lynch", 1977)
	testutil.CreateMovie(t, db, "Breathless", "Jean-Luc Godard", 1960)
	testutil.CreateMovie(t, db, "Alphaville", "Jean-Luc Godard", 1965)

	// 导演按字母序：David Lynch, Jean-Luc Godard；年代：1960, 1970
	svc := NewHomepageService(repository.NewRepositories(db), &seqSampler{values: []int{1, 0, 0, 1}})
	page, err := svc.Build(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "Jean-Luc Godard", page.RecommendedDirectorName)
	assert.Len(t, page.DirectorRecommendations, 2)
	assert.Equal(t, "1970s", page.RecommendedDecade)
	require.Len(t, page.DecadeRecommendations, 1)
	assert.Equal(t, "Eraserhead", page.DecadeRecommendations[0].Title)
}

package model

// Homepage 首页聚合数据，每次请求重新计算
type Homepage struct {
	RecentReviews           []*RecentReview `json:"recent_reviews"`
	RecommendedDirectorName string          `json:"recommended_director_name,omitempty"`
	DirectorRecommendations []*Movie        `json:"director_recommendations"`
	RecommendedDecade       string          `json:"recommended_decade,omitempty"`
	DecadeRecommendations   []*Movie        `json:"decade_recommendations"`
	WelcomeName             string          `json:"welcome_name,omitempty"`
}

// RecentReview 首页最新影评条目
type RecentReview struct {
	MovieID         int     `json:"movie_id"`
	MovieTitle      string  `json:"movie_title"`
	PosterUrls      string  `json:"poster_urls"`
	Rating          float64 `json:"rating"`
	UserID          string  `json:"user_id"`
	UserDisplayName string  `json:"user_display_name"`
	UserLikedMovie  bool    `json:"user_liked_movie"` // 作者本人是否收藏了该电影
}

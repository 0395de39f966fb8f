package model

import (
	"time"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Review 影评。同一 (movie, user) 最多一条，由应用层保证
type Review struct {
	ID         int       `json:"review_id" gorm:"primaryKey"`
	Rating     float64   `json:"rating" gorm:"type:decimal(3,1);not null"`
	Comment    string    `json:"comment" gorm:"not null"`
	ReviewDate time.Time `json:"review_date" gorm:"index"`
	MovieID    int       `json:"movie_id" gorm:"not null;index"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;index"`
	Movie      *Movie    `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	User       *User     `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
}

// ReviewEntry 带作者/电影信息的影评
type ReviewEntry struct {
	ID         int          `json:"review_id"`
	Rating     float64      `json:"rating"`
	Comment    string       `json:"comment"`
	ReviewDate time.Time    `json:"review_date"`
	MovieID    int          `json:"movie_id"`
	MovieTitle string       `json:"movie_title,omitempty"`
	Author     *UserSummary `json:"author,omitempty"`
}

// NewReviewEntry 从已预加载 Movie/User 的影评构造
func NewReviewEntry(r *Review) *ReviewEntry {
	e := &ReviewEntry{
		ID:         r.ID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewDate: r.ReviewDate,
		MovieID:    r.MovieID,
	}
	if r.Movie != nil {
		e.MovieTitle = r.Movie.Title
	}
	if r.User != nil {
		e.Author = r.User.Summary()
	}
	return e
}

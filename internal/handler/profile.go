package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/utils"
)

// ShowProfile 当前用户的个人主页
func (h *Handler) ShowProfile(c *gin.Context) {
	profile, err := h.Profile.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, profile)
}

// ToggleFavorite 收藏/取消收藏
func (h *Handler) ToggleFavorite(c *gin.Context) {
	movieID, err := paramID(c, "movieId")
	if err != nil {
		utils.Fail(c, err)
		return
	}

	favorited, err := h.Favorites.Toggle(c.Request.Context(), middleware.GetUserID(c), movieID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"movie_id": movieID, "favorited": favorited})
}

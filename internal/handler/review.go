package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/service"
	"github.com/user/deadpan/internal/utils"
)

// Comment 写入或修改当前用户对某电影的评论
func (h *Handler) Comment(c *gin.Context) {
	var in service.CommentInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	review, err := h.Reviews.UpsertComment(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, review)
}

// Rate 写入或修改当前用户对某电影的评分
func (h *Handler) Rate(c *gin.Context) {
	var in service.RatingInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	review, err := h.Reviews.UpsertRating(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, review)
}

// DeleteReview 作者本人或管理员可删除
func (h *Handler) DeleteReview(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}

	err = h.Reviews.Delete(c.Request.Context(), id, middleware.GetUserID(c), middleware.GetRoles(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.SuccessWithMessage(c, "已删除", gin.H{"review_id": id})
}

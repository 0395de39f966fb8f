package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/utils"
)

// ==================== 管理后台 ====================

// AdminUsers 全部用户
func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.Admin.ListUsers(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	utils.Success(c, users)
}

// AdminDeleteUser 删除用户及其影评
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.Admin.DeleteUser(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.SuccessWithMessage(c, "已删除", gin.H{"user_id": id})
}

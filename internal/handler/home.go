package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/utils"
)

// Home 首页：最新影评 + 导演推荐 + 年代推荐
func (h *Handler) Home(c *gin.Context) {
	page, err := h.Homepage.Build(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, page)
}

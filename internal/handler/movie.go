package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/utils"
)

// ==================== 电影目录 ====================

// ListMovies 电影列表，支持 sort 与 q 参数
func (h *Handler) ListMovies(c *gin.Context) {
	list, err := h.Catalog.List(c.Request.Context(), c.Query("sort"), c.Query("q"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, list)
}

// MovieDetails 电影详情，无法解析的 id 视为不存在
func (h *Handler) MovieDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Fail(c, apperrors.NotFound("movie", c.Param("id")))
		return
	}

	details, err := h.Catalog.GetDetails(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, details)
}

// ==================== 管理员操作 ====================

// CreateMovie 新建电影
func (h *Handler) CreateMovie(c *gin.Context) {
	var in model.MovieInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	movie, err := h.Catalog.Create(c.Request.Context(), in)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, movie)
}

// UpdateMovie 整体更新电影字段
func (h *Handler) UpdateMovie(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}

	var in model.MovieInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	movie, err := h.Catalog.Update(c.Request.Context(), id, in)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, movie)
}

// DeleteMovie 删除电影及其影评、收藏
func (h *Handler) DeleteMovie(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.Fail(c, err)
		return
	}

	if err := h.Catalog.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.SuccessWithMessage(c, "已删除", gin.H{"movie_id": id})
}

// FetchMovies 按标题搜索外部元数据
func (h *Handler) FetchMovies(c *gin.Context) {
	results, err := h.Catalog.ImportFromMetadata(c.Request.Context(), c.Query("title"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, results)
}

// FetchMovieDetails 外部元数据详情，映射为电影表单
func (h *Handler) FetchMovieDetails(c *gin.Context) {
	id, err := paramID(c, "tmdbId")
	if err != nil {
		utils.Fail(c, err)
		return
	}

	in, err := h.Catalog.FetchMetadataDetails(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, in)
}

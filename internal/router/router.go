package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/deadpan/internal/handler"
	"github.com/user/deadpan/internal/middleware"
)

const sessionName = "deadpan_session"

// New 创建 Gin 引擎并挂载中间件与路由
func New(h *handler.Handler) *gin.Engine {
	if h.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Session：两步验证待定用户、OAuth state
	store := cookie.NewStore([]byte(h.Config.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 天
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	secret := h.Config.AppSecret

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 公开页面 ====================
	public := r.Group("")
	public.Use(middleware.OptionalAuth(secret))
	{
		public.GET("/", h.Home)
		public.GET("/movies", h.ListMovies)
		public.GET("/movies/:id", h.MovieDetails)
	}

	// ==================== 电影管理（管理员）====================
	movies := r.Group("/movies")
	movies.Use(middleware.RequireAuth(secret), middleware.RequireAdmin())
	{
		movies.POST("", h.CreateMovie)
		movies.PUT("/:id", h.UpdateMovie)
		movies.DELETE("/:id", h.DeleteMovie)
		movies.GET("/fetch", h.FetchMovies)
		movies.GET("/fetch/:tmdbId", h.FetchMovieDetails)
	}

	// ==================== 影评（需要登录）====================
	reviews := r.Group("/reviews")
	reviews.Use(middleware.RequireAuth(secret))
	{
		reviews.POST("/comment", h.Comment)
		reviews.POST("/rate", h.Rate)
		reviews.DELETE("/:id", h.DeleteReview)
	}

	// ==================== 个人主页（需要登录）====================
	profile := r.Group("/profile")
	profile.Use(middleware.RequireAuth(secret))
	{
		profile.GET("", h.ShowProfile)
		profile.POST("/favorites/:movieId", h.ToggleFavorite)
	}

	// ==================== 用户管理 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(secret), middleware.RequireAdmin())
	{
		admin.GET("/users", h.AdminUsers)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
	}

	// ==================== 账号 ====================
	account := r.Group("/account")
	{
		account.POST("/register", h.Register)
		account.POST("/login", h.Login)
		account.POST("/verify-code", h.VerifyCode)
		account.POST("/logout", h.Logout)
		account.GET("/external-login", h.ExternalLogin)
		account.GET("/external-login/callback", h.ExternalLoginCallback)
	}
}

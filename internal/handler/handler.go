package handler

import (
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/config"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/model"
	"github.com/user/deadpan/internal/repository"
	"github.com/user/deadpan/internal/service"
	"github.com/user/deadpan/internal/utils"
	"golang.org/x/oauth2"
)

// Session 键
const (
	sessionPendingUser = "pending_user_id"
	sessionOAuthState  = "oauth_state"
	sessionRedirect    = "login_redirect"
	sessionUserInfo    = "userinfo"
)

// Handler HTTP 处理器
type Handler struct {
	Config    *config.Config
	Catalog   *service.CatalogService
	Reviews   *service.ReviewService
	Favorites *service.FavoritesService
	Homepage  *service.HomepageService
	Admin     *service.AdminService
	Profile   *service.ProfileService
	Identity  service.Identity

	// Google 外部登录，未配置时为 nil
	OAuth          *oauth2.Config
	UserInfoURL    string
	UserInfoClient *utils.HTTPClient
}

// NewHandler 创建处理器
func NewHandler(
	cfg *config.Config,
	repos *repository.Repositories,
	metadata service.MetadataClient,
	identity service.Identity,
	sampler service.Sampler,
) *Handler {
	h := &Handler{
		Config:    cfg,
		Catalog:   service.NewCatalogService(repos, metadata),
		Reviews:   service.NewReviewService(repos),
		Favorites: service.NewFavoritesService(repos),
		Homepage:  service.NewHomepageService(repos, sampler),
		Admin:     service.NewAdminService(repos),
		Profile:   service.NewProfileService(repos),
		Identity:  identity,
	}

	if cfg.GoogleEnabled() {
		h.OAuth = newGoogleOAuth(cfg.Google)
		h.UserInfoURL = googleUserInfoURL
		h.UserInfoClient = utils.NewHTTPClient(utils.HTTPClientConfig{
			Name:    "google",
			Timeout: 10 * time.Second,
		})
	}

	return h
}

// paramID 解析路径中的整数 ID
func paramID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid " + name)
	}
	return id, nil
}

// bind 按 Content-Type 绑定 JSON 或表单
func bind(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBind(obj); err != nil {
		return apperrors.InvalidInput("请求参数格式错误")
	}
	return nil
}

// issueSession 签发登录 Cookie 并记录会话中的用户信息
func (h *Handler) issueSession(c *gin.Context, user *model.User) error {
	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		return err
	}
	middleware.SetTokenCookie(c, token, h.Config.JWTExpiry)

	session := sessions.Default(c)
	session.Delete(sessionPendingUser)
	session.Set(sessionUserInfo, user.DisplayName())
	return session.Save()
}

// safeRedirect 只允许站内相对路径
func safeRedirect(redirect string) string {
	if len(redirect) == 0 || redirect[0] != '/' || (len(redirect) > 1 && (redirect[1] == '/' || redirect[1] == '\\')) {
		return "/"
	}
	return redirect
}

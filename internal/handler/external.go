package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/config"
	"github.com/user/deadpan/internal/logging"
	"github.com/user/deadpan/internal/service"
	"github.com/user/deadpan/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	googleProvider    = "Google"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func newGoogleOAuth(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     endpoints.Google,
	}
}

// ExternalLogin 跳转到 Google 授权页
func (h *Handler) ExternalLogin(c *gin.Context) {
	if h.OAuth == nil {
		utils.NotFound(c, "未启用外部登录")
		return
	}

	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionOAuthState, state)
	session.Set(sessionRedirect, safeRedirect(c.Query("redirect")))
	if err := session.Save(); err != nil {
		utils.Fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(state))
}

// ExternalLoginCallback Google 回调：校验 state，换取 token 并读取邮箱
func (h *Handler) ExternalLoginCallback(c *gin.Context) {
	if h.OAuth == nil {
		utils.NotFound(c, "未启用外部登录")
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(sessionOAuthState).(string)
	redirect, _ := session.Get(sessionRedirect).(string)
	session.Delete(sessionOAuthState)
	session.Delete(sessionRedirect)
	_ = session.Save()

	if expected == "" || c.Query("state") != expected {
		utils.BadRequest(c, "登录状态无效，请重试")
		return
	}
	if e := c.Query("error"); e != "" {
		utils.Unauthorized(c, "外部登录已取消: "+e)
		return
	}

	ctx := c.Request.Context()
	token, err := h.OAuth.Exchange(ctx, c.Query("code"))
	if err != nil {
		logging.Warn().Err(err).Msg("[Auth] Google 授权码兑换失败")
		utils.Fail(c, apperrors.Upstream(err))
		return
	}

	var info googleUserInfo
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token.AccessToken)
	if err := h.UserInfoClient.GetJSON(ctx, h.UserInfoURL, header, &info); err != nil {
		utils.Fail(c, apperrors.Upstream(err))
		return
	}

	email := info.Email
	if !info.EmailVerified {
		email = ""
	}
	result, err := h.Identity.ExternalProviderCallback(ctx, service.ExternalLoginInfo{
		Provider:    googleProvider,
		ProviderKey: info.Sub,
		Email:       email,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	if result.Status != service.SignInSuccess {
		// 需要两步验证时记录待验证用户，与密码登录一致
		h.respondSignIn(c, result, safeRedirect(redirect))
		return
	}
	if err := h.issueSession(c, result.User); err != nil {
		utils.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeRedirect(redirect))
}

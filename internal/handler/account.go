package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/middleware"
	"github.com/user/deadpan/internal/service"
	"github.com/user/deadpan/internal/utils"
)

// ==================== 账号 ====================

// LoginInput 登录表单
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Redirect string `json:"redirect" form:"redirect"`
}

// VerifyCodeInput 两步验证表单
type VerifyCodeInput struct {
	Code     string `json:"code" form:"code"`
	Redirect string `json:"redirect" form:"redirect"`
}

// Register 注册并直接登录
func (h *Handler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	user, err := h.Identity.Register(c.Request.Context(), in)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	if err := h.issueSession(c, user); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, user.Summary())
}

// Login 邮箱密码登录
func (h *Handler) Login(c *gin.Context) {
	var in LoginInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	result, err := h.Identity.SignIn(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	h.respondSignIn(c, result, safeRedirect(in.Redirect))
}

// VerifyCode 校验两步验证码，待验证用户记录在 Session 中
func (h *Handler) VerifyCode(c *gin.Context) {
	var in VerifyCodeInput
	if err := bind(c, &in); err != nil {
		utils.Fail(c, err)
		return
	}

	session := sessions.Default(c)
	userID, _ := session.Get(sessionPendingUser).(string)
	if userID == "" {
		utils.Unauthorized(c, "登录已过期，请重新登录")
		return
	}

	result, err := h.Identity.TwoFactorVerify(c.Request.Context(), userID, in.Code)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if result.Status == service.SignInFailure {
		utils.Unauthorized(c, "验证码错误")
		return
	}
	h.respondSignIn(c, result, safeRedirect(in.Redirect))
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)

	// 清理 Session
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	utils.SuccessWithMessage(c, "已退出登录", nil)
}

// respondSignIn 按登录结果输出响应
func (h *Handler) respondSignIn(c *gin.Context, result *service.SignInResult, redirect string) {
	switch result.Status {
	case service.SignInSuccess:
		if err := h.issueSession(c, result.User); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, gin.H{
			"status":   result.Status,
			"user":     result.User.Summary(),
			"redirect": redirect,
		})
	case service.SignInRequiresVerification:
		session := sessions.Default(c)
		session.Set(sessionPendingUser, result.User.ID)
		if err := session.Save(); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.SuccessWithMessage(c, "验证码已发送", gin.H{
			"status":   result.Status,
			"redirect": redirect,
		})
	case service.SignInLockedOut:
		utils.Error(c, http.StatusForbidden, "账号已被锁定，请稍后再试")
	default:
		utils.Unauthorized(c, "邮箱或密码错误")
	}
}


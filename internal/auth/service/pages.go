package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/web"
	"go.uber.org/zap"
)

// 页面路径
const (
	DashboardPath = "/dashboard"
	RegisterPath  = "/register"
)

// authForm 登录/注册表单
type authForm struct {
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
}

// Index 根路径按登录状态跳转
func (s *AuthService) Index(c *gin.Context) {
	if s.authUC.AlreadyLoggedIn(c.Request.Context(), s.cookie.Read(c)) {
		c.Redirect(http.StatusFound, DashboardPath)
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

// LoginPage 登录页，已登录时跳转控制台
func (s *AuthService) LoginPage(c *gin.Context) {
	if s.authUC.AlreadyLoggedIn(c.Request.Context(), s.cookie.Read(c)) {
		c.Redirect(http.StatusFound, DashboardPath)
		return
	}

	flash := web.PopFlash(c)
	if flash == nil && c.Query("expired") != "" {
		flash = web.ErrorFlash(apperrors.GetMessage(apperrors.ErrAuthSessionExpired))
	}
	if flash == nil && !s.authUC.Configured() {
		flash = web.ErrorFlash(apperrors.GetMessage(apperrors.ErrAuthNotConfigured))
	}
	s.renderAuthPage(c, http.StatusOK, "login.html", "Login", "", flash)
}

// LoginSubmit 处理登录表单
func (s *AuthService) LoginSubmit(c *gin.Context) {
	var form authForm
	_ = c.ShouldBind(&form)

	sid := s.cookie.Issue(c)
	if _, err := s.authUC.Login(c.Request.Context(), sid, form.Email, form.Password); err != nil {
		s.logger.Warn("login failed", zap.Error(err), zap.String("ip", c.ClientIP()))
		s.renderAuthPage(c, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)), "login.html", "Login", form.Email,
			web.ErrorFlash(apperrors.UserMessage(err)))
		return
	}

	web.Redirect(c, DashboardPath, web.FlashSuccess, "Login successful")
}

// RegisterPage 注册页，已登录时跳转控制台
func (s *AuthService) RegisterPage(c *gin.Context) {
	if s.authUC.AlreadyLoggedIn(c.Request.Context(), s.cookie.Read(c)) {
		c.Redirect(http.StatusFound, DashboardPath)
		return
	}

	flash := web.PopFlash(c)
	if flash == nil && !s.authUC.Configured() {
		flash = web.ErrorFlash(apperrors.GetMessage(apperrors.ErrAuthNotConfigured))
	}
	s.renderAuthPage(c, http.StatusOK, "register.html", "Register", "", flash)
}

// RegisterSubmit 处理注册表单
// 服务端直接签发令牌时进入控制台，否则提示确认邮箱后登录
func (s *AuthService) RegisterSubmit(c *gin.Context) {
	var form authForm
	_ = c.ShouldBind(&form)

	sid := s.cookie.Issue(c)
	result, err := s.authUC.Register(c.Request.Context(), sid, form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		s.logger.Warn("register failed", zap.Error(err), zap.String("ip", c.ClientIP()))
		s.renderAuthPage(c, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)), "register.html", "Register", form.Email,
			web.ErrorFlash(apperrors.UserMessage(err)))
		return
	}

	if result.ConfirmationRequired {
		s.cookie.Clear(c)
		web.Redirect(c, middleware.LoginPath, web.FlashSuccess, "Registration successful. Confirm your email, then log in.")
		return
	}
	web.Redirect(c, DashboardPath, web.FlashSuccess, "Registration successful")
}

// LogoutSubmit 退出登录
func (s *AuthService) LogoutSubmit(c *gin.Context) {
	if err := s.authUC.Logout(c.Request.Context(), s.cookie.Read(c)); err != nil {
		s.logger.Error("logout failed", zap.Error(err))
	}
	s.cookie.Clear(c)
	web.Redirect(c, middleware.LoginPath, web.FlashSuccess, "Logout successful")
}

// RateLimited 页面请求超限时的提示
func RateLimited(location string) func(c *gin.Context, retryAfter int) {
	return func(c *gin.Context, retryAfter int) {
		web.Redirect(c, location, web.FlashError, apperrors.FormatError(apperrors.ErrTooManyRequests))
	}
}

func (s *AuthService) renderAuthPage(c *gin.Context, status int, name, title, email string, flash *web.Flash) {
	web.Render(c, status, name, gin.H{
		"Title":      title,
		"Email":      email,
		"Configured": s.authUC.Configured(),
		"UserEmail":  "",
		"Flash":      flash,
	})
}

// RegisterPages 注册页面路由
func (s *AuthService) RegisterPages(r gin.IRouter, limiters Limiters) {
	r.GET("/", s.Index)
	r.GET(middleware.LoginPath, s.LoginPage)
	r.POST(middleware.LoginPath, withLimiter(limiters.Login, s.LoginSubmit)...)
	r.GET(RegisterPath, s.RegisterPage)
	r.POST(RegisterPath, withLimiter(limiters.Register, s.RegisterSubmit)...)
	r.POST("/logout", s.LogoutSubmit)
}

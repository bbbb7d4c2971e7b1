package service

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/model-catalog/internal/auth"
	"github.com/lk2023060901/model-catalog/internal/auth/biz"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	"github.com/lk2023060901/model-catalog/internal/auth/store"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/response"
	"go.uber.org/zap"
)

// AuthService 认证服务（页面与 JSON API）
type AuthService struct {
	authUC *biz.AuthUseCase
	cookie *middleware.SessionCookie
	logger *logger.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(authUC *biz.AuthUseCase, cookie *middleware.SessionCookie, log *logger.Logger) *AuthService {
	return &AuthService{
		authUC: authUC,
		cookie: cookie,
		logger: log,
	}
}

// Limiters 登录/注册的限流中间件，未启用时为 nil
type Limiters struct {
	Login    gin.HandlerFunc
	Register gin.HandlerFunc
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// TokenResponse 登录成功后返回的令牌
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresAt    int64           `json:"expires_at,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// RegisterResponse 注册结果；需要邮箱确认时不含令牌
type RegisterResponse struct {
	ConfirmationRequired bool           `json:"confirmation_required"`
	Session              *TokenResponse `json:"session,omitempty"`
}

// MeResponse 当前令牌的声明
type MeResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

func toTokenResponse(s *store.Session) *TokenResponse {
	if s == nil || s.Token == nil {
		return nil
	}
	resp := &TokenResponse{
		AccessToken:  s.Token.AccessToken,
		TokenType:    s.Token.TokenType,
		RefreshToken: s.Token.RefreshToken,
		User:         s.User,
	}
	if !s.Token.Expiry.IsZero() {
		resp.ExpiresAt = s.Token.Expiry.Unix()
	}
	return resp
}

// Login 用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Router /api/v1/auth/login [post]
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := s.authUC.Login(c.Request.Context(), "", req.Email, req.Password)
	if err != nil {
		s.logger.Warn("api login failed", zap.Error(err), zap.String("ip", c.ClientIP()))
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Login successful", toTokenResponse(session))
}

// Register 用户注册
// @Summary 用户注册
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Router /api/v1/auth/register [post]
func (s *AuthService) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.authUC.Register(c.Request.Context(), "", req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		s.logger.Warn("api register failed", zap.Error(err), zap.String("ip", c.ClientIP()))
		response.HandleError(c, err)
		return
	}

	message := "Registration successful"
	if result.ConfirmationRequired {
		message = "Registration successful. Confirm your email, then log in."
	}
	response.Created(c, message, RegisterResponse{
		ConfirmationRequired: result.ConfirmationRequired,
		Session:              toTokenResponse(result.Session),
	})
}

// Logout 注销当前令牌
// @Router /api/v1/auth/logout [post]
func (s *AuthService) Logout(c *gin.Context) {
	if err := s.authUC.RevokeToken(c.Request.Context(), middleware.GetAccessToken(c)); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Logout successful", nil)
}

// Me 返回当前令牌的用户信息
// @Router /api/v1/auth/me [get]
func (s *AuthService) Me(c *gin.Context) {
	claims, err := auth.DecodeClaims(middleware.GetAccessToken(c))
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	resp := MeResponse{
		UserID: claims.UserID(),
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.Unix()
	}
	response.Success(c, resp)
}

// RegisterRoutes 注册 API 路由
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, bearer gin.HandlerFunc, limiters Limiters) {
	group := r.Group("/auth")
	{
		// 公开端点
		group.POST("/login", withLimiter(limiters.Login, s.Login)...)
		group.POST("/register", withLimiter(limiters.Register, s.Register)...)

		// 需要 Bearer 令牌
		group.POST("/logout", bearer, s.Logout)
		group.GET("/me", bearer, s.Me)
	}
}

func withLimiter(limiter, handler gin.HandlerFunc) []gin.HandlerFunc {
	if limiter == nil {
		return []gin.HandlerFunc{handler}
	}
	return []gin.HandlerFunc{limiter, handler}
}

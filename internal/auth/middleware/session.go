package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/model-catalog/internal/auth"
	"github.com/lk2023060901/model-catalog/internal/auth/biz"
	"github.com/lk2023060901/model-catalog/internal/auth/store"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/response"
	"go.uber.org/zap"
)

// gin 上下文中的键
const (
	ContextKeySession     = "session"
	ContextKeySessionID   = "session_id"
	ContextKeyAccessToken = "access_token"
	ContextKeyUserID      = "user_id"
	ContextKeyEmail       = "email"
)

// LoginPath 会话失效时跳转的页面
const LoginPath = "/login"

// SessionCookie 保存会话 id 的 cookie
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Read 读取会话 id，不存在时为空
func (sc *SessionCookie) Read(c *gin.Context) string {
	sid, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return sid
}

// Issue 生成新的会话 id 并写入 cookie
func (sc *SessionCookie) Issue(c *gin.Context) string {
	sid := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, sid, int(sc.MaxAge.Seconds()), "/", "", sc.Secure, true)
	return sid
}

// Clear 删除 cookie
func (sc *SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", "", sc.Secure, true)
}

// RequireSession 页面认证中间件
// 会话缺失或过期时清除 cookie 并跳转登录页（API 请求返回 401）
func RequireSession(authUC *biz.AuthUseCase, cookie *SessionCookie, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := cookie.Read(c)
		session, err := authUC.Current(c.Request.Context(), sid)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrAuthSessionExpired) {
				log.Error("failed to load session", zap.Error(err))
			}
			cookie.Clear(c)
			if wantsJSON(c) {
				response.HandleError(c, err)
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, LoginPath+"?expired=1")
			c.Abort()
			return
		}

		c.Set(ContextKeySessionID, sid)
		c.Set(ContextKeySession, session)
		setIdentity(c, session.AccessToken())
		c.Next()
	}
}

// BearerAuth API 认证中间件
// 过期令牌在本地直接拒绝，不发起外部请求
func BearerAuth(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, err.Error())
			c.Abort()
			return
		}

		if auth.IsExpired(token, time.Now()) {
			log.Debug("rejected expired bearer token", zap.String("ip", c.ClientIP()))
			response.ErrorWithCode(c, apperrors.ErrAuthSessionExpired)
			c.Abort()
			return
		}

		setIdentity(c, token)
		c.Next()
	}
}

// setIdentity 注入令牌与用户信息，并把 user_id 带入请求日志
func setIdentity(c *gin.Context, token string) {
	c.Set(ContextKeyAccessToken, token)

	claims, err := auth.DecodeClaims(token)
	if err != nil {
		return
	}
	c.Set(ContextKeyUserID, claims.UserID())
	c.Set(ContextKeyEmail, claims.Email)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID()))
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GetAccessToken 从上下文获取访问令牌
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ContextKeyAccessToken)
}

// GetUserID 从上下文获取用户 ID（令牌 sub）
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextKeyUserID)
	return userID, userID != ""
}

// GetEmail 从上下文获取用户邮箱
func GetEmail(c *gin.Context) (string, bool) {
	email := c.GetString(ContextKeyEmail)
	return email, email != ""
}

// GetSessionID 从上下文获取会话 id
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}

// GetSession 从上下文获取会话
func GetSession(c *gin.Context) (*store.Session, bool) {
	v, exists := c.Get(ContextKeySession)
	if !exists {
		return nil, false
	}
	session, ok := v.(*store.Session)
	return session, ok
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

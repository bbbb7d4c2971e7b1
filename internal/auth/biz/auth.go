package biz

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lk2023060901/model-catalog/internal/auth"
	"github.com/lk2023060901/model-catalog/internal/auth/store"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/supabase"
	"go.uber.org/zap"
)

// MinPasswordLength 注册密码最小长度
const MinPasswordLength = 6

// AuthClient 外部认证服务
type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.AuthResponse, error)
	SignUp(ctx context.Context, email, password string) (*supabase.AuthResponse, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

// RegisterResult 注册结果
// ConfirmationRequired 为 true 时服务端未签发令牌，用户需确认邮箱后再登录
type RegisterResult struct {
	Session              *store.Session
	ConfirmationRequired bool
}

// AuthUseCase 认证业务逻辑
type AuthUseCase struct {
	client AuthClient
	store  store.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewAuthUseCase client 为 nil 表示外部服务未配置，登录与注册将返回 ErrAuthNotConfigured
func NewAuthUseCase(client AuthClient, sessions store.Store, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		client: client,
		store:  sessions,
		logger: log.Named("auth"),
		now:    time.Now,
	}
}

// Configured 外部认证服务是否可用
func (uc *AuthUseCase) Configured() bool {
	return uc.client != nil
}

// Login 用户登录
// sid 为空时不保存会话（API 客户端自行持有令牌）
func (uc *AuthUseCase) Login(ctx context.Context, sid, email, password string) (*store.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.New(apperrors.ErrAuthMissingCredentials)
	}
	if !uc.Configured() {
		return nil, apperrors.New(apperrors.ErrAuthNotConfigured)
	}

	resp, err := uc.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, uc.upstreamError(err, apperrors.ErrAuthInvalidCredentials, "error_description")
	}

	session := uc.newSession(resp)
	if err := uc.save(ctx, sid, session); err != nil {
		return nil, err
	}

	uc.logger.Info("user logged in", zap.String("email", email))
	return session, nil
}

// Register 用户注册
func (uc *AuthUseCase) Register(ctx context.Context, sid, email, password, confirm string) (*RegisterResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || confirm == "" {
		return nil, apperrors.New(apperrors.ErrAuthMissingFields)
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.New(apperrors.ErrAuthWeakPassword)
	}
	if password != confirm {
		return nil, apperrors.New(apperrors.ErrAuthPasswordMismatch)
	}
	if !uc.Configured() {
		return nil, apperrors.New(apperrors.ErrAuthNotConfigured)
	}

	resp, err := uc.client.SignUp(ctx, email, password)
	if err != nil {
		return nil, uc.upstreamError(err, apperrors.ErrAuthRegisterFailed, "error_description", "msg")
	}

	if !resp.HasSession() {
		uc.logger.Info("user registered, confirmation pending", zap.String("email", email))
		return &RegisterResult{ConfirmationRequired: true}, nil
	}

	session := uc.newSession(resp)
	if err := uc.save(ctx, sid, session); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("email", email))
	return &RegisterResult{Session: session}, nil
}

// Logout 退出登录：尽力通知服务端，然后删除本地令牌与用户数据
func (uc *AuthUseCase) Logout(ctx context.Context, sid string) error {
	session, err := uc.store.Load(ctx, sid)
	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if token := session.AccessToken(); token != "" && uc.Configured() && !auth.IsExpired(token, uc.now()) {
		if err := uc.client.SignOut(ctx, token); err != nil {
			uc.logger.Warn("remote sign out failed", zap.Error(err))
		}
	}

	return uc.DropSession(ctx, sid)
}

// RevokeToken 通知服务端注销令牌（API 客户端退出）
func (uc *AuthUseCase) RevokeToken(ctx context.Context, token string) error {
	if !uc.Configured() {
		return apperrors.New(apperrors.ErrAuthNotConfigured)
	}
	if err := uc.client.SignOut(ctx, token); err != nil {
		if supabase.IsUnauthorized(err) {
			return apperrors.Wrap(err, apperrors.ErrAuthSessionExpired)
		}
		return apperrors.Wrap(err, apperrors.ErrServiceUnavail)
	}
	return nil
}

// DropSession 删除本地会话，不通知服务端（服务端已拒绝令牌时使用）
func (uc *AuthUseCase) DropSession(ctx context.Context, sid string) error {
	if err := uc.store.Delete(ctx, sid); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return nil
}

// Current 返回有效会话
// 令牌过期且持有 refresh token 时刷新一次；否则删除会话并返回 ErrAuthSessionExpired
func (uc *AuthUseCase) Current(ctx context.Context, sid string) (*store.Session, error) {
	if sid == "" {
		return nil, apperrors.New(apperrors.ErrAuthSessionExpired)
	}

	session, err := uc.store.Load(ctx, sid)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, apperrors.New(apperrors.ErrAuthSessionExpired)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if !auth.IsExpired(session.AccessToken(), uc.now()) {
		return session, nil
	}

	if refreshed := uc.refresh(ctx, sid, session); refreshed != nil {
		return refreshed, nil
	}

	_ = uc.store.Delete(ctx, sid)
	return nil, apperrors.New(apperrors.ErrAuthSessionExpired)
}

// AlreadyLoggedIn 登录/注册页据此直接跳转到控制台
func (uc *AuthUseCase) AlreadyLoggedIn(ctx context.Context, sid string) bool {
	if sid == "" {
		return false
	}
	session, err := uc.store.Load(ctx, sid)
	if err != nil {
		return false
	}
	return !auth.IsExpired(session.AccessToken(), uc.now())
}

func (uc *AuthUseCase) refresh(ctx context.Context, sid string, session *store.Session) *store.Session {
	if session.Token == nil || session.Token.RefreshToken == "" || !uc.Configured() {
		return nil
	}

	resp, err := uc.client.RefreshSession(ctx, session.Token.RefreshToken)
	if err != nil || !resp.HasSession() {
		uc.logger.Info("session refresh failed", zap.Error(err))
		return nil
	}

	refreshed := uc.newSession(resp)
	if len(refreshed.User) == 0 {
		refreshed.User = session.User
	}
	if err := uc.store.Save(ctx, sid, refreshed); err != nil {
		uc.logger.Error("failed to save refreshed session", zap.Error(err))
		return nil
	}
	return refreshed
}

func (uc *AuthUseCase) save(ctx context.Context, sid string, session *store.Session) error {
	if sid == "" {
		return nil
	}
	if err := uc.store.Save(ctx, sid, session); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return nil
}

func (uc *AuthUseCase) newSession(resp *supabase.AuthResponse) *store.Session {
	now := uc.now()
	return &store.Session{
		Token:     resp.Token(now),
		User:      resp.User,
		CreatedAt: now,
	}
}

// upstreamError 服务端拒绝时优先展示其返回的原因；网络等错误归为服务不可用
func (uc *AuthUseCase) upstreamError(err error, code int, fields ...string) error {
	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) {
		uc.logger.Error("auth service unreachable", zap.Error(err))
		return apperrors.Wrap(err, apperrors.ErrServiceUnavail)
	}

	for _, field := range fields {
		if msg := apiErr.Field(field); msg != "" {
			return apperrors.Wrap(err, code, msg)
		}
	}
	return apperrors.Wrap(err, code)
}

package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// AuthResponse 认证接口返回的会话
//
// 注册在需要邮箱确认时只返回用户对象，此时 AccessToken 为空、User 为整个响应体。
type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	ExpiresAt    int64           `json:"expires_at"`
	RefreshToken string          `json:"refresh_token"`
	User         json.RawMessage `json:"user"`
}

// HasSession 响应是否携带访问令牌
func (r *AuthResponse) HasSession() bool {
	return r.AccessToken != ""
}

// Token 转换为 oauth2.Token；无会话时返回 nil
func (r *AuthResponse) Token(now time.Time) *oauth2.Token {
	if !r.HasSession() {
		return nil
	}

	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
	}
	switch {
	case r.ExpiresAt > 0:
		tok.Expiry = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		tok.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return tok
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInWithPassword 邮箱密码登录
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   credentials{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUp 注册新用户
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthResponse, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/signup",
		body:   credentials{Email: email, Password: password},
	}, &raw)
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, err
		}
	}
	if !resp.HasSession() && len(resp.User) == 0 {
		resp.User = raw
	}
	return &resp, nil
}

// RefreshSession 使用 refresh token 换取新会话
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": refreshToken},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignOut 在服务端注销会话
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   authPath + "/logout",
		token:  accessToken,
	}, nil)
}

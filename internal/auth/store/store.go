package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// Session 客户端保存的登录状态：访问令牌与登录时返回的用户对象
type Session struct {
	Token     *oauth2.Token   `json:"token"`
	User      json.RawMessage `json:"user,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AccessToken 返回访问令牌，未登录时为空
func (s *Session) AccessToken() string {
	if s == nil || s.Token == nil {
		return ""
	}
	return s.Token.AccessToken
}

// Store 会话存储接口
type Store interface {
	// Save 保存会话，覆盖同 id 的旧会话
	Save(ctx context.Context, id string, session *Session) error

	// Load 加载会话，不存在时返回 ErrSessionNotFound
	Load(ctx context.Context, id string) (*Session, error)

	// Delete 删除会话（令牌与用户数据一并删除），不存在时不报错
	Delete(ctx context.Context, id string) error
}

package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrMissingFilter 拒绝不带过滤条件的整表更新或删除
var ErrMissingFilter = errors.New("supabase: update and delete require a filter")

// Eq 构造 PostgREST 等值过滤，例如 Eq("id", "7") => id=eq.7
func Eq(column, value string) url.Values {
	return url.Values{column: {"eq." + value}}
}

// Select 查询表记录，query 为 PostgREST 参数（select、order、过滤条件）
func (c *Client) Select(ctx context.Context, token, table string, query url.Values, result interface{}) error {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   restPath + "/" + table,
		query:  query,
		token:  token,
	}, result)
}

// Insert 插入记录并返回插入后的行
func (c *Client) Insert(ctx context.Context, token, table string, body, result interface{}) error {
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    restPath + "/" + table,
		token:   token,
		body:    body,
		headers: map[string]string{"Prefer": "return=representation"},
	}, result)
}

// Update 按过滤条件更新记录
func (c *Client) Update(ctx context.Context, token, table string, filter url.Values, body interface{}) error {
	if len(filter) == 0 {
		return ErrMissingFilter
	}
	return c.do(ctx, request{
		method: http.MethodPatch,
		path:   restPath + "/" + table,
		query:  filter,
		token:  token,
		body:   body,
	}, nil)
}

// Delete 按过滤条件删除记录
func (c *Client) Delete(ctx context.Context, token, table string, filter url.Values) error {
	if len(filter) == 0 {
		return ErrMissingFilter
	}
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   restPath + "/" + table,
		query:  filter,
		token:  token,
	}, nil)
}

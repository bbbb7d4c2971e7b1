package data

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/lk2023060901/model-catalog/internal/catalog/biz"
	"github.com/lk2023060901/model-catalog/internal/supabase"
)

// ModelsTable 模型记录所在的表
const ModelsTable = "models"

// ModelRepo 基于 REST 接口的模型仓库
// 行级权限由服务端根据访问令牌判定
type ModelRepo struct {
	client *supabase.Client
}

// NewModelRepo 创建模型仓库
func NewModelRepo(client *supabase.Client) biz.ModelRepo {
	return &ModelRepo{client: client}
}

// List 查询全部模型
func (r *ModelRepo) List(ctx context.Context, token, order string) ([]*biz.Model, error) {
	query := url.Values{"select": {"*"}}
	if order != "" {
		query.Set("order", order)
	}

	var models []*biz.Model
	if err := r.client.Select(ctx, token, ModelsTable, query, &models); err != nil {
		return nil, translate(err)
	}
	return models, nil
}

// Get 根据 ID 获取模型
func (r *ModelRepo) Get(ctx context.Context, token, id string) (*biz.Model, error) {
	query := supabase.Eq("id", id)
	query.Set("select", "*")

	var models []*biz.Model
	if err := r.client.Select(ctx, token, ModelsTable, query, &models); err != nil {
		return nil, translate(err)
	}
	if len(models) == 0 {
		return nil, biz.ErrNotFound
	}
	return models[0], nil
}

// Create 插入模型并返回服务端生成的记录
func (r *ModelRepo) Create(ctx context.Context, token string, payload *biz.ModelPayload) (*biz.Model, error) {
	var models []*biz.Model
	if err := r.client.Insert(ctx, token, ModelsTable, payload, &models); err != nil {
		return nil, translate(err)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("insert returned no rows")
	}
	return models[0], nil
}

// Update 更新模型
func (r *ModelRepo) Update(ctx context.Context, token, id string, payload *biz.ModelPayload) error {
	return translate(r.client.Update(ctx, token, ModelsTable, supabase.Eq("id", id), payload))
}

// Delete 删除模型
func (r *ModelRepo) Delete(ctx context.Context, token, id string) error {
	return translate(r.client.Delete(ctx, token, ModelsTable, supabase.Eq("id", id)))
}

// translate 把 401 与未配置转换为业务层错误
func translate(err error) error {
	if err == nil {
		return nil
	}
	if supabase.IsUnauthorized(err) {
		return fmt.Errorf("%w: %v", biz.ErrUnauthorized, err)
	}
	if errors.Is(err, supabase.ErrNotConfigured) {
		return biz.ErrNotConfigured
	}
	return err
}

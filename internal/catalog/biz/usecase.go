package biz

import (
	"context"
	"errors"

	"github.com/lk2023060901/model-catalog/internal/auth"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"go.uber.org/zap"
)

// 列表排序
const (
	OrderNewestFirst = "created_at.desc"
	OrderByName      = "name.asc"
)

var (
	// ErrUnauthorized 服务端拒绝了访问令牌
	ErrUnauthorized = errors.New("access token rejected")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("model not found")
	// ErrNotConfigured 数据服务未配置
	ErrNotConfigured = errors.New("data service not configured")
)

// ModelRepo 模型仓储接口，token 为当前用户的访问令牌
type ModelRepo interface {
	List(ctx context.Context, token, order string) ([]*Model, error)
	Get(ctx context.Context, token, id string) (*Model, error)
	Create(ctx context.Context, token string, payload *ModelPayload) (*Model, error)
	Update(ctx context.Context, token, id string, payload *ModelPayload) error
	Delete(ctx context.Context, token, id string) error
}

// ModelUseCase 模型业务逻辑
type ModelUseCase struct {
	repo   ModelRepo
	logger *logger.Logger
}

// NewModelUseCase 创建模型业务逻辑
func NewModelUseCase(repo ModelRepo, log *logger.Logger) *ModelUseCase {
	return &ModelUseCase{
		repo:   repo,
		logger: log.Named("catalog"),
	}
}

// ListForDashboard 控制台列表，最新的在前
func (uc *ModelUseCase) ListForDashboard(ctx context.Context, token string) ([]*Model, error) {
	models, err := uc.repo.List(ctx, token, OrderNewestFirst)
	if err != nil {
		return nil, uc.mapError(ctx, err, apperrors.ErrModelLoadFailed)
	}
	return models, nil
}

// ListForComparison 对比页下拉列表，按名称排序
func (uc *ModelUseCase) ListForComparison(ctx context.Context, token string) ([]*Model, error) {
	models, err := uc.repo.List(ctx, token, OrderByName)
	if err != nil {
		return nil, uc.mapError(ctx, err, apperrors.ErrModelLoadFailed)
	}
	return models, nil
}

// Get 获取单个模型
func (uc *ModelUseCase) Get(ctx context.Context, token, id string) (*Model, error) {
	if id == "" {
		return nil, apperrors.New(apperrors.ErrModelNotFound)
	}
	model, err := uc.repo.Get(ctx, token, id)
	if err != nil {
		return nil, uc.mapError(ctx, err, apperrors.ErrModelLoadFailed)
	}
	return model, nil
}

// Create 新增模型，user_id 取自令牌
func (uc *ModelUseCase) Create(ctx context.Context, token string, input *ModelInput) (*Model, error) {
	payload, err := input.Validate(ownerOf(token))
	if err != nil {
		return nil, err
	}

	model, err := uc.repo.Create(ctx, token, payload)
	if err != nil {
		return nil, uc.mapError(ctx, err, apperrors.ErrModelCreateFailed)
	}

	uc.logger.WithContext(ctx).Info("model created", zap.String("model_id", model.ID.String()), zap.String("name", model.Name))
	return model, nil
}

// Update 更新模型
func (uc *ModelUseCase) Update(ctx context.Context, token, id string, input *ModelInput) error {
	if id == "" {
		return apperrors.New(apperrors.ErrModelNotFound)
	}
	payload, err := input.Validate(ownerOf(token))
	if err != nil {
		return err
	}

	if err := uc.repo.Update(ctx, token, id, payload); err != nil {
		return uc.mapError(ctx, err, apperrors.ErrModelUpdateFailed)
	}

	uc.logger.WithContext(ctx).Info("model updated", zap.String("model_id", id))
	return nil
}

// Save id 为空时新增，否则更新；返回是否为新增
func (uc *ModelUseCase) Save(ctx context.Context, token, id string, input *ModelInput) (bool, error) {
	if id == "" {
		_, err := uc.Create(ctx, token, input)
		return true, err
	}
	return false, uc.Update(ctx, token, id, input)
}

// Delete 删除模型
func (uc *ModelUseCase) Delete(ctx context.Context, token, id string) error {
	if id == "" {
		return apperrors.New(apperrors.ErrModelNotFound)
	}
	if err := uc.repo.Delete(ctx, token, id); err != nil {
		return uc.mapError(ctx, err, apperrors.ErrModelDeleteFailed)
	}

	uc.logger.WithContext(ctx).Info("model deleted", zap.String("model_id", id))
	return nil
}

// Compare 校验选择后加载列表并对比
func (uc *ModelUseCase) Compare(ctx context.Context, token, id1, id2 string) (*Comparison, error) {
	if err := CheckSelection(id1, id2); err != nil {
		return nil, err
	}

	models, err := uc.ListForComparison(ctx, token)
	if err != nil {
		return nil, err
	}
	return Compare(models, id1, id2)
}

// mapError 401 统一视为会话过期，调用方据此退出登录
func (uc *ModelUseCase) mapError(ctx context.Context, err error, code int) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return apperrors.Wrap(err, apperrors.ErrAuthSessionExpired)
	case errors.Is(err, ErrNotFound):
		return apperrors.Wrap(err, apperrors.ErrModelNotFound)
	case errors.Is(err, ErrNotConfigured):
		return apperrors.Wrap(err, apperrors.ErrAuthNotConfigured)
	default:
		uc.logger.WithContext(ctx).Error("catalog request failed", zap.Int("code", code), zap.Error(err))
		return apperrors.Wrap(err, code)
	}
}

// ownerOf 令牌的 sub；无法解析时为空，由服务端的行级策略拒绝
func ownerOf(token string) string {
	claims, err := auth.DecodeClaims(token)
	if err != nil {
		return ""
	}
	return claims.UserID()
}

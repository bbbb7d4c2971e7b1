package service

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/model-catalog/internal/auth/biz"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	catalog "github.com/lk2023060901/model-catalog/internal/catalog/biz"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/response"
	"go.uber.org/zap"
)

// ModelService 模型服务（页面与 JSON API）
type ModelService struct {
	modelUC *catalog.ModelUseCase
	authUC  *biz.AuthUseCase
	cookie  *middleware.SessionCookie
	logger  *logger.Logger
}

// NewModelService 创建模型服务
func NewModelService(modelUC *catalog.ModelUseCase, authUC *biz.AuthUseCase, cookie *middleware.SessionCookie, log *logger.Logger) *ModelService {
	return &ModelService{
		modelUC: modelUC,
		authUC:  authUC,
		cookie:  cookie,
		logger:  log,
	}
}

// ModelRequest API 请求体，数值字段可为 JSON 数字或字符串
type ModelRequest struct {
	Name           string          `json:"name"`
	Provider       string          `json:"provider"`
	ContextLength  json.RawMessage `json:"context_length"`
	BenchmarkScore json.RawMessage `json:"benchmark_score"`
	Capabilities   json.RawMessage `json:"capabilities"`
}

// Input 转换为与表单相同的文本输入，统一走 ModelInput.Validate
func (r *ModelRequest) Input() *catalog.ModelInput {
	return &catalog.ModelInput{
		Name:           r.Name,
		Provider:       r.Provider,
		ContextLength:  scalarText(r.ContextLength),
		BenchmarkScore: scalarText(r.BenchmarkScore),
		Capabilities:   capabilitiesText(r.Capabilities),
	}
}

func scalarText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		return unquoted
	}
	return text
}

// capabilitiesText 对象原样传递，字符串视为表单中的 JSON 文本
func capabilitiesText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}

// List 模型列表
// @Summary 模型列表
// @Tags models
// @Param order query string false "created_at（默认）或 name"
// @Router /api/v1/models [get]
func (s *ModelService) List(c *gin.Context) {
	ctx := c.Request.Context()
	token := middleware.GetAccessToken(c)

	var (
		models []*catalog.Model
		err    error
	)
	if c.Query("order") == "name" {
		models, err = s.modelUC.ListForComparison(ctx, token)
	} else {
		models, err = s.modelUC.ListForDashboard(ctx, token)
	}
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if models == nil {
		models = []*catalog.Model{}
	}
	response.Success(c, models)
}

// Get 获取单个模型
// @Router /api/v1/models/{id} [get]
func (s *ModelService) Get(c *gin.Context) {
	model, err := s.modelUC.Get(c.Request.Context(), middleware.GetAccessToken(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, model)
}

// Create 新增模型
// @Router /api/v1/models [post]
func (s *ModelService) Create(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	model, err := s.modelUC.Create(c.Request.Context(), middleware.GetAccessToken(c), req.Input())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, "Model added", model)
}

// Update 更新模型
// @Router /api/v1/models/{id} [patch]
func (s *ModelService) Update(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := s.modelUC.Update(c.Request.Context(), middleware.GetAccessToken(c), c.Param("id"), req.Input()); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Model updated", nil)
}

// Delete 删除模型
// @Router /api/v1/models/{id} [delete]
func (s *ModelService) Delete(c *gin.Context) {
	if err := s.modelUC.Delete(c.Request.Context(), middleware.GetAccessToken(c), c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "Model deleted", nil)
}

// Compare 对比两个模型
// @Router /api/v1/models/compare [get]
func (s *ModelService) Compare(c *gin.Context) {
	cmp, err := s.modelUC.Compare(c.Request.Context(), middleware.GetAccessToken(c), c.Query("model1"), c.Query("model2"))
	if err != nil {
		s.logger.Debug("compare rejected", zap.Error(err))
		response.HandleError(c, err)
		return
	}
	response.Success(c, cmp)
}

// RegisterRoutes 注册 API 路由（Bearer 认证）
func (s *ModelService) RegisterRoutes(r *gin.RouterGroup, bearer gin.HandlerFunc) {
	models := r.Group("/models", bearer)
	{
		models.GET("", s.List)
		models.POST("", s.Create)
		models.GET("/compare", s.Compare)
		models.GET("/:id", s.Get)
		models.PATCH("/:id", s.Update)
		models.DELETE("/:id", s.Delete)
	}
}

// sessionExpired 服务端拒绝令牌：删除本地会话并回到登录页
func (s *ModelService) sessionExpired(c *gin.Context) {
	if err := s.authUC.DropSession(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		s.logger.Error("failed to drop session", zap.Error(err))
	}
	s.cookie.Clear(c)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath+"?expired=1")
}

func isSessionExpired(err error) bool {
	return apperrors.Is(err, apperrors.ErrAuthSessionExpired)
}

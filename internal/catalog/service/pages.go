package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	catalog "github.com/lk2023060901/model-catalog/internal/catalog/biz"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/web"
	"go.uber.org/zap"
)

const dashboardPath = "/dashboard"

func userEmail(c *gin.Context) string {
	email, _ := middleware.GetEmail(c)
	return email
}

// Dashboard 控制台：模型列表
func (s *ModelService) Dashboard(c *gin.Context) {
	models, err := s.modelUC.ListForDashboard(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil {
		if isSessionExpired(err) {
			s.sessionExpired(c)
			return
		}
		web.Render(c, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)), "dashboard.html", gin.H{
			"Title":     "Dashboard",
			"UserEmail": userEmail(c),
			"Models":    []*catalog.Model{},
			"Flash":     web.ErrorFlash(apperrors.UserMessage(err)),
		})
		return
	}

	web.Render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title":     "Dashboard",
		"UserEmail": userEmail(c),
		"Models":    models,
	})
}

// NewModelPage 新增表单
func (s *ModelService) NewModelPage(c *gin.Context) {
	s.renderForm(c, http.StatusOK, "", &catalog.ModelInput{}, nil)
}

// EditModelPage 编辑表单，填入当前值
func (s *ModelService) EditModelPage(c *gin.Context) {
	id := c.Param("id")
	model, err := s.modelUC.Get(c.Request.Context(), middleware.GetAccessToken(c), id)
	if err != nil {
		s.handlePageError(c, err, dashboardPath)
		return
	}
	s.renderForm(c, http.StatusOK, id, catalog.InputFromModel(model), nil)
}

// CreateSubmit 处理新增表单
func (s *ModelService) CreateSubmit(c *gin.Context) {
	s.save(c, "")
}

// UpdateSubmit 处理编辑表单
func (s *ModelService) UpdateSubmit(c *gin.Context) {
	s.save(c, c.Param("id"))
}

func (s *ModelService) save(c *gin.Context, id string) {
	var input catalog.ModelInput
	_ = c.ShouldBind(&input)

	created, err := s.modelUC.Save(c.Request.Context(), middleware.GetAccessToken(c), id, &input)
	if err != nil {
		if isSessionExpired(err) {
			s.sessionExpired(c)
			return
		}
		s.logger.Warn("save model failed", zap.String("model_id", id), zap.Error(err))
		s.renderForm(c, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)), id, &input, web.ErrorFlash(apperrors.UserMessage(err)))
		return
	}

	message := "Model updated"
	if created {
		message = "Model added"
	}
	web.Redirect(c, dashboardPath, web.FlashSuccess, message)
}

// DeleteSubmit 删除模型
func (s *ModelService) DeleteSubmit(c *gin.Context) {
	if err := s.modelUC.Delete(c.Request.Context(), middleware.GetAccessToken(c), c.Param("id")); err != nil {
		s.handlePageError(c, err, dashboardPath)
		return
	}
	web.Redirect(c, dashboardPath, web.FlashSuccess, "Model deleted")
}

// ComparePage 对比页；选择了两个模型时显示对比结果
func (s *ModelService) ComparePage(c *gin.Context) {
	models, err := s.modelUC.ListForComparison(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil {
		s.handlePageError(c, err, dashboardPath)
		return
	}

	id1, id2 := c.Query("model1"), c.Query("model2")
	data := gin.H{
		"Title":      "Compare",
		"UserEmail":  userEmail(c),
		"Models":     models,
		"Model1ID":   id1,
		"Model2ID":   id2,
		"Comparison": nil,
	}

	status := http.StatusOK
	if c.Request.URL.Query().Has("model1") || c.Request.URL.Query().Has("model2") {
		cmp, err := catalog.Compare(models, id1, id2)
		if err != nil {
			status = apperrors.GetHTTPStatus(apperrors.ExtractCode(err))
			data["Flash"] = web.ErrorFlash(apperrors.UserMessage(err))
		} else {
			data["Comparison"] = cmp
		}
	}
	web.Render(c, status, "compare.html", data)
}

func (s *ModelService) handlePageError(c *gin.Context, err error, location string) {
	if isSessionExpired(err) {
		s.sessionExpired(c)
		return
	}
	s.logger.Warn("catalog page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	web.Redirect(c, location, web.FlashError, apperrors.UserMessage(err))
}

func (s *ModelService) renderForm(c *gin.Context, status int, id string, input *catalog.ModelInput, flash *web.Flash) {
	title, action := "Add AI model", "/models"
	if id != "" {
		title, action = "Edit AI model", "/models/"+id
	}

	data := gin.H{
		"Title":     title,
		"UserEmail": userEmail(c),
		"Action":    action,
		"Input":     input,
	}
	if flash != nil {
		data["Flash"] = flash
	}
	web.Render(c, status, "model_form.html", data)
}

// RegisterPages 注册页面路由（会话认证）
func (s *ModelService) RegisterPages(r gin.IRouter, requireSession gin.HandlerFunc) {
	pages := r.Group("", requireSession)
	{
		pages.GET(dashboardPath, s.Dashboard)
		pages.GET("/compare", s.ComparePage)
		pages.GET("/models/new", s.NewModelPage)
		pages.POST("/models", s.CreateSubmit)
		pages.GET("/models/:id/edit", s.EditModelPage)
		pages.POST("/models/:id", s.UpdateSubmit)
		pages.POST("/models/:id/delete", s.DeleteSubmit)
	}
}

package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		handler     gin.HandlerFunc
		wantStatus  int
		wantCode    int
		wantMessage string
		wantData    string
	}{
		{
			name:       "success with nil data",
			handler:    func(c *gin.Context) { Success(c, nil) },
			wantStatus: http.StatusOK,
			wantData:   `{}`,
		},
		{
			name:        "created",
			handler:     func(c *gin.Context) { Created(c, "Model added", gin.H{"id": 1}) },
			wantStatus:  http.StatusCreated,
			wantMessage: "Model added",
			wantData:    `{"id":1}`,
		},
		{
			name:        "bad request",
			handler:     func(c *gin.Context) { BadRequest(c, "name is required") },
			wantStatus:  http.StatusBadRequest,
			wantCode:    apperrors.ErrInvalidParams,
			wantMessage: "Invalid parameters: name is required",
			wantData:    `{}`,
		},
		{
			name:        "unauthorized",
			handler:     func(c *gin.Context) { Unauthorized(c, "") },
			wantStatus:  http.StatusUnauthorized,
			wantCode:    apperrors.ErrUnauthorized,
			wantMessage: "Unauthorized",
			wantData:    `{}`,
		},
		{
			name: "wrapped app error",
			handler: func(c *gin.Context) {
				HandleError(c, fmt.Errorf("get: %w", apperrors.New(apperrors.ErrModelNotFound)))
			},
			wantStatus:  http.StatusNotFound,
			wantCode:    apperrors.ErrModelNotFound,
			wantMessage: "Model not found",
			wantData:    `{}`,
		},
		{
			name:        "plain error hides detail",
			handler:     func(c *gin.Context) { HandleError(c, errors.New("dial tcp: refused")) },
			wantStatus:  http.StatusInternalServerError,
			wantCode:    apperrors.ErrInternalServer,
			wantMessage: "Internal server error",
			wantData:    `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.handler(c)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Code    int             `json:"code"`
				Message string          `json:"message"`
				Data    json.RawMessage `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.JSONEq(t, tt.wantData, string(body.Data))
		})
	}
}

func TestHandleError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleError(c, nil)
	assert.Empty(t, w.Body.String())
}

package biz

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/tidwall/gjson"
)

// 分数取值范围
const (
	MinBenchmarkScore = 0
	MaxBenchmarkScore = 100
)

// ModelID 模型主键，服务端可能返回数字或字符串
type ModelID string

// UnmarshalJSON 同时接受 JSON 字符串与数字
func (id *ModelID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ModelID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ModelID(n.String())
	return nil
}

func (id ModelID) String() string {
	return string(id)
}

// Model AI 模型记录
// Capabilities 保持服务端返回的原始 JSON，以保留键的顺序
type Model struct {
	ID             ModelID         `json:"id"`
	Name           string          `json:"name"`
	Provider       string          `json:"provider"`
	ContextLength  int64           `json:"context_length"`
	BenchmarkScore float64         `json:"benchmark_score"`
	Capabilities   json.RawMessage `json:"capabilities,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
}

// ModelInput 表单提交的原始文本
type ModelInput struct {
	Name           string `form:"name" json:"name"`
	Provider       string `form:"provider" json:"provider"`
	ContextLength  string `form:"context_length" json:"context_length"`
	BenchmarkScore string `form:"benchmark_score" json:"benchmark_score"`
	Capabilities   string `form:"capabilities" json:"capabilities"`
}

// ModelPayload 写入服务端的记录
type ModelPayload struct {
	Name           string          `json:"name"`
	Provider       string          `json:"provider"`
	ContextLength  int64           `json:"context_length"`
	BenchmarkScore float64         `json:"benchmark_score"`
	Capabilities   json.RawMessage `json:"capabilities"`
	UserID         string          `json:"user_id,omitempty"`
}

// InputFromModel 编辑表单的初始值
func InputFromModel(m *Model) *ModelInput {
	return &ModelInput{
		Name:           m.Name,
		Provider:       m.Provider,
		ContextLength:  strconv.FormatInt(m.ContextLength, 10),
		BenchmarkScore: FormatScore(m.BenchmarkScore),
		Capabilities:   CapabilitiesText(m.Capabilities),
	}
}

// Validate 校验表单并转换为写入记录
func (in *ModelInput) Validate(userID string) (*ModelPayload, error) {
	name := strings.TrimSpace(in.Name)
	provider := strings.TrimSpace(in.Provider)
	if name == "" || provider == "" {
		return nil, apperrors.New(apperrors.ErrModelMissingFields)
	}

	contextLength, err := strconv.ParseInt(strings.TrimSpace(in.ContextLength), 10, 64)
	if err != nil || contextLength <= 0 {
		return nil, apperrors.New(apperrors.ErrModelMissingFields)
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(in.BenchmarkScore), 64)
	if err != nil || math.IsNaN(score) {
		return nil, apperrors.New(apperrors.ErrModelMissingFields)
	}
	if score < MinBenchmarkScore || score > MaxBenchmarkScore {
		return nil, apperrors.New(apperrors.ErrModelScoreOutOfRange)
	}

	capabilities := json.RawMessage(`{}`)
	if text := strings.TrimSpace(in.Capabilities); text != "" {
		if !gjson.Valid(text) || !gjson.Parse(text).IsObject() {
			return nil, apperrors.New(apperrors.ErrModelInvalidCapabilities)
		}
		capabilities = json.RawMessage(text)
	}

	return &ModelPayload{
		Name:           name,
		Provider:       provider,
		ContextLength:  contextLength,
		BenchmarkScore: score,
		Capabilities:   capabilities,
		UserID:         userID,
	}, nil
}

package biz

import (
	"encoding/json"
	"testing"

	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ModelInput {
	return &ModelInput{
		Name:           "  GPT-4o ",
		Provider:       " OpenAI",
		ContextLength:  "128000",
		BenchmarkScore: "88.7",
		Capabilities:   `{"vision": true, "audio": false}`,
	}
}

func TestModelInput_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *ModelInput)
		wantCode int
	}{
		{name: "valid", mutate: func(in *ModelInput) {}},
		{name: "blank name", mutate: func(in *ModelInput) { in.Name = "   " }, wantCode: apperrors.ErrModelMissingFields},
		{name: "blank provider", mutate: func(in *ModelInput) { in.Provider = "" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "missing context length", mutate: func(in *ModelInput) { in.ContextLength = "" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "zero context length", mutate: func(in *ModelInput) { in.ContextLength = "0" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "negative context length", mutate: func(in *ModelInput) { in.ContextLength = "-5" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "non numeric context length", mutate: func(in *ModelInput) { in.ContextLength = "lots" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "missing score", mutate: func(in *ModelInput) { in.BenchmarkScore = "" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "nan score", mutate: func(in *ModelInput) { in.BenchmarkScore = "NaN" }, wantCode: apperrors.ErrModelMissingFields},
		{name: "score zero allowed", mutate: func(in *ModelInput) { in.BenchmarkScore = "0" }},
		{name: "score hundred allowed", mutate: func(in *ModelInput) { in.BenchmarkScore = "100" }},
		{name: "score above range", mutate: func(in *ModelInput) { in.BenchmarkScore = "100.1" }, wantCode: apperrors.ErrModelScoreOutOfRange},
		{name: "score below range", mutate: func(in *ModelInput) { in.BenchmarkScore = "-1" }, wantCode: apperrors.ErrModelScoreOutOfRange},
		{name: "empty capabilities", mutate: func(in *ModelInput) { in.Capabilities = "  " }},
		{name: "broken capabilities", mutate: func(in *ModelInput) { in.Capabilities = `{"vision":` }, wantCode: apperrors.ErrModelInvalidCapabilities},
		{name: "array capabilities", mutate: func(in *ModelInput) { in.Capabilities = `["vision"]` }, wantCode: apperrors.ErrModelInvalidCapabilities},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)

			payload, err := in.Validate("user-1")
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, tt.wantCode), "got %v", err)
				assert.Nil(t, payload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "GPT-4o", payload.Name)
			assert.Equal(t, "OpenAI", payload.Provider)
			assert.Equal(t, "user-1", payload.UserID)
		})
	}
}

func TestModelInput_ValidateMessages(t *testing.T) {
	in := validInput()
	in.BenchmarkScore = "150"
	_, err := in.Validate("")
	assert.Equal(t, "Benchmark score must be between 0-100", apperrors.UserMessage(err))

	in = validInput()
	in.Capabilities = "nope"
	_, err = in.Validate("")
	assert.Equal(t, "Capabilities must be valid JSON", apperrors.UserMessage(err))

	in = validInput()
	in.Name = ""
	_, err = in.Validate("")
	assert.Equal(t, "All required fields must be filled", apperrors.UserMessage(err))
}

func TestModelInput_ValidatePayload(t *testing.T) {
	in := validInput()
	in.Capabilities = ""

	payload, err := in.Validate("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(128000), payload.ContextLength)
	assert.Equal(t, 88.7, payload.BenchmarkScore)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "GPT-4o",
		"provider": "OpenAI",
		"context_length": 128000,
		"benchmark_score": 88.7,
		"capabilities": {},
		"user_id": "user-1"
	}`, string(data))
}

func TestModelID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ModelID
	}{
		{name: "number", input: `{"id": 42}`, want: "42"},
		{name: "uuid string", input: `{"id": "3f2c-aa"}`, want: "3f2c-aa"},
		{name: "null", input: `{"id": null}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Model
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.want, m.ID)
		})
	}

	var m Model
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &m))
}

func TestInputFromModel(t *testing.T) {
	in := InputFromModel(&Model{
		Name:           "Claude",
		Provider:       "Anthropic",
		ContextLength:  200000,
		BenchmarkScore: 90,
		Capabilities:   json.RawMessage(`{"tools":true}`),
	})

	assert.Equal(t, "200000", in.ContextLength)
	assert.Equal(t, "90", in.BenchmarkScore)
	assert.Equal(t, "{\n  \"tools\": true\n}", in.Capabilities)
}

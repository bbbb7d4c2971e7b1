package biz

import (
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
)

// Draw 两者相同
const Draw = "Draw"

// ComparisonRow 对比表的一行
type ComparisonRow struct {
	Aspect   string `json:"aspect"`
	Display1 string `json:"display1"`
	Display2 string `json:"display2"`
	Winner   string `json:"winner"`
}

// Comparison 两个模型的对比结果
type Comparison struct {
	Model1 *Model          `json:"model1"`
	Model2 *Model          `json:"model2"`
	Rows   []ComparisonRow `json:"rows"`
}

// CheckSelection 校验选择的两个模型 id
func CheckSelection(id1, id2 string) error {
	if id1 == "" || id2 == "" {
		return apperrors.New(apperrors.ErrCompareSelectionRequired)
	}
	if id1 == id2 {
		return apperrors.New(apperrors.ErrCompareSameModel)
	}
	return nil
}

// Compare 在已加载的列表中查找两个模型并逐项对比（数值越大越好）
func Compare(models []*Model, id1, id2 string) (*Comparison, error) {
	if err := CheckSelection(id1, id2); err != nil {
		return nil, err
	}

	m1, m2 := findModel(models, id1), findModel(models, id2)
	if m1 == nil || m2 == nil {
		return nil, apperrors.New(apperrors.ErrModelNotFound)
	}

	return &Comparison{
		Model1: m1,
		Model2: m2,
		Rows: []ComparisonRow{
			{
				Aspect:   "Context Length",
				Display1: FormatTokens(m1.ContextLength),
				Display2: FormatTokens(m2.ContextLength),
				Winner:   winner(float64(m1.ContextLength), float64(m2.ContextLength), m1.Name, m2.Name),
			},
			{
				Aspect:   "Benchmark Score",
				Display1: FormatScore(m1.BenchmarkScore),
				Display2: FormatScore(m2.BenchmarkScore),
				Winner:   winner(m1.BenchmarkScore, m2.BenchmarkScore, m1.Name, m2.Name),
			},
		},
	}, nil
}

func findModel(models []*Model, id string) *Model {
	for _, m := range models {
		if m.ID.String() == id {
			return m
		}
	}
	return nil
}

func winner(v1, v2 float64, name1, name2 string) string {
	switch {
	case v1 > v2:
		return name1
	case v2 > v1:
		return name2
	default:
		return Draw
	}
}

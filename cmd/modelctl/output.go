package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	catalogbiz "github.com/lk2023060901/model-catalog/internal/catalog/biz"
)

var (
	accent      = lipgloss.Color("#667eea")
	muted       = lipgloss.Color("#6c757d")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	winnerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#28a745")).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(muted).Width(16)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers(headers...)
}

func renderModels(models []*catalogbiz.Model) string {
	t := newTable("ID", "NAME", "PROVIDER", "CONTEXT", "SCORE", "CAPABILITIES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, m := range models {
		t.Row(
			m.ID.String(),
			m.Name,
			m.Provider,
			catalogbiz.FormatTokens(m.ContextLength),
			catalogbiz.FormatScore(m.BenchmarkScore),
			catalogbiz.FormatCapabilities(m.Capabilities),
		)
	}
	return t.Render()
}

func renderModel(m *catalogbiz.Model) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.Name))
	sb.WriteString("\n")

	fields := [][2]string{
		{"ID", m.ID.String()},
		{"Provider", m.Provider},
		{"Context length", catalogbiz.FormatTokens(m.ContextLength)},
		{"Benchmark score", catalogbiz.FormatScore(m.BenchmarkScore)},
		{"Capabilities", catalogbiz.FormatCapabilities(m.Capabilities)},
	}
	if m.CreatedAt != "" {
		fields = append(fields, [2]string{"Created", m.CreatedAt})
	}
	for _, f := range fields {
		sb.WriteString(labelStyle.Render(f[0]))
		sb.WriteString(f[1])
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderComparison(cmp *catalogbiz.Comparison) string {
	t := newTable("ASPECT", cmp.Model1.Name, cmp.Model2.Name, "WINNER").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3:
				return winnerStyle
			default:
				return cellStyle
			}
		})

	t.Row("Provider", cmp.Model1.Provider, cmp.Model2.Provider, "")
	for _, r := range cmp.Rows {
		t.Row(r.Aspect, r.Display1, r.Display2, r.Winner)
	}
	t.Row("Capabilities", catalogbiz.FormatCapabilities(cmp.Model1.Capabilities), catalogbiz.FormatCapabilities(cmp.Model2.Capabilities), "")
	return t.Render()
}

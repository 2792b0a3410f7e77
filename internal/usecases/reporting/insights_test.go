package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

func insightTitles(insights []domain.Insight) []string {
	titles := make([]string, 0, len(insights))
	for _, insight := range insights {
		titles = append(titles, insight.Title)
	}
	return titles
}

func TestGenerateInsights_EmptySubsetProducesNoInsights(t *testing.T) {
	insights := GenerateInsights(nil, &domain.AggregateTotals{}, nil, time.Now())

	assert.NotNil(t, insights)
	assert.Empty(t, insights)
}

func TestGenerateInsights_TopPerformerAlwaysPresent(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	records := []*domain.SalesRecord{
		record(today.AddDate(0, 0, -1), "Notebook", "Sul", 4500, 100, 25),
	}
	totals := &domain.AggregateTotals{Revenue: 4500, Leads: 100, Conversions: 25, Count: 1}

	insights := GenerateInsights(records, totals, nil, today)

	require.NotEmpty(t, insights)
	assert.Equal(t, "Produto Destaque", insights[0].Title)
	assert.Equal(t, domain.InsightSuccess, insights[0].Type)
	assert.Equal(t, "🏆", insights[0].Icon)
	assert.Contains(t, insights[0].Message, "Notebook")
}

func TestGenerateInsights_UnderperformerThreshold(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	tests := []struct {
		name          string
		worstRevenue  float64
		expectedFires bool
	}{
		{name: "abaixo de 30% do líder dispara", worstRevenue: 2900, expectedFires: true},
		{name: "acima de 30% do líder não dispara", worstRevenue: 3100, expectedFires: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []*domain.SalesRecord{
				record(yesterday, "Líder", "Sul", 10000, 100, 25),
				record(yesterday, "Lanterna", "Sul", tt.worstRevenue, 100, 25),
			}
			totals := &domain.AggregateTotals{Revenue: 10000 + tt.worstRevenue, Leads: 200, Conversions: 50, Count: 2}

			insights := GenerateInsights(records, totals, nil, today)
			titles := insightTitles(insights)

			if tt.expectedFires {
				assert.Contains(t, titles, "Produto em Atenção")
			} else {
				assert.NotContains(t, titles, "Produto em Atenção")
			}
		})
	}
}

func TestGenerateInsights_BestRegionRequiresLeads(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	t.Run("região com maior taxa é destacada", func(t *testing.T) {
		records := []*domain.SalesRecord{
			record(yesterday, "Notebook", "Sul", 1000, 100, 20),
			record(yesterday, "Notebook", "Norte", 1000, 100, 40),
		}
		totals := &domain.AggregateTotals{Revenue: 2000, Leads: 200, Conversions: 60, Count: 2}

		insights := GenerateInsights(records, totals, nil, today)

		var found *domain.Insight
		for i := range insights {
			if insights[i].Title == "Melhor Região" {
				found = &insights[i]
				break
			}
		}

		require.NotNil(t, found)
		assert.Contains(t, found.Message, "Norte")
		assert.Contains(t, found.Message, "40.0%")
	})

	t.Run("sem leads em nenhuma região a regra não dispara", func(t *testing.T) {
		records := []*domain.SalesRecord{
			record(yesterday, "Notebook", "Sul", 1000, 0, 0),
		}
		totals := &domain.AggregateTotals{Revenue: 1000, Count: 1}

		insights := GenerateInsights(records, totals, nil, today)
		assert.NotContains(t, insightTitles(insights), "Melhor Região")
	})
}

func TestGenerateInsights_ConversionRateBands(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	records := []*domain.SalesRecord{
		record(yesterday, "Notebook", "Sul", 1000, 100, 25),
	}

	tests := []struct {
		name        string
		totals      *domain.AggregateTotals
		expected    string
		notExpected string
	}{
		{
			name:        "acima de 30% é excelente",
			totals:      &domain.AggregateTotals{Revenue: 1000, Leads: 100, Conversions: 35, Count: 1},
			expected:    "Conversão Excelente",
			notExpected: "Conversão Baixa",
		},
		{
			name:        "abaixo de 20% é baixa",
			totals:      &domain.AggregateTotals{Revenue: 1000, Leads: 100, Conversions: 15, Count: 1},
			expected:    "Conversão Baixa",
			notExpected: "Conversão Excelente",
		},
		{
			name:        "faixa intermediária não gera insight de conversão",
			totals:      &domain.AggregateTotals{Revenue: 1000, Leads: 100, Conversions: 25, Count: 1},
			expected:    "",
			notExpected: "Conversão Baixa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights := GenerateInsights(records, tt.totals, nil, today)
			titles := insightTitles(insights)

			if tt.expected != "" {
				assert.Contains(t, titles, tt.expected)
			}
			assert.NotContains(t, titles, tt.notExpected)
		})
	}
}

func TestGenerateInsights_ComparisonDirection(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	records := []*domain.SalesRecord{
		record(yesterday, "Notebook", "Sul", 1000, 100, 25),
	}
	totals := &domain.AggregateTotals{Revenue: 120, Leads: 100, Conversions: 25, Count: 1}

	t.Run("receita em alta e leads em queda", func(t *testing.T) {
		comparison := &domain.AggregateTotals{Revenue: 100, Leads: 130, Conversions: 20, Count: 2}

		insights := GenerateInsights(records, totals, comparison, today)
		titles := insightTitles(insights)

		assert.Contains(t, titles, "Receita em Alta")
		assert.Contains(t, titles, "Geração de Leads")
	})

	t.Run("variações abaixo do gatilho não geram insights", func(t *testing.T) {
		// Receita +4% (gatilho 5%), leads +5% (gatilho 10%)
		comparison := &domain.AggregateTotals{Revenue: 115.4, Leads: 95, Conversions: 24, Count: 2}

		insights := GenerateInsights(records, totals, comparison, today)
		titles := insightTitles(insights)

		assert.NotContains(t, titles, "Receita em Alta")
		assert.NotContains(t, titles, "Receita em Queda")
		assert.NotContains(t, titles, "Geração de Leads")
	})

	t.Run("período de comparação vazio é ignorado", func(t *testing.T) {
		comparison := &domain.AggregateTotals{}

		insights := GenerateInsights(records, totals, comparison, today)
		titles := insightTitles(insights)

		assert.NotContains(t, titles, "Receita em Alta")
		assert.NotContains(t, titles, "Receita em Queda")
	})
}

func TestGenerateInsights_StaleDataThreshold(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	totals := &domain.AggregateTotals{Revenue: 1000, Leads: 100, Conversions: 25, Count: 1}

	tests := []struct {
		name          string
		latestDate    time.Time
		expectedFires bool
	}{
		{name: "mais de 7 dias dispara", latestDate: today.AddDate(0, 0, -8), expectedFires: true},
		{name: "exatamente 7 dias não dispara", latestDate: today.AddDate(0, 0, -7), expectedFires: false},
		{name: "dados recentes não disparam", latestDate: today.AddDate(0, 0, -1), expectedFires: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []*domain.SalesRecord{
				record(tt.latestDate, "Notebook", "Sul", 1000, 100, 25),
			}

			insights := GenerateInsights(records, totals, nil, today)
			titles := insightTitles(insights)

			if tt.expectedFires {
				assert.Contains(t, titles, "Dados Desatualizados")
			} else {
				assert.NotContains(t, titles, "Dados Desatualizados")
			}
		})
	}
}

func TestGenerateInsights_CappedAtSixInRuleOrder(t *testing.T) {
	today := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	// Cenário que dispara sete insights: destaque, lanterna, melhor região,
	// conversão baixa, receita em alta, leads em alta e dados antigos.
	staleDate := today.AddDate(0, 0, -15)
	records := []*domain.SalesRecord{
		record(staleDate, "Líder", "Sul", 10000, 5, 0),
		record(staleDate, "Lanterna", "Norte", 2000, 5, 1),
	}
	totals := &domain.AggregateTotals{Revenue: 12000, Leads: 10, Conversions: 1, Count: 2}
	comparison := &domain.AggregateTotals{Revenue: 10000, Leads: 8, Conversions: 1, Count: 2}

	insights := GenerateInsights(records, totals, comparison, today)

	require.Len(t, insights, 6)
	assert.Equal(t, []string{
		"Produto Destaque",
		"Produto em Atenção",
		"Melhor Região",
		"Conversão Baixa",
		"Receita em Alta",
		"Geração de Leads",
	}, insightTitles(insights))
}

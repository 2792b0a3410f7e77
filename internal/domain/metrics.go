package domain

import "github.com/vfg2006/sales-analytics-api/pkg/utils"

// AggregateTotals são os somatórios escalares de um subconjunto de registros.
// Subconjunto vazio produz zeros, nunca nulos.
type AggregateTotals struct {
	Revenue     float64 `json:"revenue"`
	Leads       int64   `json:"leads"`
	Conversions int64   `json:"conversions"`
	Count       int64   `json:"count"`
}

// ConversionRate calcula a taxa de conversão agregada em porcentagem,
// arredondada para duas casas decimais. Leads = 0 resulta em taxa 0.
func (t AggregateTotals) ConversionRate() float64 {
	if t.Leads <= 0 {
		return 0
	}
	return utils.RoundWithTwoDecimalPlace(float64(t.Conversions) / float64(t.Leads) * 100)
}

// ComparisonMetrics carrega os mesmos escalares para o período de comparação
// e as variações percentuais de cada um em relação ao período primário.
type ComparisonMetrics struct {
	Revenue           float64 `json:"revenue"`
	Leads             int64   `json:"leads"`
	Conversions       int64   `json:"conversions"`
	ConversionRate    float64 `json:"conversion_rate"`
	RevenueChange     float64 `json:"revenue_change"`
	LeadsChange       float64 `json:"leads_change"`
	ConversionsChange float64 `json:"conversions_change"`
	// Variação da taxa em pontos percentuais, não em percentual relativo.
	ConvRateChange float64 `json:"conv_rate_change"`
}

// PercentChange calcula a variação percentual entre dois valores.
// Anterior igual a zero resulta em 0, nunca em infinito ou NaN.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return utils.RoundWithTwoDecimalPlace((current - previous) / previous * 100)
}

// GroupTotal é o total de receita de um grupo (produto ou região).
type GroupTotal struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

// TimePoint é um ponto da série temporal de receita do dashboard.
type TimePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// DashboardMetrics é a resposta completa do dashboard: escalares, comparação
// opcional, rankings top-N, insights e série temporal para os gráficos.
type DashboardMetrics struct {
	TotalRevenue     float64            `json:"total_revenue"`
	TotalLeads       int64              `json:"total_leads"`
	TotalConversions int64              `json:"total_conversions"`
	ConversionRate   float64            `json:"conversion_rate"`
	DataCount        int64              `json:"data_count"`
	Comparison       *ComparisonMetrics `json:"comparison,omitempty"`
	TopProducts      []GroupTotal       `json:"top_products"`
	TopRegions       []GroupTotal       `json:"top_regions"`
	Insights         []Insight          `json:"insights"`
	RevenueByDate    []TimePoint        `json:"revenue_by_date"`
	Preset           string             `json:"preset,omitempty"`
	ComparisonMode   bool               `json:"comparison_mode"`
}

package reporting

import (
	"fmt"
	"math"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const (
	maxInsights = 6

	// Limiares das regras heurísticas.
	underperformerRatio   = 0.30
	excellentRateFloor    = 30.0
	lowRateCeiling        = 20.0
	revenueChangeTrigger  = 5.0
	leadsChangeTrigger    = 10.0
	staleDataThresholdDay = 7
)

// insightContext reúne os dados pré-agregados compartilhados pelas regras.
type insightContext struct {
	records    []*domain.SalesRecord
	totals     *domain.AggregateTotals
	comparison *domain.AggregateTotals // nil quando ausente ou vazio
	products   []domain.GroupTotal     // receita decrescente, estável
	today      time.Time
}

// insightRule é um avaliador independente; regras podem ser adicionadas ou
// reordenadas sem tocar nas demais.
type insightRule func(*insightContext) []domain.Insight

var insightRules = []insightRule{
	topPerformerRule,
	underperformerRule,
	bestRegionRule,
	conversionRateRule,
	comparisonRule,
	staleDataRule,
}

// GenerateInsights avalia as regras heurísticas em ordem fixa sobre os dados
// agregados e devolve no máximo 6 insights — o corte é pela ordem de
// prioridade das regras, não por severidade ou magnitude. Subconjunto vazio
// não produz insights.
func GenerateInsights(
	records []*domain.SalesRecord,
	totals *domain.AggregateTotals,
	comparison *domain.AggregateTotals,
	today time.Time,
) []domain.Insight {
	insights := make([]domain.Insight, 0, maxInsights)

	if len(records) == 0 {
		return insights
	}

	ctx := &insightContext{
		records:    records,
		totals:     totals,
		comparison: comparison,
		products:   sortedByRevenue(revenueByGroup(records, func(r *domain.SalesRecord) string { return r.Product })),
		today:      truncateDay(today),
	}

	for _, rule := range insightRules {
		insights = append(insights, rule(ctx)...)
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}

	return insights
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// topPerformerRule sempre destaca o produto de maior receita.
func topPerformerRule(ctx *insightContext) []domain.Insight {
	if len(ctx.products) == 0 {
		return nil
	}

	best := ctx.products[0]
	return []domain.Insight{{
		Type:    domain.InsightSuccess,
		Icon:    "🏆",
		Title:   "Produto Destaque",
		Message: fmt.Sprintf("%s lidera com $%.2f em receita", best.Name, best.Revenue),
	}}
}

// underperformerRule dispara quando há pelo menos dois produtos e o de menor
// receita fatura menos de 30%% do líder. Em empates no mínimo, vale o último
// do grupo empatado na ordem de entrada (ordenação estável decrescente).
func underperformerRule(ctx *insightContext) []domain.Insight {
	if len(ctx.products) < 2 {
		return nil
	}

	best := ctx.products[0]
	worst := ctx.products[len(ctx.products)-1]

	if worst.Revenue >= best.Revenue*underperformerRatio {
		return nil
	}

	return []domain.Insight{{
		Type:    domain.InsightWarning,
		Icon:    "⚠️",
		Title:   "Produto em Atenção",
		Message: fmt.Sprintf("%s precisa de atenção ($%.2f)", worst.Name, worst.Revenue),
	}}
}

// bestRegionRule destaca a região com a maior taxa de conversão, exigindo ao
// menos uma região com leads. Empates ficam com a primeira região encontrada.
func bestRegionRule(ctx *insightContext) []domain.Insight {
	type regionStats struct {
		name        string
		leads       int64
		conversions int64
	}

	index := make(map[string]int)
	regions := make([]*regionStats, 0)

	for _, record := range ctx.records {
		i, ok := index[record.Region]
		if !ok {
			i = len(regions)
			index[record.Region] = i
			regions = append(regions, &regionStats{name: record.Region})
		}
		regions[i].leads += int64(record.Leads)
		regions[i].conversions += int64(record.Conversions)
	}

	anyLeads := false
	bestRate := -1.0
	var best *regionStats

	for _, region := range regions {
		rate := 0.0
		if region.leads > 0 {
			anyLeads = true
			rate = float64(region.conversions) / float64(region.leads) * 100
		}
		if rate > bestRate {
			bestRate = rate
			best = region
		}
	}

	if !anyLeads || best == nil {
		return nil
	}

	return []domain.Insight{{
		Type:    domain.InsightInfo,
		Icon:    "🌍",
		Title:   "Melhor Região",
		Message: fmt.Sprintf("%s tem a maior taxa de conversão: %.1f%%", best.name, bestRate),
	}}
}

// conversionRateRule avalia a taxa global: acima de 30%% é excelente, abaixo
// de 20%% é baixa. As duas saídas são mutuamente exclusivas.
func conversionRateRule(ctx *insightContext) []domain.Insight {
	rate := ctx.totals.ConversionRate()

	if rate > excellentRateFloor {
		return []domain.Insight{{
			Type:    domain.InsightSuccess,
			Icon:    "🎯",
			Title:   "Conversão Excelente",
			Message: fmt.Sprintf("Sua taxa de conversão de %.1f%% está acima do esperado!", rate),
		}}
	}

	if rate < lowRateCeiling {
		return []domain.Insight{{
			Type:    domain.InsightWarning,
			Icon:    "📉",
			Title:   "Conversão Baixa",
			Message: fmt.Sprintf("Taxa de conversão de %.1f%% pode melhorar", rate),
		}}
	}

	return nil
}

// comparisonRule compara receita e leads com o período anterior, quando
// disponível e não vazio: variação de receita acima de 5%% e de leads acima
// de 10%% geram insights direcionais.
func comparisonRule(ctx *insightContext) []domain.Insight {
	if ctx.comparison == nil || ctx.comparison.Count == 0 {
		return nil
	}

	insights := make([]domain.Insight, 0, 2)

	revenueChange := domain.PercentChange(ctx.totals.Revenue, ctx.comparison.Revenue)
	if math.Abs(revenueChange) > revenueChangeTrigger {
		if revenueChange > 0 {
			insights = append(insights, domain.Insight{
				Type:    domain.InsightSuccess,
				Icon:    "📈",
				Title:   "Receita em Alta",
				Message: fmt.Sprintf("Receita subiu %.1f%% em relação ao período anterior", revenueChange),
			})
		} else {
			insights = append(insights, domain.Insight{
				Type:    domain.InsightDanger,
				Icon:    "📉",
				Title:   "Receita em Queda",
				Message: fmt.Sprintf("Receita caiu %.1f%% em relação ao período anterior", math.Abs(revenueChange)),
			})
		}
	}

	leadsChange := domain.PercentChange(float64(ctx.totals.Leads), float64(ctx.comparison.Leads))
	if math.Abs(leadsChange) > leadsChangeTrigger {
		if leadsChange > 0 {
			insights = append(insights, domain.Insight{
				Type:    domain.InsightInfo,
				Icon:    "🚀",
				Title:   "Geração de Leads",
				Message: fmt.Sprintf("Leads subiram %.1f%% em relação ao período anterior", leadsChange),
			})
		} else {
			insights = append(insights, domain.Insight{
				Type:    domain.InsightWarning,
				Icon:    "⬇️",
				Title:   "Geração de Leads",
				Message: fmt.Sprintf("Leads caíram %.1f%% em relação ao período anterior", math.Abs(leadsChange)),
			})
		}
	}

	return insights
}

// staleDataRule avisa quando o registro mais recente tem mais de 7 dias.
func staleDataRule(ctx *insightContext) []domain.Insight {
	var latest time.Time
	for _, record := range ctx.records {
		if record.Date.After(latest) {
			latest = record.Date
		}
	}

	daysOld := int(ctx.today.Sub(truncateDay(latest)).Hours() / 24)
	if daysOld <= staleDataThresholdDay {
		return nil
	}

	return []domain.Insight{{
		Type:    domain.InsightWarning,
		Icon:    "⏰",
		Title:   "Dados Desatualizados",
		Message: fmt.Sprintf("O dado mais recente tem %d dias. Considere atualizar!", daysOld),
	}}
}

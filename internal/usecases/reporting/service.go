package reporting

import (
	"sort"
	"time"

	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

const topGroupLimit = 5

// Reporter monta os dados do dashboard e executa as operações de exclusão
// sobre o conjunto selecionado pelos mesmos critérios de filtro.
type Reporter interface {
	Dashboard(criteria domain.FilterCriteria, today time.Time) (*domain.DashboardMetrics, error)
	DeleteRecords(criteria domain.FilterCriteria, all bool, today time.Time) (int64, error)
}

type Service struct {
	recordRepo repository.SalesRecordRepository
}

func NewService(recordRepo repository.SalesRecordRepository) Reporter {
	return &Service{
		recordRepo: recordRepo,
	}
}

// Dashboard computa as métricas agregadas do subconjunto filtrado: escalares,
// comparação opcional com o período anterior, rankings top-N por receita,
// insights e a série temporal de receita. Cada requisição é uma computação
// independente e sem estado sobre o repositório.
func (s *Service) Dashboard(criteria domain.FilterCriteria, today time.Time) (*domain.DashboardMetrics, error) {
	filter, comparisonFilter := criteria.Resolve(today)

	records, err := s.recordRepo.List(filter)
	if err != nil {
		return nil, err
	}

	totals, err := s.recordRepo.Aggregate(filter)
	if err != nil {
		return nil, err
	}

	metrics := &domain.DashboardMetrics{
		TotalRevenue:     utils.RoundWithTwoDecimalPlace(totals.Revenue),
		TotalLeads:       totals.Leads,
		TotalConversions: totals.Conversions,
		ConversionRate:   totals.ConversionRate(),
		DataCount:        totals.Count,
		Preset:           criteria.Preset,
		ComparisonMode:   criteria.Compare,
	}

	// Período de comparação: só entra na resposta quando não vazio.
	var comparisonTotals *domain.AggregateTotals
	if comparisonFilter != nil {
		comparisonTotals, err = s.recordRepo.Aggregate(*comparisonFilter)
		if err != nil {
			return nil, err
		}

		if comparisonTotals.Count > 0 {
			metrics.Comparison = buildComparison(totals, comparisonTotals)
		} else {
			comparisonTotals = nil
		}
	}

	products := revenueByGroup(records, func(r *domain.SalesRecord) string { return r.Product })
	regions := revenueByGroup(records, func(r *domain.SalesRecord) string { return r.Region })

	metrics.TopProducts = topN(products, topGroupLimit)
	metrics.TopRegions = topN(regions, topGroupLimit)
	metrics.RevenueByDate = revenueSeries(records)
	metrics.Insights = GenerateInsights(records, totals, comparisonTotals, today)

	log.L.WithFields(log.Fields{
		"data_count": totals.Count,
		"preset":     criteria.Preset,
		"comparison": criteria.Compare,
	}).Debug("dashboard: métricas calculadas")

	return metrics, nil
}

// DeleteRecords remove o conjunto selecionado (ou a base inteira) e devolve
// o número de registros afetados para a mensagem de confirmação. Sem
// soft-delete e sem desfazer.
func (s *Service) DeleteRecords(criteria domain.FilterCriteria, all bool, today time.Time) (int64, error) {
	filter := domain.ResolvedFilter{}
	if !all {
		filter, _ = criteria.Resolve(today)
	}

	affected, err := s.recordRepo.Delete(filter)
	if err != nil {
		return 0, err
	}

	log.L.WithFields(log.Fields{
		"affected": affected,
		"all":      all,
	}).Info("records: registros excluídos")

	return affected, nil
}

func buildComparison(current, previous *domain.AggregateTotals) *domain.ComparisonMetrics {
	return &domain.ComparisonMetrics{
		Revenue:           utils.RoundWithTwoDecimalPlace(previous.Revenue),
		Leads:             previous.Leads,
		Conversions:       previous.Conversions,
		ConversionRate:    previous.ConversionRate(),
		RevenueChange:     domain.PercentChange(current.Revenue, previous.Revenue),
		LeadsChange:       domain.PercentChange(float64(current.Leads), float64(previous.Leads)),
		ConversionsChange: domain.PercentChange(float64(current.Conversions), float64(previous.Conversions)),
		ConvRateChange:    utils.RoundWithTwoDecimalPlace(current.ConversionRate() - previous.ConversionRate()),
	}
}

// revenueByGroup acumula a receita por chave de grupo preservando a ordem de
// primeira ocorrência nos registros (desempates estáveis nos rankings).
func revenueByGroup(records []*domain.SalesRecord, key func(*domain.SalesRecord) string) []domain.GroupTotal {
	index := make(map[string]int)
	groups := make([]domain.GroupTotal, 0)

	for _, record := range records {
		name := key(record)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, domain.GroupTotal{Name: name})
		}
		groups[i].Revenue += record.Revenue.InexactFloat64()
	}

	for i := range groups {
		groups[i].Revenue = utils.RoundWithTwoDecimalPlace(groups[i].Revenue)
	}

	return groups
}

// sortedByRevenue ordena os grupos por receita decrescente, estável nos
// empates (preserva a ordem de primeira ocorrência).
func sortedByRevenue(groups []domain.GroupTotal) []domain.GroupTotal {
	sorted := make([]domain.GroupTotal, len(groups))
	copy(sorted, groups)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue > sorted[j].Revenue
	})

	return sorted
}

// topN devolve os n grupos de maior receita.
func topN(groups []domain.GroupTotal, n int) []domain.GroupTotal {
	sorted := sortedByRevenue(groups)
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}

// revenueSeries agrega a receita por data em ordem crescente, para o gráfico
// de evolução do dashboard.
func revenueSeries(records []*domain.SalesRecord) []domain.TimePoint {
	byDate := make(map[string]float64)
	for _, record := range records {
		byDate[record.Date.Format(time.DateOnly)] += record.Revenue.InexactFloat64()
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	series := make([]domain.TimePoint, 0, len(dates))
	for _, date := range dates {
		series = append(series, domain.TimePoint{
			Date:    date,
			Revenue: utils.RoundWithTwoDecimalPlace(byDate[date]),
		})
	}

	return series
}

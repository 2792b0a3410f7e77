package reporting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func record(date time.Time, product, region string, revenue float64, leads, conversions int) *domain.SalesRecord {
	return &domain.SalesRecord{
		Date:        date,
		Product:     product,
		Region:      region,
		Revenue:     decimal.NewFromFloat(revenue),
		Leads:       leads,
		Conversions: conversions,
	}
}

func TestService_Dashboard_EmptySubsetProducesZeros(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	mockRecordRepo.EXPECT().List(gomock.Any()).Return([]*domain.SalesRecord{}, nil)
	mockRecordRepo.EXPECT().Aggregate(gomock.Any()).Return(&domain.AggregateTotals{}, nil)

	metrics, err := service.Dashboard(domain.FilterCriteria{}, time.Now())

	require.NoError(t, err)
	assert.Zero(t, metrics.TotalRevenue)
	assert.Zero(t, metrics.TotalLeads)
	assert.Zero(t, metrics.TotalConversions)
	assert.Zero(t, metrics.ConversionRate)
	assert.Zero(t, metrics.DataCount)
	assert.Nil(t, metrics.Comparison)
	assert.Empty(t, metrics.TopProducts)
	assert.Empty(t, metrics.TopRegions)
	assert.Empty(t, metrics.Insights)
	assert.Empty(t, metrics.RevenueByDate)
}

func TestService_Dashboard_ComparisonMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	today := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	records := []*domain.SalesRecord{
		record(time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), "Notebook", "Sul", 120, 100, 30),
	}

	mockRecordRepo.EXPECT().List(gomock.Any()).Return(records, nil)

	// Primeira agregação: período primário. Segunda: período de comparação.
	gomock.InOrder(
		mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
			Return(&domain.AggregateTotals{Revenue: 120, Leads: 100, Conversions: 30, Count: 1}, nil),
		mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
			Return(&domain.AggregateTotals{Revenue: 100, Leads: 80, Conversions: 20, Count: 4}, nil),
	)

	criteria := domain.FilterCriteria{Preset: domain.PresetLast7Days, Compare: true}
	metrics, err := service.Dashboard(criteria, today)

	require.NoError(t, err)
	require.NotNil(t, metrics.Comparison)
	assert.Equal(t, float64(100), metrics.Comparison.Revenue)
	assert.Equal(t, float64(20), metrics.Comparison.RevenueChange)
	assert.Equal(t, float64(25), metrics.Comparison.LeadsChange)
	assert.Equal(t, float64(50), metrics.Comparison.ConversionsChange)
	assert.Equal(t, 5.0, metrics.Comparison.ConvRateChange) // 30% - 25% em pontos
	assert.True(t, metrics.ComparisonMode)
	assert.Equal(t, domain.PresetLast7Days, metrics.Preset)
}

func TestService_Dashboard_EmptyComparisonPeriodIsOmitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	records := []*domain.SalesRecord{
		record(time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), "Notebook", "Sul", 120, 100, 30),
	}

	mockRecordRepo.EXPECT().List(gomock.Any()).Return(records, nil)

	gomock.InOrder(
		mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
			Return(&domain.AggregateTotals{Revenue: 120, Leads: 100, Conversions: 30, Count: 1}, nil),
		mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
			Return(&domain.AggregateTotals{}, nil),
	)

	criteria := domain.FilterCriteria{Preset: domain.PresetLast7Days, Compare: true}
	metrics, err := service.Dashboard(criteria, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Nil(t, metrics.Comparison)
	assert.True(t, metrics.ComparisonMode)
}

func TestService_Dashboard_TopGroupsLimitedToFive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	records := []*domain.SalesRecord{
		record(date, "P1", "Sul", 100, 10, 2),
		record(date, "P2", "Sul", 700, 10, 2),
		record(date, "P3", "Sul", 300, 10, 2),
		record(date, "P4", "Sul", 500, 10, 2),
		record(date, "P5", "Sul", 200, 10, 2),
		record(date, "P6", "Sul", 600, 10, 2),
		record(date, "P2", "Sul", 50, 10, 2),
	}

	mockRecordRepo.EXPECT().List(gomock.Any()).Return(records, nil)
	mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
		Return(&domain.AggregateTotals{Revenue: 2450, Leads: 70, Conversions: 14, Count: 7}, nil)

	metrics, err := service.Dashboard(domain.FilterCriteria{}, date)

	require.NoError(t, err)
	require.Len(t, metrics.TopProducts, 5)

	// Ordenados por receita decrescente, acumulando múltiplos registros do
	// mesmo produto (P2 = 700 + 50).
	assert.Equal(t, "P2", metrics.TopProducts[0].Name)
	assert.Equal(t, float64(750), metrics.TopProducts[0].Revenue)
	assert.Equal(t, "P6", metrics.TopProducts[1].Name)
	assert.Equal(t, "P4", metrics.TopProducts[2].Name)
	assert.Equal(t, "P3", metrics.TopProducts[3].Name)
	assert.Equal(t, "P5", metrics.TopProducts[4].Name)
}

func TestService_Dashboard_RevenueByDateIsChronological(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	records := []*domain.SalesRecord{
		record(time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC), "P1", "Sul", 300, 10, 2),
		record(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), "P1", "Sul", 100, 10, 2),
		record(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), "P2", "Sul", 50, 10, 2),
	}

	mockRecordRepo.EXPECT().List(gomock.Any()).Return(records, nil)
	mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
		Return(&domain.AggregateTotals{Revenue: 450, Leads: 30, Conversions: 6, Count: 3}, nil)

	metrics, err := service.Dashboard(domain.FilterCriteria{}, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, metrics.RevenueByDate, 2)
	assert.Equal(t, "2024-03-10", metrics.RevenueByDate[0].Date)
	assert.Equal(t, float64(150), metrics.RevenueByDate[0].Revenue)
	assert.Equal(t, "2024-03-12", metrics.RevenueByDate[1].Date)
	assert.Equal(t, float64(300), metrics.RevenueByDate[1].Revenue)
}

func TestService_DeleteRecords(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		all      bool
		setup    func(repo *mocks.MockSalesRecordRepository)
		expected int64
	}{
		{
			name:     "scope all ignora os filtros",
			criteria: domain.FilterCriteria{Product: "Notebook"},
			all:      true,
			setup: func(repo *mocks.MockSalesRecordRepository) {
				repo.EXPECT().
					Delete(gomock.Any()).
					DoAndReturn(func(filter domain.ResolvedFilter) (int64, error) {
						assert.True(t, filter.IsUnbounded())
						return 200, nil
					})
			},
			expected: 200,
		},
		{
			name:     "scope filtered resolve os critérios",
			criteria: domain.FilterCriteria{Product: "Notebook", Preset: domain.PresetLast7Days},
			all:      false,
			setup: func(repo *mocks.MockSalesRecordRepository) {
				repo.EXPECT().
					Delete(gomock.Any()).
					DoAndReturn(func(filter domain.ResolvedFilter) (int64, error) {
						assert.Equal(t, "Notebook", filter.Product)
						require.NotNil(t, filter.Start)
						assert.Equal(t, time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), *filter.Start)
						return 12, nil
					})
			},
			expected: 12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
			tt.setup(mockRecordRepo)

			service := NewService(mockRecordRepo)

			affected, err := service.DeleteRecords(tt.criteria, tt.all, today)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, affected)
		})
	}
}

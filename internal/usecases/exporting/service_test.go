package exporting

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

func sampleRecords() []*domain.SalesRecord {
	return []*domain.SalesRecord{
		{
			Date:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			Product:     "Notebook",
			Region:      "Sul",
			Revenue:     decimal.RequireFromString("4500.00"),
			Leads:       100,
			Conversions: 25,
		},
		{
			Date:        time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
			Product:     "Monitor",
			Region:      "Norte",
			Revenue:     decimal.RequireFromString("1234.50"),
			Leads:       40,
			Conversions: 8,
		},
		{
			Date:        time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
			Product:     "Mouse",
			Region:      "Sudeste",
			Revenue:     decimal.RequireFromString("300.00"),
			Leads:       0,
			Conversions: 0,
		},
	}
}

func TestReportFilename(t *testing.T) {
	today := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "sales_report_20240315.csv", ReportFilename("csv", today))
	assert.Equal(t, "sales_report_20240315.xlsx", ReportFilename("xlsx", today))
}

func TestService_ExportCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	mockRecordRepo.EXPECT().List(gomock.Any()).Return(sampleRecords(), nil)

	var buffer bytes.Buffer
	rows, err := service.ExportCSV(&buffer, domain.FilterCriteria{}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	parsed, err := csv.NewReader(&buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	assert.Equal(t, []string{"Date", "Product", "Region", "Revenue", "Leads", "Conversions", "Conversion Rate"}, parsed[0])
	assert.Equal(t, []string{"2024-03-10", "Notebook", "Sul", "4500.00", "100", "25", "25.00%"}, parsed[1])
	assert.Equal(t, []string{"2024-03-11", "Monitor", "Norte", "1234.50", "40", "8", "20.00%"}, parsed[2])
	// Sem leads a taxa é 0, nunca divisão por zero
	assert.Equal(t, []string{"2024-03-12", "Mouse", "Sudeste", "300.00", "0", "0", "0.00%"}, parsed[3])
}

func TestService_ExportCSV_EmptySubsetStillWritesHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	mockRecordRepo.EXPECT().List(gomock.Any()).Return([]*domain.SalesRecord{}, nil)

	var buffer bytes.Buffer
	rows, err := service.ExportCSV(&buffer, domain.FilterCriteria{}, time.Now())

	require.NoError(t, err)
	assert.Zero(t, rows)

	parsed, err := csv.NewReader(&buffer).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "Date", parsed[0][0])
}

func TestService_ExportExcel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	mockRecordRepo.EXPECT().List(gomock.Any()).Return(sampleRecords(), nil)
	mockRecordRepo.EXPECT().Aggregate(gomock.Any()).
		Return(&domain.AggregateTotals{Revenue: 6034.50, Leads: 140, Conversions: 33, Count: 3}, nil)

	file, err := service.ExportExcel(domain.FilterCriteria{}, time.Now())
	require.NoError(t, err)
	defer file.Close()

	// Serializa e reabre, garantindo que a planilha gerada é válida.
	var buffer bytes.Buffer
	require.NoError(t, file.Write(&buffer))

	workbook, err := excelize.OpenReader(&buffer)
	require.NoError(t, err)
	defer workbook.Close()

	assert.ElementsMatch(t, []string{"Sales Report", "Summary"}, workbook.GetSheetList())

	reportRows, err := workbook.GetRows("Sales Report")
	require.NoError(t, err)
	require.Len(t, reportRows, 4)
	assert.Equal(t, []string{"Date", "Product", "Region", "Revenue", "Leads", "Conversions", "Conversion Rate"}, reportRows[0])
	assert.Equal(t, "Notebook", reportRows[1][1])
	assert.Equal(t, "25.00%", reportRows[1][6])

	summaryRows, err := workbook.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summaryRows, 5)
	assert.Equal(t, []string{"Metric", "Value"}, summaryRows[0])
	assert.Equal(t, "Total Revenue", summaryRows[1][0])
	assert.Equal(t, "6034.5", summaryRows[1][1])
	assert.Equal(t, "Total Leads", summaryRows[2][0])
	assert.Equal(t, "140", summaryRows[2][1])
	assert.Equal(t, "Total Conversions", summaryRows[3][0])
	assert.Equal(t, "33", summaryRows[3][1])
	assert.Equal(t, "Conversion Rate", summaryRows[4][0])
	assert.Equal(t, "23.57%", summaryRows[4][1])
}

func TestService_ExportExcel_EmptySubset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	service := NewService(mockRecordRepo)

	mockRecordRepo.EXPECT().List(gomock.Any()).Return([]*domain.SalesRecord{}, nil)
	mockRecordRepo.EXPECT().Aggregate(gomock.Any()).Return(&domain.AggregateTotals{}, nil)

	file, err := service.ExportExcel(domain.FilterCriteria{}, time.Now())
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	summaryRows, err := file.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summaryRows, 5)
	assert.Equal(t, "0.00%", summaryRows[4][1])
}

package ingesting

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository/mocks"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	log.SetupTestLogger()
	os.Exit(m.Run())
}

func TestService_Ingest_MissingColumnsRejectsWholeFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Nenhuma expectativa: schema inválido não pode tocar os repositórios
	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	mockBatchRepo := mocks.NewMockUploadBatchRepository(ctrl)

	service := NewService(mockRecordRepo, mockBatchRepo)

	csvFile := strings.Join([]string{
		"date,product,region,revenue,conversions",
		"2024-03-01,Notebook,Sul,1000.00,5",
	}, "\n")

	result, err := service.Ingest(strings.NewReader(csvFile), 1, "vendas.csv")

	require.Error(t, err)
	assert.Nil(t, result)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"leads"}, schemaErr.MissingColumns)
	assert.True(t, IsSchemaError(err))
}

func TestService_Ingest_EmptyFileRejectedWithAllColumnsMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	mockBatchRepo := mocks.NewMockUploadBatchRepository(ctrl)

	service := NewService(mockRecordRepo, mockBatchRepo)

	_, err := service.Ingest(strings.NewReader(""), 1, "vazio.csv")

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, RequiredColumns, schemaErr.MissingColumns)
}

func TestService_Ingest_PartialSuccessSkipsInvalidRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	mockBatchRepo := mocks.NewMockUploadBatchRepository(ctrl)

	service := NewService(mockRecordRepo, mockBatchRepo)

	// Linha 2: receita não numérica. Linha 4: leads negativo. Ambas puladas.
	csvFile := strings.Join([]string{
		"date,product,region,revenue,leads,conversions",
		"2024-03-01,Notebook,Sul,4500.00,100,20",
		"2024-03-02,Notebook,Sul,abc,50,10",
		"2024-03-03,Monitor,Norte,1200.50,40,8",
		"2024-03-04,Mouse,Sudeste,300.00,-5,1",
	}, "\n")

	mockBatchRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(batch *domain.UploadBatch) error {
			assert.Equal(t, 7, batch.UserID)
			assert.Equal(t, "vendas.csv", batch.Filename)
			assert.Len(t, batch.Reference, 6)
			batch.ID = 42
			return nil
		})

	inserted := make([]*domain.SalesRecord, 0, 2)
	mockRecordRepo.EXPECT().
		Insert(gomock.Any()).
		DoAndReturn(func(record *domain.SalesRecord) error {
			inserted = append(inserted, record)
			return nil
		}).
		Times(2)

	mockBatchRepo.EXPECT().FinalizeRowCount(int64(42), 2).Return(nil)

	result, err := service.Ingest(strings.NewReader(csvFile), 7, "vendas.csv")

	require.NoError(t, err)
	assert.Equal(t, int64(42), result.BatchID)
	assert.NotEmpty(t, result.Reference)
	assert.Equal(t, 2, result.RowsImported)
	assert.Equal(t, 4, result.TotalRows)

	require.Len(t, inserted, 2)
	assert.Equal(t, "Notebook", inserted[0].Product)
	assert.Equal(t, 7, inserted[0].UploadedBy)
	assert.Equal(t, "4500", inserted[0].Revenue.String())
	assert.Equal(t, "Monitor", inserted[1].Product)
	assert.Equal(t, 40, inserted[1].Leads)
}

func TestService_Ingest_InsertFailureDoesNotAbortBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	mockBatchRepo := mocks.NewMockUploadBatchRepository(ctrl)

	service := NewService(mockRecordRepo, mockBatchRepo)

	csvFile := strings.Join([]string{
		"date,product,region,revenue,leads,conversions",
		"2024-03-01,Notebook,Sul,4500.00,100,20",
		"2024-03-02,Monitor,Norte,1200.50,40,8",
	}, "\n")

	mockBatchRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(batch *domain.UploadBatch) error {
			batch.ID = 9
			return nil
		})

	gomock.InOrder(
		mockRecordRepo.EXPECT().Insert(gomock.Any()).Return(errors.New("deadlock detected")),
		mockRecordRepo.EXPECT().Insert(gomock.Any()).Return(nil),
	)

	mockBatchRepo.EXPECT().FinalizeRowCount(int64(9), 1).Return(nil)

	result, err := service.Ingest(strings.NewReader(csvFile), 1, "vendas.csv")

	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsImported)
	assert.Equal(t, 2, result.TotalRows)
}

func TestService_Ingest_AcceptsAlternativeDateFormats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRecordRepo := mocks.NewMockSalesRecordRepository(ctrl)
	mockBatchRepo := mocks.NewMockUploadBatchRepository(ctrl)

	service := NewService(mockRecordRepo, mockBatchRepo)

	csvFile := strings.Join([]string{
		"date,product,region,revenue,leads,conversions",
		"2024/03/05,Notebook,Sul,100.00,10,2",
		"03/05/2024,Monitor,Norte,200.00,20,4",
	}, "\n")

	mockBatchRepo.EXPECT().
		Create(gomock.Any()).
		DoAndReturn(func(batch *domain.UploadBatch) error {
			batch.ID = 1
			return nil
		})

	dates := make([]time.Time, 0, 2)
	mockRecordRepo.EXPECT().
		Insert(gomock.Any()).
		DoAndReturn(func(record *domain.SalesRecord) error {
			dates = append(dates, record.Date)
			return nil
		}).
		Times(2)

	mockBatchRepo.EXPECT().FinalizeRowCount(int64(1), 2).Return(nil)

	result, err := service.Ingest(strings.NewReader(csvFile), 1, "vendas.csv")

	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsImported)

	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), dates[0])
	// Formato 01/02/2006: mês/dia/ano
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), dates[1])
}

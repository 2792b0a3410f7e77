package ingesting

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

// Formatos de data aceitos por linha, na ordem de tentativa. O primeiro é o
// canônico; os demais cobrem variações comuns de planilhas exportadas.
var dateFormats = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
}

// Result é o resultado de uma ingestão: linhas importadas versus linhas
// vistas, para a mensagem de sucesso exibida ao usuário.
type Result struct {
	BatchID      int64  `json:"batch_id"`
	Reference    string `json:"reference"`
	RowsImported int    `json:"rows_imported"`
	TotalRows    int    `json:"total_rows"`
}

type Ingester interface {
	Ingest(file io.Reader, ownerID int, filename string) (*Result, error)
	ListBatches(userID int) ([]*domain.UploadBatch, error)
}

type Service struct {
	recordRepo repository.SalesRecordRepository
	batchRepo  repository.UploadBatchRepository
}

func NewService(
	recordRepo repository.SalesRecordRepository,
	batchRepo repository.UploadBatchRepository,
) Ingester {
	return &Service{
		recordRepo: recordRepo,
		batchRepo:  batchRepo,
	}
}

// Ingest processa um CSV com cabeçalho em semântica de sucesso parcial:
// o schema é validado antes de qualquer persistência (falha total), mas cada
// linha é convertida de forma independente e linhas inválidas são puladas
// silenciosamente sem abortar o lote. As linhas válidas são inseridas
// incrementalmente, sem transação envolvendo o lote inteiro.
func (s *Service) Ingest(file io.Reader, ownerID int, filename string) (*Result, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	columns, err := s.readHeader(reader)
	if err != nil {
		return nil, err
	}

	// Código curto exibido ao usuário para referenciar o lote em suporte.
	reference, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar referência do lote: %w", err)
	}

	// O lote é criado antes da iteração; a contagem final é gravada depois.
	batch := &domain.UploadBatch{
		Reference: reference,
		UserID:    ownerID,
		Filename:  filename,
	}
	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}

	result := &Result{BatchID: batch.ID, Reference: batch.Reference}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Linha malformada no nível do CSV: conta como vista, não importa.
			result.TotalRows++
			continue
		}

		result.TotalRows++

		record, err := parseRow(row, columns)
		if err != nil {
			log.L.WithError(err).WithField("row", result.TotalRows).
				Debug("ingest: linha ignorada por falha de conversão")
			continue
		}

		record.UploadedBy = ownerID

		if err := s.recordRepo.Insert(record); err != nil {
			log.L.WithError(err).WithField("row", result.TotalRows).
				Warn("ingest: falha ao inserir linha, ignorando")
			continue
		}

		result.RowsImported++
	}

	if err := s.batchRepo.FinalizeRowCount(batch.ID, result.RowsImported); err != nil {
		log.L.WithError(err).WithField("upload_batch_id", batch.ID).
			Error("ingest: erro ao finalizar contagem de linhas do lote")
	}

	log.L.WithFields(log.Fields{
		"upload_batch_id": batch.ID,
		"rows_imported":   result.RowsImported,
		"rows_seen":       result.TotalRows,
	}).Info("ingest: ingestão de CSV concluída")

	return result, nil
}

func (s *Service) ListBatches(userID int) ([]*domain.UploadBatch, error) {
	return s.batchRepo.ListByUser(userID)
}

// readHeader valida o cabeçalho contra as colunas obrigatórias e devolve o
// índice de cada coluna. Qualquer coluna ausente rejeita o upload inteiro.
func (s *Service) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		// Arquivo vazio ou cabeçalho ilegível: nenhuma coluna presente.
		return nil, &SchemaError{MissingColumns: RequiredColumns}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return nil, &SchemaError{MissingColumns: missing}
	}

	return columns, nil
}

// parseRow converte uma linha do CSV em um registro de venda. Qualquer campo
// ausente, não conversível ou negativo invalida a linha inteira.
func parseRow(row []string, columns map[string]int) (*domain.SalesRecord, error) {
	field := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(row) {
			return "", errors.New("campo ausente na linha: " + name)
		}
		return strings.TrimSpace(row[idx]), nil
	}

	rawDate, err := field("date")
	if err != nil {
		return nil, err
	}
	date, err := parseRowDate(rawDate)
	if err != nil {
		return nil, err
	}

	product, err := field("product")
	if err != nil {
		return nil, err
	}
	if product == "" {
		return nil, errors.New("produto vazio")
	}

	region, err := field("region")
	if err != nil {
		return nil, err
	}
	if region == "" {
		return nil, errors.New("região vazia")
	}

	rawRevenue, err := field("revenue")
	if err != nil {
		return nil, err
	}
	revenue, err := decimal.NewFromString(rawRevenue)
	if err != nil {
		return nil, err
	}
	if revenue.IsNegative() {
		return nil, errors.New("receita negativa")
	}

	leads, err := parseNonNegativeInt(row, columns, "leads")
	if err != nil {
		return nil, err
	}

	conversions, err := parseNonNegativeInt(row, columns, "conversions")
	if err != nil {
		return nil, err
	}

	return &domain.SalesRecord{
		Date:        date,
		Product:     product,
		Region:      region,
		Revenue:     revenue,
		Leads:       leads,
		Conversions: conversions,
	}, nil
}

func parseRowDate(value string) (time.Time, error) {
	var lastErr error
	for _, format := range dateFormats {
		date, err := time.Parse(format, value)
		if err == nil {
			return date, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseNonNegativeInt(row []string, columns map[string]int, name string) (int, error) {
	idx := columns[name]
	if idx >= len(row) {
		return 0, errors.New("campo ausente na linha: " + name)
	}

	value, err := strconv.Atoi(strings.TrimSpace(row[idx]))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errors.New("valor negativo para " + name)
	}

	return value, nil
}

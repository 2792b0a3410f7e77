package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/ingesting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/middleware"
)

// UploadResponse é a resposta de um upload de CSV, com a contagem de linhas
// importadas e a mensagem exibida ao usuário.
type UploadResponse struct {
	BatchID      int64  `json:"batch_id"`
	Reference    string `json:"reference"`
	RowsImported int    `json:"rows_imported"`
	TotalRows    int    `json:"total_rows"`
	Message      string `json:"message"`
}

// UploadCSV recebe um arquivo CSV multipart e o ingere no banco de dados.
// Linhas inválidas são descartadas sem rejeitar o restante do arquivo.
func UploadCSV(service ingesting.Ingester, maxSizeMB int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		maxBytes := maxSizeMB << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			logger.WithError(err).Warn("upload: failed to parse multipart form")
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				fmt.Sprintf("Arquivo inválido ou maior que %dMB", maxSizeMB), nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Arquivo CSV não fornecido", nil)
			return
		}
		defer file.Close()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Apenas arquivos CSV são aceitos", nil)
			return
		}

		logger.WithFields(log.Fields{
			"filename": header.Filename,
			"size":     header.Size,
			"user_id":  userClaims.UserID,
		}).Info("upload: ingesting CSV file")

		result, err := service.Ingest(file, userClaims.UserID, header.Filename)
		if err != nil {
			var schemaErr *ingesting.SchemaError
			if errors.As(err, &schemaErr) {
				logger.WithField("missing_columns", schemaErr.MissingColumns).
					Warn("upload: CSV rejected due to missing columns")

				apiErrors.WriteError(w, apiErrors.ErrMissingColumns, schemaErr.Error(), map[string]any{
					"missing_columns": schemaErr.MissingColumns,
				})
				return
			}

			logger.WithError(err).Error("upload: failed to ingest CSV file")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao processar arquivo", nil)
			return
		}

		logger.WithFields(log.Fields{
			"batch_id":      result.BatchID,
			"rows_imported": result.RowsImported,
			"rows_total":    result.TotalRows,
		}).Info("upload: CSV file ingested")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResponse{
			BatchID:      result.BatchID,
			Reference:    result.Reference,
			RowsImported: result.RowsImported,
			TotalRows:    result.TotalRows,
			Message:      fmt.Sprintf("%d de %d linhas importadas com sucesso", result.RowsImported, result.TotalRows),
		})
	})
}

// ListUploads retorna o histórico de uploads do usuário logado.
func ListUploads(service ingesting.Ingester) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		batches, err := service.ListBatches(userClaims.UserID)
		if err != nil {
			logger.WithError(err).Error("upload: failed to list upload batches")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar histórico de uploads", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(batches); err != nil {
			logger.WithError(err).Error("upload: failed to encode response")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

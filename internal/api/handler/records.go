package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

// DeleteRecordsResponse é a resposta da remoção de registros de vendas.
type DeleteRecordsResponse struct {
	Deleted int64 `json:"deleted"`
}

// DeleteRecords remove registros de vendas. Com scope=all remove todos os
// registros; com scope=filtered remove apenas o subconjunto filtrado.
func DeleteRecords(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		scope := r.URL.Query().Get("scope")
		if scope == "" {
			scope = "filtered"
		}

		if scope != "all" && scope != "filtered" {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Parâmetro scope deve ser 'all' ou 'filtered'", nil)
			return
		}

		criteria := parseFilterCriteria(r)

		deleted, err := service.DeleteRecords(criteria, scope == "all", time.Now())
		if err != nil {
			logger.WithError(err).Error("records: failed to delete sales records")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao remover registros", nil)
			return
		}

		logger.WithFields(log.Fields{
			"scope":        scope,
			"rows_deleted": deleted,
		}).Info("records: sales records deleted")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DeleteRecordsResponse{Deleted: deleted})
	})
}

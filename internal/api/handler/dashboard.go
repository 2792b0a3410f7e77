package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
)

// parseFilterCriteria monta os critérios de filtro a partir da query string.
// Datas malformadas são tratadas como ausentes, nunca como erro.
func parseFilterCriteria(r *http.Request) domain.FilterCriteria {
	query := r.URL.Query()

	startDate, err := utils.ParseOptionalDate(query.Get("start_date"))
	if err != nil {
		startDate = nil
	}

	endDate, err := utils.ParseOptionalDate(query.Get("end_date"))
	if err != nil {
		endDate = nil
	}

	return domain.FilterCriteria{
		StartDate: startDate,
		EndDate:   endDate,
		Product:   query.Get("product"),
		Region:    query.Get("region"),
		Preset:    query.Get("preset"),
		Compare:   query.Get("compare") == "true",
	}
}

// GetDashboard retorna as métricas agregadas do subconjunto filtrado:
// totais, comparação com o período anterior, rankings e insights.
func GetDashboard(service reporting.Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		criteria := parseFilterCriteria(r)

		logger.WithFields(log.Fields{
			"preset":  criteria.Preset,
			"product": criteria.Product,
			"region":  criteria.Region,
			"compare": criteria.Compare,
		}).Info("dashboard: fetching metrics")

		metrics, err := service.Dashboard(criteria, time.Now())
		if err != nil {
			logger.WithError(err).Error("dashboard: failed to compute metrics")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao calcular métricas do dashboard", nil)
			return
		}

		if log.IsDevelopment() {
			logger.Debugf("dashboard: metrics payload\n%s", utils.PrettyJson(metrics))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics); err != nil {
			logger.WithError(err).Error("dashboard: failed to encode response")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
		}
	})
}

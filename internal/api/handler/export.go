package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vfg2006/sales-analytics-api/internal/usecases/exporting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportCSVReport exporta o subconjunto filtrado como arquivo CSV.
func ExportCSVReport(service exporting.Exporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		criteria := parseFilterCriteria(r)
		today := time.Now()
		filename := exporting.ReportFilename("csv", today)

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		rows, err := service.ExportCSV(w, criteria, today)
		if err != nil {
			// Cabeçalhos já enviados: só resta registrar a falha.
			logger.WithError(err).Error("export: failed to write CSV report")
			return
		}

		logger.WithFields(log.Fields{
			"filename":   filename,
			"rows_total": rows,
		}).Info("export: CSV report generated")
	})
}

// ExportExcelReport exporta o subconjunto filtrado como planilha XLSX com
// abas de dados e de resumo.
func ExportExcelReport(service exporting.Exporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		criteria := parseFilterCriteria(r)
		today := time.Now()

		file, err := service.ExportExcel(criteria, today)
		if err != nil {
			logger.WithError(err).Error("export: failed to build XLSX report")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao gerar planilha", nil)
			return
		}
		defer file.Close()

		filename := exporting.ReportFilename("xlsx", today)

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := file.Write(w); err != nil {
			logger.WithError(err).Error("export: failed to write XLSX report")
			return
		}

		logger.WithField("filename", filename).Info("export: XLSX report generated")
	})
}

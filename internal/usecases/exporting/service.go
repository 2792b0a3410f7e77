package exporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const (
	reportSheet  = "Sales Report"
	summarySheet = "Summary"

	headerFillColor = "366092"
	headerFontColor = "FFFFFF"
)

// reportHeader são as colunas do relatório, na ordem de exportação.
var reportHeader = []string{"Date", "Product", "Region", "Revenue", "Leads", "Conversions", "Conversion Rate"}

// Exporter serializa o subconjunto filtrado como CSV ou planilha XLSX.
// Os critérios são resolvidos de forma independente no momento da exportação,
// nunca reaproveitados de uma visualização anterior do dashboard.
type Exporter interface {
	ExportCSV(w io.Writer, criteria domain.FilterCriteria, today time.Time) (int, error)
	ExportExcel(criteria domain.FilterCriteria, today time.Time) (*excelize.File, error)
}

type Service struct {
	recordRepo repository.SalesRecordRepository
}

func NewService(recordRepo repository.SalesRecordRepository) Exporter {
	return &Service{
		recordRepo: recordRepo,
	}
}

// ReportFilename monta o nome do arquivo de exportação: sales_report_<YYYYMMDD>.<ext>
func ReportFilename(ext string, today time.Time) string {
	return fmt.Sprintf("sales_report_%s.%s", today.Format("20060102"), ext)
}

// ExportCSV escreve o relatório tabular: uma linha de cabeçalho e uma linha
// por registro, com a taxa de conversão formatada em porcentagem com duas
// casas decimais. Devolve o número de linhas de dados escritas.
func (s *Service) ExportCSV(w io.Writer, criteria domain.FilterCriteria, today time.Time) (int, error) {
	filter, _ := criteria.Resolve(today)

	records, err := s.recordRepo.List(filter)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(reportHeader); err != nil {
		return 0, fmt.Errorf("erro ao escrever cabeçalho do CSV: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.Date.Format(time.DateOnly),
			record.Product,
			record.Region,
			record.Revenue.StringFixed(2),
			fmt.Sprintf("%d", record.Leads),
			fmt.Sprintf("%d", record.Conversions),
			fmt.Sprintf("%.2f%%", record.ConversionRate()),
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("erro ao escrever linha do CSV: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("erro ao finalizar o CSV: %w", err)
	}

	return len(records), nil
}

// ExportExcel monta a planilha com duas abas: "Sales Report" com os mesmos
// dados tabulares do CSV e "Summary" com os quatro escalares agregados do
// mesmo subconjunto.
func (s *Service) ExportExcel(criteria domain.FilterCriteria, today time.Time) (*excelize.File, error) {
	filter, _ := criteria.Resolve(today)

	records, err := s.recordRepo.List(filter)
	if err != nil {
		return nil, err
	}

	totals, err := s.recordRepo.Aggregate(filter)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("erro ao renomear aba do relatório: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar estilo de cabeçalho: %w", err)
	}

	if err := s.writeReportSheet(file, headerStyle, records); err != nil {
		return nil, err
	}

	if err := s.writeSummarySheet(file, headerStyle, totals); err != nil {
		return nil, err
	}

	return file, nil
}

func (s *Service) writeReportSheet(file *excelize.File, headerStyle int, records []*domain.SalesRecord) error {
	header := make([]interface{}, len(reportHeader))
	widths := make([]float64, len(reportHeader))
	for i, name := range reportHeader {
		header[i] = name
		widths[i] = float64(len(name))
	}

	if err := file.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return fmt.Errorf("erro ao escrever cabeçalho do relatório: %w", err)
	}

	lastColumn, err := excelize.ColumnNumberToName(len(reportHeader))
	if err != nil {
		return err
	}

	if err := file.SetCellStyle(reportSheet, "A1", lastColumn+"1", headerStyle); err != nil {
		return fmt.Errorf("erro ao aplicar estilo do cabeçalho: %w", err)
	}

	for i, record := range records {
		row := []interface{}{
			record.Date.Format(time.DateOnly),
			record.Product,
			record.Region,
			record.Revenue.InexactFloat64(),
			record.Leads,
			record.Conversions,
			fmt.Sprintf("%.2f%%", record.ConversionRate()),
		}

		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("erro ao escrever linha %d do relatório: %w", i+2, err)
		}

		for col, value := range row {
			if width := float64(len(fmt.Sprint(value))); width > widths[col] {
				widths[col] = width
			}
		}
	}

	// Largura ajustada ao maior valor de cada coluna, como no dashboard web.
	for i, width := range widths {
		column, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(reportSheet, column, column, width+2); err != nil {
			return fmt.Errorf("erro ao ajustar largura da coluna %s: %w", column, err)
		}
	}

	return nil
}

func (s *Service) writeSummarySheet(file *excelize.File, headerStyle int, totals *domain.AggregateTotals) error {
	if _, err := file.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("erro ao criar aba de resumo: %w", err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Revenue", utils.RoundWithTwoDecimalPlace(totals.Revenue)},
		{"Total Leads", totals.Leads},
		{"Total Conversions", totals.Conversions},
		{"Conversion Rate", fmt.Sprintf("%.2f%%", totals.ConversionRate())},
	}

	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := file.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("erro ao escrever resumo: %w", err)
		}
	}

	if err := file.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("erro ao aplicar estilo do resumo: %w", err)
	}

	return nil
}

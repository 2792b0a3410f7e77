package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord representa uma observação de vendas importada de um CSV.
// Registros nunca são atualizados: são criados em lote na ingestão e
// removidos apenas pelas operações explícitas de exclusão.
type SalesRecord struct {
	ID          int64           `json:"id"`
	UploadedBy  int             `json:"uploaded_by"`
	Date        time.Time       `json:"date"`
	Product     string          `json:"product"`
	Region      string          `json:"region"`
	Revenue     decimal.Decimal `json:"revenue"`
	Leads       int             `json:"leads"`
	Conversions int             `json:"conversions"`
	UploadedAt  time.Time       `json:"uploaded_at"`
}

// ConversionRate calcula a taxa de conversão do registro em porcentagem.
// Por definição a taxa é 0 quando não há leads (nunca divisão por zero).
func (r *SalesRecord) ConversionRate() float64 {
	if r.Leads <= 0 {
		return 0
	}
	return float64(r.Conversions) / float64(r.Leads) * 100
}

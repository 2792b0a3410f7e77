package domain

// Severidades possíveis de um insight.
const (
	InsightSuccess = "success"
	InsightWarning = "warning"
	InsightInfo    = "info"
	InsightDanger  = "danger"
)

// Insight é uma observação heurística sobre os dados agregados, exibida no
// dashboard com uma classe de severidade e um ícone.
type Insight struct {
	Type    string `json:"type"`
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

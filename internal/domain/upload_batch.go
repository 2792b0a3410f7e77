package domain

import "time"

// UploadBatch representa os metadados de um evento de ingestão de CSV.
// Criado antes da iteração das linhas; o contador de linhas importadas é
// finalizado uma única vez ao término da ingestão.
type UploadBatch struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	UserID       int       `json:"user_id"`
	Filename     string    `json:"filename"`
	RowsImported int       `json:"rows_imported"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

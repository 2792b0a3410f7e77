package repository

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const (
	uploadBatchesTable = "upload_batches"
)

// UploadBatchRepository persiste os metadados de cada ingestão de CSV.
// O lote é criado antes da iteração das linhas e o contador final é gravado
// uma única vez ao término (única mutação do ciclo de vida).
type UploadBatchRepository interface {
	Create(batch *domain.UploadBatch) error
	FinalizeRowCount(batchID int64, rowsImported int) error
	ListByUser(userID int) ([]*domain.UploadBatch, error)
}

type uploadBatchRepository struct {
	conn *postgres.Connection
}

func NewUploadBatchRepository(conn *postgres.Connection) UploadBatchRepository {
	return &uploadBatchRepository{
		conn: conn,
	}
}

func (r *uploadBatchRepository) Create(batch *domain.UploadBatch) error {
	query, args, err := squirrel.
		Insert(uploadBatchesTable).
		Columns("reference", "user_id", "filename").
		Values(batch.Reference, batch.UserID, batch.Filename).
		Suffix("RETURNING id, uploaded_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	err = r.conn.QueryRow(query, args...).Scan(&batch.ID, &batch.UploadedAt)
	if err != nil {
		return fmt.Errorf("erro ao criar lote de upload: %w", err)
	}

	return nil
}

func (r *uploadBatchRepository) FinalizeRowCount(batchID int64, rowsImported int) error {
	query, args, err := squirrel.
		Update(uploadBatchesTable).
		Set("rows_imported", rowsImported).
		Where(squirrel.Eq{"id": batchID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao finalizar contagem de linhas do lote: %w", err)
	}

	return nil
}

func (r *uploadBatchRepository) ListByUser(userID int) ([]*domain.UploadBatch, error) {
	query, args, err := squirrel.
		Select("id", "reference", "user_id", "filename", "rows_imported", "uploaded_at").
		From(uploadBatchesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("uploaded_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	batches := make([]*domain.UploadBatch, 0)
	for rows.Next() {
		batch := &domain.UploadBatch{}
		err := rows.Scan(&batch.ID, &batch.Reference, &batch.UserID, &batch.Filename, &batch.RowsImported, &batch.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear lote de upload: %w", err)
		}
		batches = append(batches, batch)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return batches, nil
}

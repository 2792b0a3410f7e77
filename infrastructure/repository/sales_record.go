package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
)

const (
	salesRecordsTable = "sales_records"
)

// SalesRecordRepository é o repositório durável de registros de vendas.
// Cada operação é atômica no nível do statement; nenhuma operação exige
// transação de múltiplos passos.
type SalesRecordRepository interface {
	Insert(record *domain.SalesRecord) error
	List(filter domain.ResolvedFilter) ([]*domain.SalesRecord, error)
	Aggregate(filter domain.ResolvedFilter) (*domain.AggregateTotals, error)
	Delete(filter domain.ResolvedFilter) (int64, error)
	DeleteOlderThan(days int) (int64, error)
}

type salesRecordRepository struct {
	conn *postgres.Connection
}

func NewSalesRecordRepository(conn *postgres.Connection) SalesRecordRepository {
	return &salesRecordRepository{
		conn: conn,
	}
}

func (r *salesRecordRepository) Insert(record *domain.SalesRecord) error {
	query, args, err := squirrel.
		Insert(salesRecordsTable).
		Columns("uploaded_by", "date", "product", "region", "revenue", "leads", "conversions").
		Values(
			record.UploadedBy,
			record.Date.Format(time.DateOnly),
			record.Product,
			record.Region,
			record.Revenue,
			record.Leads,
			record.Conversions,
		).
		Suffix("RETURNING id, uploaded_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	err = r.conn.QueryRow(query, args...).Scan(&record.ID, &record.UploadedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao inserir registro de venda: %w", err)
	}

	return nil
}

func (r *salesRecordRepository) List(filter domain.ResolvedFilter) ([]*domain.SalesRecord, error) {
	builder := squirrel.
		Select("id", "uploaded_by", "date", "product", "region", "revenue", "leads", "conversions", "uploaded_at").
		From(salesRecordsTable).
		OrderBy("date DESC", "id DESC").
		PlaceholderFormat(squirrel.Dollar)

	if conj := filterConjunction(filter); len(conj) > 0 {
		builder = builder.Where(conj)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.SalesRecord, 0)
	for rows.Next() {
		record, err := scanSalesRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear registro de venda: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}

// Aggregate calcula os somatórios escalares do subconjunto direto no banco.
// COALESCE garante zeros para subconjuntos vazios.
func (r *salesRecordRepository) Aggregate(filter domain.ResolvedFilter) (*domain.AggregateTotals, error) {
	builder := squirrel.
		Select(
			"COALESCE(SUM(revenue), 0)",
			"COALESCE(SUM(leads), 0)",
			"COALESCE(SUM(conversions), 0)",
			"COUNT(*)",
		).
		From(salesRecordsTable).
		PlaceholderFormat(squirrel.Dollar)

	if conj := filterConjunction(filter); len(conj) > 0 {
		builder = builder.Where(conj)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var revenue decimal.Decimal
	totals := &domain.AggregateTotals{}

	err = r.conn.QueryRow(query, args...).Scan(&revenue, &totals.Leads, &totals.Conversions, &totals.Count)
	if err != nil {
		return nil, fmt.Errorf("erro ao agregar registros de vendas: %w", err)
	}

	totals.Revenue = revenue.InexactFloat64()
	return totals, nil
}

func (r *salesRecordRepository) Delete(filter domain.ResolvedFilter) (int64, error) {
	builder := squirrel.
		Delete(salesRecordsTable).
		PlaceholderFormat(squirrel.Dollar)

	if conj := filterConjunction(filter); len(conj) > 0 {
		builder = builder.Where(conj)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func (r *salesRecordRepository) DeleteOlderThan(days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format(time.DateOnly)

	query, args, err := squirrel.
		Delete(salesRecordsTable).
		Where(squirrel.Lt{"date": cutoffDate}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

// filterConjunction traduz o filtro resolvido em predicados AND independentes:
// intervalo de datas [start, end) e substring case-insensitive via ILIKE.
func filterConjunction(filter domain.ResolvedFilter) squirrel.And {
	conj := squirrel.And{}

	if filter.Start != nil {
		conj = append(conj, squirrel.GtOrEq{"date": filter.Start.Format(time.DateOnly)})
	}

	if filter.End != nil {
		conj = append(conj, squirrel.Lt{"date": filter.End.Format(time.DateOnly)})
	}

	if filter.Product != "" {
		conj = append(conj, squirrel.ILike{"product": "%" + filter.Product + "%"})
	}

	if filter.Region != "" {
		conj = append(conj, squirrel.ILike{"region": "%" + filter.Region + "%"})
	}

	return conj
}

func scanSalesRecord(rows *sql.Rows) (*domain.SalesRecord, error) {
	record := &domain.SalesRecord{}

	err := rows.Scan(
		&record.ID,
		&record.UploadedBy,
		&record.Date,
		&record.Product,
		&record.Region,
		&record.Revenue,
		&record.Leads,
		&record.Conversions,
		&record.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	return record, nil
}

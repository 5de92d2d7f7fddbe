package db

import (
	"context"
	"fmt"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

const reportColumns = `
	reporte_id, reporta_usuario_id, reportado_usuario_id, intercambio_id, motivo, COALESCE(descripcion, ''),
	estado, notas_admin, resuelto_por, fecha_reporte, fecha_resolucion`

func scanReport(row interface{ Scan(dest ...any) error }) (*models.Report, error) {
	var r models.Report
	err := row.Scan(
		&r.ID, &r.ReporterID, &r.ReportedUserID, &r.ExchangeID, &r.Reason, &r.Description,
		&r.Status, &r.AdminNotes, &r.ResolvedBy, &r.CreatedAt, &r.ResolvedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// CreateReport сохраняет жалобу
func (s *Store) CreateReport(ctx context.Context, r *models.Report) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO reporte (reporta_usuario_id, reportado_usuario_id, intercambio_id, motivo, descripcion, estado, fecha_reporte)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING reporte_id, fecha_reporte
	`, r.ReporterID, r.ReportedUserID, r.ExchangeID, r.Reason, r.Description, r.Status,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания жалобы: %w", err)
	}
	return nil
}

// GetReport получает жалобу по ID
func (s *Store) GetReport(ctx context.Context, id int64) (*models.Report, error) {
	return scanReport(s.q.QueryRow(ctx, `SELECT `+reportColumns+` FROM reporte WHERE reporte_id = $1`, id))
}

// ListReports возвращает жалобы, новые первыми
func (s *Store) ListReports(ctx context.Context, status string) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reporte`
	var args []any
	if status != "" {
		query += ` WHERE estado = $1`
		args = append(args, status)
	}
	query += ` ORDER BY fecha_reporte DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса жалоб: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// UpdateReport сохраняет решение модератора
func (s *Store) UpdateReport(ctx context.Context, r *models.Report) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE reporte
		SET estado = $2, notas_admin = $3, resuelto_por = $4, fecha_resolucion = $5
		WHERE reporte_id = $1
	`, r.ID, r.Status, r.AdminNotes, r.ResolvedBy, r.ResolvedAt)
	if err != nil {
		return fmt.Errorf("ошибка обновления жалобы: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountResolvedReportsAgainst считает подтвержденные жалобы на пользователя
func (s *Store) CountResolvedReportsAgainst(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM reporte WHERE reportado_usuario_id = $1 AND estado = 'resuelto'
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета жалоб: %w", err)
	}
	return n, nil
}

package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

// InsertNotification сохраняет уведомление
func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	var data []byte
	if len(n.Data) > 0 {
		var err error
		if data, err = json.Marshal(n.Data); err != nil {
			return fmt.Errorf("ошибка сериализации данных уведомления: %w", err)
		}
	}

	err := s.q.QueryRow(ctx, `
		INSERT INTO notificacion (usuario_id, tipo, titulo, mensaje, datos_adicionales, leida, es_push, es_email, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5::jsonb, false, $6, $7, NOW())
		RETURNING notificacion_id, fecha_creacion
	`, n.UserID, n.Type, n.Title, n.Message, data, n.Push, n.Email).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения уведомления: %w", err)
	}
	return nil
}

// ListNotifications возвращает уведомления пользователя, новые первыми
func (s *Store) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT notificacion_id, usuario_id, tipo, titulo, mensaje, datos_adicionales, leida, es_push, es_email, fecha_creacion
		FROM notificacion
		WHERE usuario_id = $1`
	if unreadOnly {
		query += ` AND leida = false`
	}
	query += ` ORDER BY fecha_creacion DESC LIMIT $2 OFFSET $3`

	rows, err := s.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса уведомлений: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &data,
			&n.Read, &n.Push, &n.Email, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("ошибка разбора данных уведомления %d: %w", n.ID, err)
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead отмечает уведомление прочитанным; false, если оно не принадлежит пользователю
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE notificacion SET leida = true WHERE notificacion_id = $1 AND usuario_id = $2
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления уведомления: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllNotificationsRead отмечает все уведомления пользователя прочитанными
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE notificacion SET leida = true WHERE usuario_id = $1 AND leida = false
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("ошибка обновления уведомлений: %w", err)
	}
	return tag.RowsAffected(), nil
}

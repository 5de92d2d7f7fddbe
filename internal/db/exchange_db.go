package db

import (
	"context"
	"fmt"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

const exchangeColumns = `
	intercambio_id, usuario_propone_id, usuario_recibe_id, producto_ofrecido_id, producto_solicitado_id,
	estado, COALESCE(mensaje_propuesta, ''), lugar_encuentro, fecha_encuentro, motivo_rechazo,
	fecha_propuesta, fecha_respuesta, fecha_completado, fecha_actualizacion`

func scanExchange(row interface{ Scan(dest ...any) error }) (*models.Exchange, error) {
	var e models.Exchange
	err := row.Scan(
		&e.ID, &e.ProposerID, &e.ReceiverID, &e.OfferedProductID, &e.RequestedProductID,
		&e.Status, &e.Message, &e.MeetingPlace, &e.MeetingDate, &e.RejectionReason,
		&e.ProposedAt, &e.RespondedAt, &e.CompletedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// CreateExchange сохраняет новый обмен в статусе, указанном в e.Status
func (s *Store) CreateExchange(ctx context.Context, e *models.Exchange) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO intercambio (usuario_propone_id, usuario_recibe_id, producto_ofrecido_id, producto_solicitado_id,
		                         estado, mensaje_propuesta, fecha_propuesta, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING intercambio_id, fecha_propuesta, fecha_actualizacion
	`, e.ProposerID, e.ReceiverID, e.OfferedProductID, e.RequestedProductID, e.Status, e.Message,
	).Scan(&e.ID, &e.ProposedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания обмена: %w", err)
	}
	return nil
}

// GetExchange получает обмен по ID
func (s *Store) GetExchange(ctx context.Context, id int64) (*models.Exchange, error) {
	return scanExchange(s.q.QueryRow(ctx, `SELECT `+exchangeColumns+` FROM intercambio WHERE intercambio_id = $1`, id))
}

// LockExchange получает обмен и блокирует строку до конца транзакции
func (s *Store) LockExchange(ctx context.Context, id int64) (*models.Exchange, error) {
	return scanExchange(s.q.QueryRow(ctx, `
		SELECT `+exchangeColumns+` FROM intercambio WHERE intercambio_id = $1 FOR UPDATE
	`, id))
}

// FindOpenExchange ищет незавершенный обмен между пользователями по товару
func (s *Store) FindOpenExchange(ctx context.Context, proposerID, receiverID, productID int64) (*models.Exchange, error) {
	return scanExchange(s.q.QueryRow(ctx, `
		SELECT `+exchangeColumns+`
		FROM intercambio
		WHERE usuario_propone_id = $1 AND usuario_recibe_id = $2 AND producto_ofrecido_id = $3
		  AND estado NOT IN ('rechazado', 'completado', 'fallido', 'cancelado')
		ORDER BY fecha_propuesta DESC
		LIMIT 1
	`, proposerID, receiverID, productID))
}

// ListExchangesForUser возвращает обмены, где пользователь является участником
func (s *Store) ListExchangesForUser(ctx context.Context, userID int64, f ExchangeFilter) ([]models.Exchange, error) {
	var where string
	switch f.Role {
	case RoleSent:
		where = "usuario_propone_id = $1"
	case RoleReceived:
		where = "usuario_recibe_id = $1"
	default:
		where = "(usuario_propone_id = $1 OR usuario_recibe_id = $1)"
	}

	args := []any{userID}
	if f.Status != "" {
		where += " AND estado = $2"
		args = append(args, f.Status)
	}

	rows, err := s.q.Query(ctx, `
		SELECT `+exchangeColumns+`
		FROM intercambio
		WHERE `+where+`
		ORDER BY fecha_actualizacion DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса обменов: %w", err)
	}
	defer rows.Close()

	exchanges := []models.Exchange{}
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, *e)
	}
	return exchanges, rows.Err()
}

// UpdateExchange сохраняет изменяемые поля обмена
func (s *Store) UpdateExchange(ctx context.Context, e *models.Exchange) error {
	err := s.q.QueryRow(ctx, `
		UPDATE intercambio
		SET estado = $2, lugar_encuentro = $3, fecha_encuentro = $4, motivo_rechazo = $5,
		    fecha_respuesta = $6, fecha_completado = $7, fecha_actualizacion = NOW()
		WHERE intercambio_id = $1
		RETURNING fecha_actualizacion
	`, e.ID, e.Status, e.MeetingPlace, e.MeetingDate, e.RejectionReason, e.RespondedAt, e.CompletedAt,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

// UpsertValidation сохраняет оценку встречи; повторная отправка перезаписывает её
func (s *Store) UpsertValidation(ctx context.Context, v *models.ExchangeValidation) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO validacion_intercambio (intercambio_id, usuario_id, es_exitoso, calificacion, comentario, aspectos_destacados, fecha_validacion)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (intercambio_id, usuario_id) DO UPDATE
		SET es_exitoso = EXCLUDED.es_exitoso,
		    calificacion = EXCLUDED.calificacion,
		    comentario = EXCLUDED.comentario,
		    aspectos_destacados = EXCLUDED.aspectos_destacados,
		    fecha_validacion = EXCLUDED.fecha_validacion
		RETURNING validacion_id, fecha_validacion
	`, v.ExchangeID, v.UserID, v.Successful, v.Rating, v.Comment, v.Aspects,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения валидации: %w", err)
	}
	return nil
}

// ListValidations возвращает все валидации обмена
func (s *Store) ListValidations(ctx context.Context, exchangeID int64) ([]models.ExchangeValidation, error) {
	rows, err := s.q.Query(ctx, `
		SELECT validacion_id, intercambio_id, usuario_id, es_exitoso, calificacion, comentario,
		       aspectos_destacados, fecha_validacion
		FROM validacion_intercambio
		WHERE intercambio_id = $1
		ORDER BY fecha_validacion ASC
	`, exchangeID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса валидаций: %w", err)
	}
	defer rows.Close()

	validations := []models.ExchangeValidation{}
	for rows.Next() {
		var v models.ExchangeValidation
		if err := rows.Scan(&v.ID, &v.ExchangeID, &v.UserID, &v.Successful, &v.Rating, &v.Comment,
			&v.Aspects, &v.CreatedAt); err != nil {
			return nil, err
		}
		validations = append(validations, v)
	}
	return validations, rows.Err()
}

// GetRating ищет оценку, которую пользователь оставил по обмену
func (s *Store) GetRating(ctx context.Context, exchangeID, raterID int64) (*models.Rating, error) {
	var r models.Rating
	err := s.q.QueryRow(ctx, `
		SELECT calificacion_id, intercambio_id, calificador_id, calificado_id, puntuacion, comentario,
		       aspectos_destacados, recomendaria, es_publica, fecha_calificacion
		FROM calificacion
		WHERE intercambio_id = $1 AND calificador_id = $2
	`, exchangeID, raterID).Scan(&r.ID, &r.ExchangeID, &r.RaterID, &r.RateeID, &r.Score, &r.Comment,
		&r.Aspects, &r.Recommends, &r.Public, &r.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// InsertRating сохраняет оценку; уникальный ключ (intercambio_id, calificador_id)
func (s *Store) InsertRating(ctx context.Context, r *models.Rating) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO calificacion (intercambio_id, calificador_id, calificado_id, puntuacion, comentario,
		                          aspectos_destacados, recomendaria, es_publica, fecha_calificacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING calificacion_id, fecha_calificacion
	`, r.ExchangeID, r.RaterID, r.RateeID, r.Score, r.Comment, r.Aspects, r.Recommends, r.Public,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("ошибка сохранения оценки: %w", err)
	}
	return nil
}

// ListRatingScores возвращает все оценки, полученные пользователем
func (s *Store) ListRatingScores(ctx context.Context, rateeID int64) ([]int, error) {
	rows, err := s.q.Query(ctx, `SELECT puntuacion FROM calificacion WHERE calificado_id = $1`, rateeID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса оценок: %w", err)
	}
	defer rows.Close()

	scores := []int{}
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

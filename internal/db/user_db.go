package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

var _ Repository = (*Store)(nil)

const userColumns = `
	user_id, auth_user_id, email, nombre, COALESCE(apellido, ''), COALESCE(foto_perfil, ''),
	es_admin, activo, verificado, COALESCE(calificacion_promedio, 0), total_intercambios,
	eco_puntos, fecha_registro`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.AuthID, &u.Email, &u.FirstName, &u.LastName, &u.AvatarURL,
		&u.IsAdmin, &u.Active, &u.Verified, &u.AverageRating, &u.TotalExchanges,
		&u.EcoPoints, &u.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUser получает пользователя по ID
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM usuario WHERE user_id = $1`, id))
}

// LockUser получает пользователя и блокирует строку до конца транзакции
func (s *Store) LockUser(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx, `
		SELECT `+userColumns+` FROM usuario WHERE user_id = $1 FOR UPDATE
	`, id))
}

// GetUserByAuth ищет пользователя по ID провайдера аутентификации или по email
func (s *Store) GetUserByAuth(ctx context.Context, authID uuid.UUID, email string) (*models.User, error) {
	return scanUser(s.q.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM usuario
		WHERE auth_user_id = $1 OR ($2 <> '' AND lower(email) = lower($2))
		ORDER BY (auth_user_id = $1) DESC NULLS LAST
		LIMIT 1
	`, authID, email))
}

// ListActiveRoleNames возвращает названия активных ролей пользователя
func (s *Store) ListActiveRoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.q.Query(ctx, `
		SELECT r.nombre
		FROM usuario_rol ur
		JOIN rol r ON r.rol_id = ur.rol_id
		WHERE ur.usuario_id = $1 AND ur.activo = true AND r.activo = true
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ролей: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// IncrementExchangeStats атомарно увеличивает счетчики завершенных обменов
func (s *Store) IncrementExchangeStats(ctx context.Context, userID int64, ecoPoints int) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE usuario
		SET total_intercambios = total_intercambios + 1,
		    eco_puntos = eco_puntos + $2
		WHERE user_id = $1
	`, userID, ecoPoints)
	if err != nil {
		return fmt.Errorf("ошибка обновления статистики пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserRating сохраняет пересчитанный средний рейтинг
func (s *Store) SetUserRating(ctx context.Context, userID int64, average float64) error {
	_, err := s.q.Exec(ctx, `UPDATE usuario SET calificacion_promedio = $2 WHERE user_id = $1`, userID, average)
	return err
}

// SetUserVerified отмечает личность пользователя как проверенную
func (s *Store) SetUserVerified(ctx context.Context, userID int64, verified bool) error {
	tag, err := s.q.Exec(ctx, `UPDATE usuario SET verificado = $2 WHERE user_id = $1`, userID, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserActive активирует или деактивирует пользователя
func (s *Store) SetUserActive(ctx context.Context, userID int64, active bool) error {
	tag, err := s.q.Exec(ctx, `UPDATE usuario SET activo = $2 WHERE user_id = $1`, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBadgeByName ищет активную insignia по названию
func (s *Store) GetBadgeByName(ctx context.Context, name string) (*models.Badge, error) {
	var b models.Badge
	err := s.q.QueryRow(ctx, `
		SELECT insignia_id, nombre, COALESCE(descripcion, ''), COALESCE(icono, '')
		FROM insignia
		WHERE nombre = $1 AND activa = true
	`, name).Scan(&b.ID, &b.Name, &b.Description, &b.Icon)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// GrantBadge выдает insignia; повторная выдача ничего не меняет
func (s *Store) GrantBadge(ctx context.Context, userID, badgeID int64) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		INSERT INTO usuario_insignia (usuario_id, insignia_id, fecha_obtencion)
		VALUES ($1, $2, NOW())
		ON CONFLICT (usuario_id, insignia_id) DO NOTHING
	`, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи insignia: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListUserBadges возвращает insignias пользователя
func (s *Store) ListUserBadges(ctx context.Context, userID int64) ([]models.Badge, error) {
	rows, err := s.q.Query(ctx, `
		SELECT i.insignia_id, i.nombre, COALESCE(i.descripcion, ''), COALESCE(i.icono, ''), ui.fecha_obtencion
		FROM usuario_insignia ui
		JOIN insignia i ON i.insignia_id = ui.insignia_id
		WHERE ui.usuario_id = $1
		ORDER BY ui.fecha_obtencion ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса insignias: %w", err)
	}
	defer rows.Close()

	badges := []models.Badge{}
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.EarnedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

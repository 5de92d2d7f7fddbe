package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

const productColumns = `
	producto_id, user_id, titulo, COALESCE(descripcion, ''), COALESCE(categoria, ''), estado,
	tipo_transaccion, estado_publicacion, COALESCE(imagenes, '{}'), total_likes,
	fecha_publicacion, fecha_actualizacion`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category, &p.Condition,
		&p.TransactionType, &p.Publication, &p.Images, &p.TotalLikes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// CreateProduct сохраняет новый товар
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO producto (user_id, titulo, descripcion, categoria, estado, tipo_transaccion, estado_publicacion, imagenes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING producto_id, total_likes, fecha_publicacion, fecha_actualizacion
	`, p.OwnerID, p.Title, p.Description, p.Category, p.Condition, p.TransactionType, p.Publication, p.Images,
	).Scan(&p.ID, &p.TotalLikes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения товара: %w", err)
	}
	return nil
}

// GetProduct получает товар по ID
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return scanProduct(s.q.QueryRow(ctx, `SELECT `+productColumns+` FROM producto WHERE producto_id = $1`, id))
}

// ListProducts возвращает товары по фильтру
func (s *Store) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.OwnerID != 0 {
		add("user_id = $%d", f.OwnerID)
	}
	if f.Category != "" {
		add("categoria = $%d", f.Category)
	}
	if f.TransactionType != "" {
		add("tipo_transaccion = $%d", f.TransactionType)
	}
	if f.Publication != "" {
		add("estado_publicacion = $%d", f.Publication)
	}

	query := `SELECT ` + productColumns + ` FROM producto`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY fecha_publicacion DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса товаров: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// SetProductsPublication меняет состояние публикации сразу нескольких товаров
func (s *Store) SetProductsPublication(ctx context.Context, ids []int64, publication string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.q.Exec(ctx, `
		UPDATE producto
		SET estado_publicacion = $2, fecha_actualizacion = NOW()
		WHERE producto_id = ANY($1)
	`, ids, publication)
	if err != nil {
		return fmt.Errorf("ошибка обновления публикации товаров: %w", err)
	}
	return nil
}

// AddFavorite добавляет товар в избранное и увеличивает счетчик лайков
func (s *Store) AddFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	var added bool
	err := s.RunInTx(ctx, func(repo Repository) error {
		tx := repo.(*Store)
		tag, err := tx.q.Exec(ctx, `
			INSERT INTO producto_favorito (usuario_id, producto_id, fecha_creacion)
			VALUES ($1, $2, NOW())
			ON CONFLICT (usuario_id, producto_id) DO NOTHING
		`, userID, productID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		added = true
		_, err = tx.q.Exec(ctx, `UPDATE producto SET total_likes = total_likes + 1 WHERE producto_id = $1`, productID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ошибка добавления в избранное: %w", err)
	}
	return added, nil
}

// RemoveFavorite удаляет товар из избранного и уменьшает счетчик лайков
func (s *Store) RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	var removed bool
	err := s.RunInTx(ctx, func(repo Repository) error {
		tx := repo.(*Store)
		tag, err := tx.q.Exec(ctx, `
			DELETE FROM producto_favorito WHERE usuario_id = $1 AND producto_id = $2
		`, userID, productID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		removed = true
		_, err = tx.q.Exec(ctx, `
			UPDATE producto SET total_likes = GREATEST(total_likes - 1, 0) WHERE producto_id = $1
		`, productID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("ошибка удаления из избранного: %w", err)
	}
	return removed, nil
}

// ListFavoriteProducts возвращает избранные товары пользователя
func (s *Store) ListFavoriteProducts(ctx context.Context, userID int64) ([]models.Product, error) {
	rows, err := s.q.Query(ctx, `
		SELECT p.producto_id, p.user_id, p.titulo, COALESCE(p.descripcion, ''), COALESCE(p.categoria, ''),
		       p.estado, p.tipo_transaccion, p.estado_publicacion, COALESCE(p.imagenes, '{}'), p.total_likes,
		       p.fecha_publicacion, p.fecha_actualizacion
		FROM producto_favorito f
		JOIN producto p ON p.producto_id = f.producto_id
		WHERE f.usuario_id = $1
		ORDER BY f.fecha_creacion DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса избранного: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

package db

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

const chatColumns = `
	c.chat_id, c.intercambio_id, c.ultimo_mensaje, c.activo, c.fecha_creacion,
	i.usuario_propone_id, i.usuario_recibe_id, i.estado`

func scanChat(row interface{ Scan(dest ...any) error }) (*models.Chat, error) {
	var c models.Chat
	err := row.Scan(
		&c.ID, &c.ExchangeID, &c.LastMessageAt, &c.Active, &c.CreatedAt,
		&c.ProposerID, &c.ReceiverID, &c.ExchangeStatus,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// CreateChat создает чат для обмена
func (s *Store) CreateChat(ctx context.Context, c *models.Chat) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO chat (intercambio_id, activo, fecha_creacion)
		VALUES ($1, true, NOW())
		RETURNING chat_id, activo, fecha_creacion
	`, c.ExchangeID).Scan(&c.ID, &c.Active, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("ошибка создания чата: %w", err)
	}
	return nil
}

// GetChat получает чат вместе с участниками обмена
func (s *Store) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	return scanChat(s.q.QueryRow(ctx, `
		SELECT `+chatColumns+`
		FROM chat c
		JOIN intercambio i ON i.intercambio_id = c.intercambio_id
		WHERE c.chat_id = $1
	`, id))
}

// GetChatByExchange получает чат обмена
func (s *Store) GetChatByExchange(ctx context.Context, exchangeID int64) (*models.Chat, error) {
	return scanChat(s.q.QueryRow(ctx, `
		SELECT `+chatColumns+`
		FROM chat c
		JOIN intercambio i ON i.intercambio_id = c.intercambio_id
		WHERE c.intercambio_id = $1
	`, exchangeID))
}

// ListChatsForUser возвращает чаты пользователя с количеством непрочитанных сообщений
func (s *Store) ListChatsForUser(ctx context.Context, userID int64) ([]models.Chat, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+chatColumns+`,
		       (SELECT COUNT(*) FROM mensaje m
		        WHERE m.chat_id = c.chat_id AND m.usuario_id <> $1 AND m.leido = false) AS no_leidos
		FROM chat c
		JOIN intercambio i ON i.intercambio_id = c.intercambio_id
		WHERE i.usuario_propone_id = $1 OR i.usuario_recibe_id = $1
		ORDER BY COALESCE(c.ultimo_mensaje, c.fecha_creacion) DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса чатов: %w", err)
	}
	defer rows.Close()

	chats := []models.Chat{}
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(
			&c.ID, &c.ExchangeID, &c.LastMessageAt, &c.Active, &c.CreatedAt,
			&c.ProposerID, &c.ReceiverID, &c.ExchangeStatus, &c.UnreadCount,
		); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// InsertMessage сохраняет сообщение и обновляет время последнего сообщения в чате
func (s *Store) InsertMessage(ctx context.Context, m *models.Message) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO mensaje (chat_id, usuario_id, contenido, tipo, leido, es_admin, fecha_envio)
		VALUES ($1, $2, $3, $4, false, $5, NOW())
		RETURNING mensaje_id, fecha_envio
	`, m.ChatID, m.SenderID, m.Content, m.Type, m.IsAdmin).Scan(&m.ID, &m.SentAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}

	if _, err := s.q.Exec(ctx, `UPDATE chat SET ultimo_mensaje = $2 WHERE chat_id = $1`, m.ChatID, m.SentAt); err != nil {
		return fmt.Errorf("ошибка обновления чата: %w", err)
	}
	return nil
}

// ListMessages возвращает сообщения чата; beforeID > 0 включает пагинацию назад
func (s *Store) ListMessages(ctx context.Context, chatID, beforeID int64, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT mensaje_id, chat_id, usuario_id, contenido, tipo, leido, es_admin, fecha_envio
		FROM mensaje
		WHERE chat_id = $1`
	args := []any{chatID}
	if beforeID > 0 {
		query += ` AND mensaje_id < $3`
		args = append(args, limit, beforeID)
	} else {
		args = append(args, limit)
	}
	query += ` ORDER BY mensaje_id DESC LIMIT $2`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса сообщений: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Type, &m.Read, &m.IsAdmin, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Возвращаем в хронологическом порядке
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkMessagesRead отмечает прочитанными сообщения собеседника
func (s *Store) MarkMessagesRead(ctx context.Context, chatID, readerID int64) error {
	_, err := s.q.Exec(ctx, `
		UPDATE mensaje SET leido = true
		WHERE chat_id = $1 AND usuario_id <> $2 AND leido = false
	`, chatID, readerID)
	return err
}

const proposalColumns = `
	propuesta_id, chat_id, propuesta_por_id, propuesta_para_id, tipo_propuesta, COALESCE(descripcion, ''),
	precio_propuesto::text, condiciones, estado, respuesta, fecha_encuentro, lugar_encuentro,
	propuesta_padre_id, fecha_creacion, fecha_respuesta`

func scanProposal(row interface{ Scan(dest ...any) error }) (*models.Proposal, error) {
	var p models.Proposal
	var price *string
	err := row.Scan(
		&p.ID, &p.ChatID, &p.ProposerID, &p.AddresseeID, &p.Type, &p.Description,
		&price, &p.Conditions, &p.Status, &p.Response, &p.MeetingDate, &p.MeetingPlace,
		&p.ParentID, &p.CreatedAt, &p.RespondedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, fmt.Errorf("некорректная цена предложения %d: %w", p.ID, err)
		}
		p.Price = &d
	}
	return &p, nil
}

func priceArg(p *decimal.Decimal) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}

// CreateProposal сохраняет предложение в чате
func (s *Store) CreateProposal(ctx context.Context, p *models.Proposal) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO propuesta (chat_id, propuesta_por_id, propuesta_para_id, tipo_propuesta, descripcion,
		                       precio_propuesto, condiciones, estado, fecha_encuentro, lugar_encuentro,
		                       propuesta_padre_id, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11, NOW())
		RETURNING propuesta_id, fecha_creacion
	`, p.ChatID, p.ProposerID, p.AddresseeID, p.Type, p.Description,
		priceArg(p.Price), p.Conditions, p.Status, p.MeetingDate, p.MeetingPlace,
		p.ParentID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания предложения: %w", err)
	}
	return nil
}

// GetProposal получает предложение по ID
func (s *Store) GetProposal(ctx context.Context, id int64) (*models.Proposal, error) {
	return scanProposal(s.q.QueryRow(ctx, `SELECT `+proposalColumns+` FROM propuesta WHERE propuesta_id = $1`, id))
}

// LockProposal получает предложение с блокировкой строки
func (s *Store) LockProposal(ctx context.Context, id int64) (*models.Proposal, error) {
	return scanProposal(s.q.QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM propuesta WHERE propuesta_id = $1 FOR UPDATE
	`, id))
}

// UpdateProposal сохраняет статус и ответ по предложению
func (s *Store) UpdateProposal(ctx context.Context, p *models.Proposal) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE propuesta
		SET estado = $2, respuesta = $3, fecha_respuesta = $4, fecha_encuentro = $5, lugar_encuentro = $6
		WHERE propuesta_id = $1
	`, p.ID, p.Status, p.Response, p.RespondedAt, p.MeetingDate, p.MeetingPlace)
	if err != nil {
		return fmt.Errorf("ошибка обновления предложения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProposals возвращает предложения чата, при необходимости по статусу
func (s *Store) ListProposals(ctx context.Context, chatID int64, status string) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM propuesta WHERE chat_id = $1`
	args := []any{chatID}
	if status != "" {
		query += ` AND estado = $2`
		args = append(args, status)
	}
	query += ` ORDER BY fecha_creacion DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предложений: %w", err)
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rajivgeraev/ecoswap-api/internal/models"
)

var (
	// ErrNotFound возвращается, когда запись отсутствует
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicate возвращается при нарушении уникального ключа
	ErrDuplicate = errors.New("запись уже существует")
)

// ExchangeFilter - фильтры списка обменов пользователя
type ExchangeFilter struct {
	Status string
	// Role: "enviados" - я предложил, "recibidos" - мне предложили, пусто - все
	Role string
}

// Роли в фильтре обменов
const (
	RoleSent     = "enviados"
	RoleReceived = "recibidos"
)

// UserRepository - пользователи, роли и insignias
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// LockUser читает пользователя с блокировкой строки до конца транзакции
	LockUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByAuth(ctx context.Context, authID uuid.UUID, email string) (*models.User, error)
	ListActiveRoleNames(ctx context.Context, userID int64) ([]string, error)
	IncrementExchangeStats(ctx context.Context, userID int64, ecoPoints int) error
	SetUserRating(ctx context.Context, userID int64, average float64) error
	SetUserVerified(ctx context.Context, userID int64, verified bool) error
	SetUserActive(ctx context.Context, userID int64, active bool) error

	GetBadgeByName(ctx context.Context, name string) (*models.Badge, error)
	GrantBadge(ctx context.Context, userID, badgeID int64) (bool, error)
	ListUserBadges(ctx context.Context, userID int64) ([]models.Badge, error)
}

// ProductRepository - товары и избранное
type ProductRepository interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	SetProductsPublication(ctx context.Context, ids []int64, publication string) error
	AddFavorite(ctx context.Context, userID, productID int64) (bool, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) (bool, error)
	ListFavoriteProducts(ctx context.Context, userID int64) ([]models.Product, error)
}

// ExchangeRepository - обмены, валидации встреч и оценки
type ExchangeRepository interface {
	CreateExchange(ctx context.Context, e *models.Exchange) error
	GetExchange(ctx context.Context, id int64) (*models.Exchange, error)
	// LockExchange читает обмен с блокировкой строки до конца транзакции
	LockExchange(ctx context.Context, id int64) (*models.Exchange, error)
	FindOpenExchange(ctx context.Context, proposerID, receiverID, productID int64) (*models.Exchange, error)
	ListExchangesForUser(ctx context.Context, userID int64, f ExchangeFilter) ([]models.Exchange, error)
	UpdateExchange(ctx context.Context, e *models.Exchange) error

	UpsertValidation(ctx context.Context, v *models.ExchangeValidation) error
	ListValidations(ctx context.Context, exchangeID int64) ([]models.ExchangeValidation, error)

	GetRating(ctx context.Context, exchangeID, raterID int64) (*models.Rating, error)
	InsertRating(ctx context.Context, r *models.Rating) error
	ListRatingScores(ctx context.Context, rateeID int64) ([]int, error)
}

// ChatRepository - чаты, сообщения и предложения
type ChatRepository interface {
	CreateChat(ctx context.Context, c *models.Chat) error
	GetChat(ctx context.Context, id int64) (*models.Chat, error)
	GetChatByExchange(ctx context.Context, exchangeID int64) (*models.Chat, error)
	ListChatsForUser(ctx context.Context, userID int64) ([]models.Chat, error)
	InsertMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, chatID, beforeID int64, limit int) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, chatID, readerID int64) error

	CreateProposal(ctx context.Context, p *models.Proposal) error
	GetProposal(ctx context.Context, id int64) (*models.Proposal, error)
	LockProposal(ctx context.Context, id int64) (*models.Proposal, error)
	UpdateProposal(ctx context.Context, p *models.Proposal) error
	ListProposals(ctx context.Context, chatID int64, status string) ([]models.Proposal, error)
}

// NotificationRepository - записи уведомлений
type NotificationRepository interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error)
}

// ReportRepository - жалобы и модерация
type ReportRepository interface {
	CreateReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id int64) (*models.Report, error)
	ListReports(ctx context.Context, status string) ([]models.Report, error)
	UpdateReport(ctx context.Context, r *models.Report) error
	CountResolvedReportsAgainst(ctx context.Context, userID int64) (int, error)
}

// Repository - полный доступ к хранилищу
type Repository interface {
	UserRepository
	ProductRepository
	ExchangeRepository
	ChatRepository
	NotificationRepository
	ReportRepository

	// RunInTx выполняет fn в одной транзакции; fn получает репозиторий, привязанный к ней
	RunInTx(ctx context.Context, fn func(repo Repository) error) error
}

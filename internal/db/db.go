package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/ecoswap-api/internal/config"
)

// Код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

// querier - общий интерфейс пула и транзакции
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store реализует Repository поверх пула соединений pgx
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

// NewStore создает хранилище поверх уже открытого пула
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

// Connect создает пул соединений с базой данных
func Connect(cfg *config.Config) (*pgxpool.Pool, error) {
	log.Printf("Подключение к базе данных %s:%s/%s", cfg.DatabaseConfig.Host, cfg.DatabaseConfig.Port, cfg.DatabaseConfig.Name)

	// Создаем контекст с таймаутом для подключения
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Настраиваем конфигурацию пула соединений
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при разборе URL базы данных: %w", err)
	}

	if cfg.DatabaseConfig.MaxConns > 0 {
		poolConfig.MaxConns = cfg.DatabaseConfig.MaxConns
	}
	if cfg.DatabaseConfig.MinConns > 0 {
		poolConfig.MinConns = cfg.DatabaseConfig.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений: %w", err)
	}

	// Проверяем соединение
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения: %w", err)
	}

	log.Println("✅ Успешное подключение к базе данных")
	return pool, nil
}

// RunInTx выполняет fn в транзакции; вложенные вызовы используют текущую транзакцию
func (s *Store) RunInTx(ctx context.Context, fn func(repo Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{pool: s.pool, q: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Таймаут запросов по умолчанию, задается из конфигурации при старте
var defaultTimeout = 5 * time.Second

// SetDefaultTimeout меняет таймаут, который использует GetContext(0)
func SetDefaultTimeout(timeout time.Duration) {
	if timeout > 0 {
		defaultTimeout = timeout
	}
}

// GetContext возвращает контекст с таймаутом для запросов к базе данных
func GetContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// notFound переводит pgx.ErrNoRows в ErrNotFound
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation проверяет нарушение уникального индекса
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

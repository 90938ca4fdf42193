// Package storage читает последнюю синхронизированную запись о подписке из
// PostgreSQL. Записи пишет только серверная логика платежей; сервис их
// только читает, когда удалённая проверка недоступна.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// ErrRecordNotFound - у пользователя нет записи о подписке.
var ErrRecordNotFound = errors.New("subscription record not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает соединение и проверяет его.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// CheckDatabaseReady проверяет наличие таблицы записей.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'user_subscriptions'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return errors.New("storage.CheckDatabaseReady: table user_subscriptions missing")
	}
	return nil
}

// SubscriptionRecord возвращает запись пользователя или ErrRecordNotFound.
func (s *Storage) SubscriptionRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	const op = "storage.SubscriptionRecord"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT plan_id, status, start_date, end_date, auto_renew,
				external_subscription_id, external_customer_id,
				payment_method_type, payment_method_last4, last_transaction_id
			  FROM user_subscriptions WHERE user_uid = $1`

	var (
		rec               models.SubscriptionRecord
		status            string
		extSubID          sql.NullString
		extCustomerID     sql.NullString
		methodType        sql.NullString
		methodLast4       sql.NullString
		lastTransactionID sql.NullString
	)
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&rec.PlanID, &status, &rec.StartDate, &rec.EndDate, &rec.AutoRenew,
		&extSubID, &extCustomerID, &methodType, &methodLast4, &lastTransactionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec.Status = models.SubscriptionStatus(status)
	rec.StartDate = rec.StartDate.UTC()
	rec.EndDate = rec.EndDate.UTC()
	rec.ExternalSubscriptionID = extSubID.String
	rec.ExternalCustomerID = extCustomerID.String
	rec.PaymentMethod = models.PaymentMethodSummary{Type: methodType.String, Last4: methodLast4.String}
	rec.LastTransactionID = lastTransactionID.String
	return &rec, nil
}

// Close закрывает соединение.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Package txmanager управление транзакциями для инструментированной БД.
// Executor транзакции передается репозиториям через контекст
// (см. dbmetrics.WithExecutor / dbmetrics.GetExecutor).
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/avenirbook/scheduling-engine/pkg/dbmetrics"
)

// maxSerializableRetries максимальное число повторов сериализуемой транзакции.
// Повторяем только ошибки сериализации/deadlock — unit of work идемпотентен
// при откате, частичных записей не остается.
const maxSerializableRetries = 3

var (
	// ErrBeginTx возвращается при ошибке начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx возвращается при ошибке фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrRetriesExhausted возвращается, когда исчерпаны повторы сериализуемой транзакции
	ErrRetriesExhausted = errors.New("txmanager: serializable transaction retries exhausted")
)

// TxBeginner интерфейс для начала транзакций.
// Реализуется *dbmetrics.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// RetryObserver колбек для учёта повторов (опционально, для метрик)
type RetryObserver func()

// TransactionManager менеджер транзакций
type TransactionManager struct {
	db      TxBeginner
	onRetry RetryObserver
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithRetryObserver устанавливает колбек, вызываемый при каждом повторе
func (m *TransactionManager) WithRetryObserver(fn RetryObserver) *TransactionManager {
	m.onRetry = fn
	return m
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

// DoSerializable выполняет fn в сериализуемой транзакции.
// Ошибки сериализации (SQLSTATE 40001) и deadlock (40P01) повторяются
// ограниченное число раз; остальные ошибки возвращаются сразу.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var lastErr error
	for attempt := 0; attempt <= maxSerializableRetries; attempt++ {
		if attempt > 0 && m.onRetry != nil {
			m.onRetry()
		}

		lastErr = m.run(ctx, opts, fn)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	txCtx := dbmetrics.WithExecutor(ctx, tx)

	if err := fn(txCtx); err != nil {
		// Ошибка rollback не важнее ошибки бизнес-логики
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrCommitTx, err)
	}

	return nil
}

// IsRetryable возвращает true для ошибок, при которых сериализуемую
// транзакцию безопасно повторить целиком
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// 40001 serialization_failure, 40P01 deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

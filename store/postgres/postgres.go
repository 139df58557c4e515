// Package postgres implements TagdropStore over PostgreSQL using the pgx
// stdlib driver. Schema is managed by embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/connect360/tagdrop/migrations"
	"github.com/connect360/tagdrop/models"
	"github.com/connect360/tagdrop/store"
)

type PostgresTagdropStore struct {
	db *sql.DB
}

func NewPostgresTagdropStore(ctx context.Context, dsn string) (*PostgresTagdropStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresTagdropStore{db: db}, nil
}

func (s *PostgresTagdropStore) Close() error {
	return s.db.Close()
}

const (
	tokenDailyLimit      = 250
	tokenCooldownSeconds = 5
	messageTTLDays       = 7
)

// InsertDropMessage enforces the daily cap and cooldown inside the insert
// statement itself. Under read committed the subquery guards only see
// committed rows, so writers for the same hash are serialized with a
// transaction-scoped advisory lock; without it two truly concurrent
// submissions could both pass the cooldown.
func (s *PostgresTagdropStore) InsertDropMessage(ctx context.Context, tokenHash string, sanitizedContent string) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate message id: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, tokenHash); err != nil {
		return false, fmt.Errorf("lock token hash: %w", err)
	}

	query := `
		INSERT INTO drop_messages (id, drop_token_hash, content, created_at, expires_at)
		SELECT $1, $2, $3, NOW(), NOW() + make_interval(days => $4)
		WHERE
			(
				SELECT COUNT(*)::INT
				FROM drop_messages
				WHERE drop_token_hash = $2
				  AND created_at >= NOW() - INTERVAL '1 day'
			) < $5
			AND COALESCE(
				(
					SELECT EXTRACT(EPOCH FROM (NOW() - MAX(created_at)))
					FROM drop_messages
					WHERE drop_token_hash = $2
				),
				999999
			) >= $6
	`
	res, err := tx.ExecContext(ctx, query,
		id.String(), tokenHash, sanitizedContent, messageTTLDays, tokenDailyLimit, tokenCooldownSeconds)
	if err != nil {
		return false, fmt.Errorf("insert drop message: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit insert: %w", err)
	}

	switch n {
	case 1:
		return true, nil
	case 0:
		// Cap or cooldown rejected the row. Not an error; the caller's
		// response must look the same as a rate-limited one.
		return false, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (s *PostgresTagdropStore) FetchActiveDropMessages(ctx context.Context, tokenHash string, limit int) ([]models.DropMessage, error) {
	query := `
		SELECT id, content, created_at, expires_at
		FROM drop_messages
		WHERE drop_token_hash = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, tokenHash, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch drop messages: %w", err)
	}
	defer rows.Close()

	messages := []models.DropMessage{}
	for rows.Next() {
		var m models.DropMessage
		if err := rows.Scan(&m.Id, &m.Content, &m.CreatedAt, &m.ExpiresAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *PostgresTagdropStore) PurgeExpiredDropMessages(ctx context.Context, batchSize int) (int, error) {
	query := `
		DELETE FROM drop_messages
		WHERE id IN (
			SELECT id
			FROM drop_messages
			WHERE expires_at < NOW()
			ORDER BY expires_at ASC
			LIMIT $1
		)
	`
	res, err := s.db.ExecContext(ctx, query, batchSize)
	if err != nil {
		return 0, fmt.Errorf("purge expired drop messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *PostgresTagdropStore) GetTagByCode(ctx context.Context, code string) (models.Tag, error) {
	query := `
		SELECT id, code, domain_type, status, allow_masked_call, allow_whatsapp, allow_sms
		FROM tags
		WHERE code = $1
	`
	var t models.Tag
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&t.Id, &t.Code, &t.DomainType, &t.Status, &t.AllowMaskedCall, &t.AllowWhatsapp, &t.AllowSms)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, store.ErrItemNotFound
	}
	if err != nil {
		return models.Tag{}, fmt.Errorf("get tag by code: %w", err)
	}
	return t, nil
}

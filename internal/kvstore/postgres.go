package kvstore

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres — хранилище поверх таблицы image_cache.
// Схема создается миграциями (см. migrations/).
type Postgres struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPostgres создает хранилище поверх пула подключений.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := p.sb.
		Select("payload").
		From("image_cache").
		Where(sq.Eq{"uri": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select: %w", err)
	}

	var payload string
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select image_cache: %w", err)
	}
	return payload, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	// Значение детерминировано содержимым URI, поэтому при конфликте
	// запись просто не трогаем.
	query, args, err := p.sb.
		Insert("image_cache").
		Columns("uri", "payload").
		Values(key, value).
		Suffix("ON CONFLICT (uri) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert image_cache: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type requiredColumn struct {
	table  string
	column string
}

var requiredColumns = []requiredColumn{
	{table: "users", column: "password_hash"},
	{table: "chats", column: "user_id"},
	{table: "messages", column: "seq"},
	{table: "messages", column: "content_en"},
	{table: "chat_summaries", column: "dominant_emotion"},
}

// ValidateRuntimeSchema fails fast when the connected database lacks the
// tables this binary writes to.
func ValidateRuntimeSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("database pool is nil")
	}

	for _, item := range requiredColumns {
		ok, err := columnExists(ctx, pool, item.table, item.column)
		if err != nil {
			return fmt.Errorf("failed checking schema for %s.%s: %w", item.table, item.column, err)
		}
		if !ok {
			return fmt.Errorf(
				"required column %s.%s is missing; run migrations (cmd/migrate up)",
				item.table,
				item.column,
			)
		}
	}
	return nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

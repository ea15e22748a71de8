package classifier

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
)

// LoadFile reads a model artifact from disk.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// RowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const latestArtifactSQL = `
SELECT artifact
FROM model_artifacts
WHERE name = $1
ORDER BY version DESC
LIMIT 1`

// LoadPostgres reads the latest version of the named artifact from the
// model_artifacts table.
func LoadPostgres(ctx context.Context, db RowQuerier, name string) (*Model, error) {
	var data []byte
	if err := db.QueryRow(ctx, latestArtifactSQL, name).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("model artifact %q not found", name)
		}
		return nil, fmt.Errorf("query model artifact %q: %w", name, err)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %q from postgres: %w", name, err)
	}
	return m, nil
}

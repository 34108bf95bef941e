package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

// maxErrorMessage bounds what MarkError stores; pipeline errors can carry
// whole row dumps.
const maxErrorMessage = 1000

const registryColumns = `file_id, filename, storage_key, entity_type, status, size_bytes, row_count, col_count, delimiter_guess, encoding_guess, batch_id, error_message, registered_at, profiled_at, processed_at, updated_at`

type RegistryRepository struct {
	db *sql.DB
}

func NewRegistryRepository(db *sql.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// Register upserts by storage key, so re-registering the same stored object
// resets its row to the fresh upload instead of failing on the unique index.
func (r *RegistryRepository) Register(ctx context.Context, file *domain.SourceFile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO source_file_registry (`+registryColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (storage_key) DO UPDATE SET
	filename = EXCLUDED.filename,
	entity_type = EXCLUDED.entity_type,
	status = EXCLUDED.status,
	size_bytes = EXCLUDED.size_bytes,
	row_count = EXCLUDED.row_count,
	col_count = EXCLUDED.col_count,
	delimiter_guess = EXCLUDED.delimiter_guess,
	encoding_guess = EXCLUDED.encoding_guess,
	batch_id = EXCLUDED.batch_id,
	error_message = EXCLUDED.error_message,
	registered_at = EXCLUDED.registered_at,
	profiled_at = EXCLUDED.profiled_at,
	processed_at = EXCLUDED.processed_at,
	updated_at = EXCLUDED.updated_at
`,
		file.FileID, file.Filename, file.StorageKey, string(file.EntityType), string(file.Status),
		file.SizeBytes, file.RowCount, file.ColCount, file.DelimiterGuess, file.EncodingGuess,
		file.BatchID, file.ErrorMessage, file.RegisteredAt, file.ProfiledAt, file.ProcessedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert source file: %w", err)
	}
	return nil
}

func (r *RegistryRepository) GetByID(ctx context.Context, id string) (*domain.SourceFile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+registryColumns+`
FROM source_file_registry
WHERE file_id = $1
`, id)

	file, err := scanSourceFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFileNotFound, "get source file", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan source file: %w", err)
	}
	return &file, nil
}

func (r *RegistryRepository) List(ctx context.Context, limit int) ([]domain.SourceFile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+registryColumns+`
FROM source_file_registry
ORDER BY registered_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list source files: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SourceFile, 0)
	for rows.Next() {
		file, err := scanSourceFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source file: %w", err)
		}
		out = append(out, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source files: %w", err)
	}
	return out, nil
}

func (r *RegistryRepository) MarkProfiled(ctx context.Context, id string, profile domain.FileProfile) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
UPDATE source_file_registry
SET status = $2, row_count = $3, col_count = $4, delimiter_guess = $5, encoding_guess = $6, profiled_at = $7, updated_at = $7
WHERE file_id = $1
`, id, string(domain.StatusProfiled), profile.RowCount, profile.ColCount, profile.DelimiterGuess, profile.EncodingGuess, now)
	if err != nil {
		return fmt.Errorf("mark profiled: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark profiled rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrFileNotFound, "mark profiled", fmt.Errorf("id %s", id))
	}
	return nil
}

// Claim moves a file into processing under a row lock so only one batch ever
// holds it. The status the file held before the claim comes back to the
// caller; Release needs it to undo a failed run.
func (r *RegistryRepository) Claim(ctx context.Context, id, batchID string) (domain.FileStatus, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status, heldBy string
	err = tx.QueryRowContext(ctx, `
SELECT status, batch_id
FROM source_file_registry
WHERE file_id = $1
FOR UPDATE
`, id).Scan(&status, &heldBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.WrapError(domain.ErrFileNotFound, "claim file", fmt.Errorf("id %s", id))
		}
		return "", fmt.Errorf("lock registry row: %w", err)
	}

	prior := domain.FileStatus(status)
	switch prior {
	case domain.StatusProfiled, domain.StatusProcessed:
	case domain.StatusProcessing:
		return "", domain.WrapError(domain.ErrConflict, "claim file", fmt.Errorf("file %s held by batch %s", id, heldBy))
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "claim file", fmt.Errorf("status %q cannot be claimed", status))
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE source_file_registry
SET status = $2, batch_id = $3, updated_at = $4
WHERE file_id = $1
`, id, string(domain.StatusProcessing), batchID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("mark processing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit claim tx: %w", err)
	}
	return prior, nil
}

// Release undoes a claim after a retryable failure. The batch id guard keeps
// a stale worker from unlocking a file a newer batch has since claimed.
func (r *RegistryRepository) Release(ctx context.Context, id, batchID string, prior domain.FileStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE source_file_registry
SET status = $3, batch_id = '', updated_at = $4
WHERE file_id = $1 AND batch_id = $2 AND status = $5
`, id, batchID, string(prior), time.Now().UTC(), string(domain.StatusProcessing))
	if err != nil {
		return fmt.Errorf("release file: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("release file rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrConflict, "release file", fmt.Errorf("claim on %s not held by batch %s", id, batchID))
	}
	return nil
}

func (r *RegistryRepository) MarkError(ctx context.Context, id, reason string) error {
	if len(reason) > maxErrorMessage {
		reason = reason[:maxErrorMessage]
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE source_file_registry
SET status = $2, error_message = $3, batch_id = '', updated_at = $4
WHERE file_id = $1
`, id, string(domain.StatusError), reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark error rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrFileNotFound, "mark error", fmt.Errorf("id %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSourceFile(row rowScanner) (domain.SourceFile, error) {
	var file domain.SourceFile
	var entity, status string
	err := row.Scan(
		&file.FileID,
		&file.Filename,
		&file.StorageKey,
		&entity,
		&status,
		&file.SizeBytes,
		&file.RowCount,
		&file.ColCount,
		&file.DelimiterGuess,
		&file.EncodingGuess,
		&file.BatchID,
		&file.ErrorMessage,
		&file.RegisteredAt,
		&file.ProfiledAt,
		&file.ProcessedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return domain.SourceFile{}, err
	}
	file.EntityType = domain.EntityType(entity)
	file.Status = domain.FileStatus(status)
	return file, nil
}

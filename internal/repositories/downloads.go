package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
)

// DownloadRepository implements models.Repository[*models.PersistedDownload]
// for the download history table.
//
// Every acquisition that reaches a terminal state is recorded, successes and
// failures alike. Artifact bytes are never persisted; the row carries only
// metadata about what was acquired and how.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new [models.PersistedDownload] into the database with generated ID and sequence
func (r *DownloadRepository) Create(download *models.PersistedDownload) error {
	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	download.SetID(id)
	download.Sequence = sequence

	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO downloads (id, sequence, title, artist, album, duration_ms, strategy, filename, size_bytes, status, failure, elapsed_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		download.Title,
		download.Artist,
		download.Album,
		download.DurationMS,
		download.Strategy,
		download.Filename,
		download.SizeBytes,
		download.Status,
		download.Failure,
		download.ElapsedMS,
		download.CreatedAt(),
		download.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// Get retrieves a download by ID, excluding soft-deleted records
func (r *DownloadRepository) Get(id string) (*models.PersistedDownload, error) {
	query := selectColumns + `
		FROM downloads
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing download record in the database
func (r *DownloadRepository) Update(download *models.PersistedDownload) error {
	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	download.Touch()

	query := `
		UPDATE downloads
		SET title = ?, artist = ?, album = ?, duration_ms = ?, strategy = ?, filename = ?, size_bytes = ?, status = ?, failure = ?, elapsed_ms = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		download.Title,
		download.Artist,
		download.Album,
		download.DurationMS,
		download.Strategy,
		download.Filename,
		download.SizeBytes,
		download.Status,
		download.Failure,
		download.ElapsedMS,
		download.UpdatedAt(),
		download.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found or already deleted: %s", download.ID())
	}

	return nil
}

// Delete soft-deletes a download record by ID
func (r *DownloadRepository) Delete(id string) error {
	now := time.Now().UTC()

	query := `
		UPDATE downloads
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("download not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all downloads matching the given criteria, excluding soft-deleted records.
//
// Supported criteria: "status" ("complete" or "error"), "artist", "strategy",
// and "limit" (int, caps the newest-first result count).
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.PersistedDownload, error) {
	query := selectColumns + `
		FROM downloads
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if strategy, ok := criteria["strategy"].(string); ok && strategy != "" {
		query += " AND strategy = ?"
		args = append(args, strategy)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.PersistedDownload
	for rows.Next() {
		download, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, download)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return downloads, nil
}

const selectColumns = `
		SELECT id, sequence, title, artist, album, duration_ms, strategy, filename, size_bytes, status, failure, elapsed_ms, created_at, updated_at`

// scanOne scans a single [sql.Row] into a [models.PersistedDownload]
func (r *DownloadRepository) scanOne(row *sql.Row) (*models.PersistedDownload, error) {
	download, err := scanDownload(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("download not found")
	}
	return download, err
}

// scanRow scans a [sql.Rows] cursor position into a [models.PersistedDownload]
func (r *DownloadRepository) scanRow(rows *sql.Rows) (*models.PersistedDownload, error) {
	return scanDownload(rows.Scan)
}

func scanDownload(scan func(...any) error) (*models.PersistedDownload, error) {
	var (
		id         string
		sequence   int64
		title      string
		artist     string
		album      sql.NullString
		durationMS sql.NullInt64
		strategy   sql.NullString
		filename   sql.NullString
		sizeBytes  sql.NullInt64
		status     string
		failure    sql.NullString
		elapsedMS  sql.NullInt64
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := scan(&id, &sequence, &title, &artist, &album, &durationMS, &strategy, &filename, &sizeBytes, &status, &failure, &elapsedMS, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	download := &models.PersistedDownload{
		Sequence:   sequence,
		Title:      title,
		Artist:     artist,
		Album:      album.String,
		DurationMS: int(durationMS.Int64),
		Strategy:   strategy.String,
		Filename:   filename.String,
		SizeBytes:  sizeBytes.Int64,
		Status:     status,
		Failure:    failure.String,
		ElapsedMS:  elapsedMS.Int64,
	}
	download.SetID(id)
	download.SetTimestamps(createdAt, updatedAt)
	return download, nil
}

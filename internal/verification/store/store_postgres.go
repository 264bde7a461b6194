package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/profullstack/food-delivery-multivendor/internal/sentinel"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
)

// PostgresStore persists verification records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `user_id, document_url, document_thumbnail_url, document_storage_id,
	document_type, document_size_bytes, document_mime_type, document_filename,
	status, date_of_birth, submitted_at, reviewed_at, verified_at, expiry_date,
	rejection_reason, reviewer_id, granted_types, access_count, last_accessed_at`

func (s *PostgresStore) Create(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO verification_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, recordArgs(record)...)
	if err != nil {
		return fmt.Errorf("create verification record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create verification record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

// Replace atomically swaps the user's record for a new one (resubmission).
// The current row is locked and validated inside the transaction that writes
// the replacement, mirroring Execute, so a transition committed after the
// caller's read fails validation rather than being overwritten.
func (s *PostgresStore) Replace(ctx context.Context, record *models.Record, validate func(current *models.Record) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin verification replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	find := `SELECT ` + recordColumns + ` FROM verification_records WHERE user_id = $1 FOR UPDATE`
	current, err := scanRecord(tx.QueryRowContext(ctx, find, record.UserID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("find record for replace: %w", err)
	}
	if current != nil && validate != nil {
		if err := validate(current); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO verification_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (user_id) DO UPDATE SET
			document_url = EXCLUDED.document_url,
			document_thumbnail_url = EXCLUDED.document_thumbnail_url,
			document_storage_id = EXCLUDED.document_storage_id,
			document_type = EXCLUDED.document_type,
			document_size_bytes = EXCLUDED.document_size_bytes,
			document_mime_type = EXCLUDED.document_mime_type,
			document_filename = EXCLUDED.document_filename,
			status = EXCLUDED.status,
			date_of_birth = EXCLUDED.date_of_birth,
			submitted_at = EXCLUDED.submitted_at,
			reviewed_at = EXCLUDED.reviewed_at,
			verified_at = EXCLUDED.verified_at,
			expiry_date = EXCLUDED.expiry_date,
			rejection_reason = EXCLUDED.rejection_reason,
			reviewer_id = EXCLUDED.reviewer_id,
			granted_types = EXCLUDED.granted_types,
			access_count = 0,
			last_accessed_at = NULL
	`
	if _, err := tx.ExecContext(ctx, query, recordArgs(record)...); err != nil {
		return fmt.Errorf("replace verification record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verification replace: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM verification_records WHERE user_id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListPending(ctx context.Context, limit, offset int) ([]*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM verification_records
		WHERE status = 'PENDING'
		ORDER BY submitted_at ASC
		LIMIT $1 OFFSET $2
	`
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verification_records WHERE status = 'PENDING'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending records: %w", err)
	}
	return count, nil
}

// Execute atomically validates and mutates a record under a row lock, so a
// PENDING to VERIFIED transition either wins or fails; it never races.
func (s *PostgresStore) Execute(ctx context.Context, userID string, validate func(*models.Record) error, mutate func(*models.Record)) (*models.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin verification execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + recordColumns + ` FROM verification_records WHERE user_id = $1 FOR UPDATE`
	record, err := scanRecord(tx.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find record for execute: %w", err)
	}

	if err := validate(record); err != nil {
		return nil, err
	}
	mutate(record)

	update := `
		UPDATE verification_records SET
			status = $2, reviewed_at = $3, verified_at = $4, expiry_date = $5,
			rejection_reason = $6, reviewer_id = $7, date_of_birth = $8, granted_types = $9
		WHERE user_id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		record.UserID,
		string(record.Status),
		record.ReviewedAt,
		record.VerifiedAt,
		record.ExpiryDate,
		nullableString(record.RejectionReason),
		nullableString(record.ReviewerID),
		record.DateOfBirth,
		joinGranted(record.RestrictedItemTypesGranted),
	); err != nil {
		return nil, fmt.Errorf("update record for execute: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit verification execute: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM verification_records
		WHERE status = 'VERIFIED' AND expiry_date <= $1
		ORDER BY expiry_date ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired records: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired record: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired records: %w", err)
	}
	return userIDs, nil
}

// MarkExpired is a single conditional UPDATE: the transition happens only if
// the record is still VERIFIED and stale at execution time.
func (s *PostgresStore) MarkExpired(ctx context.Context, userID string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification_records SET status = 'EXPIRED'
		WHERE user_id = $1 AND status = 'VERIFIED' AND expiry_date <= $2
	`, userID, now)
	if err != nil {
		return false, fmt.Errorf("mark record expired: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark record expired: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) TouchAccess(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification_records
		SET access_count = access_count + 1, last_accessed_at = $2
		WHERE user_id = $1
	`, userID, at)
	if err != nil {
		return fmt.Errorf("touch verification record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch verification record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM verification_records WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete verification record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete verification record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		record          models.Record
		status          string
		docType         string
		granted         string
		rejectionReason sql.NullString
		reviewerID      sql.NullString
	)
	err := row.Scan(
		&record.UserID,
		&record.Document.URL,
		&record.Document.ThumbnailURL,
		&record.Document.StorageID,
		&docType,
		&record.Document.FileSizeBytes,
		&record.Document.MimeType,
		&record.Document.OriginalFilename,
		&status,
		&record.DateOfBirth,
		&record.SubmittedAt,
		&record.ReviewedAt,
		&record.VerifiedAt,
		&record.ExpiryDate,
		&rejectionReason,
		&reviewerID,
		&granted,
		&record.AccessCount,
		&record.LastAccessedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Status = models.Status(status)
	record.Document.Type = models.DocumentType(docType)
	record.RejectionReason = rejectionReason.String
	record.ReviewerID = reviewerID.String
	record.RestrictedItemTypesGranted = splitGranted(granted)
	return &record, nil
}

func recordArgs(record *models.Record) []any {
	return []any{
		record.UserID,
		record.Document.URL,
		record.Document.ThumbnailURL,
		record.Document.StorageID,
		string(record.Document.Type),
		record.Document.FileSizeBytes,
		record.Document.MimeType,
		record.Document.OriginalFilename,
		string(record.Status),
		record.DateOfBirth,
		record.SubmittedAt,
		record.ReviewedAt,
		record.VerifiedAt,
		record.ExpiryDate,
		nullableString(record.RejectionReason),
		nullableString(record.ReviewerID),
		joinGranted(record.RestrictedItemTypesGranted),
		record.AccessCount,
		record.LastAccessedAt,
	}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func joinGranted(granted []models.RestrictedItemType) string {
	parts := make([]string, len(granted))
	for i, g := range granted {
		parts[i] = string(g)
	}
	return strings.Join(parts, ",")
}

func splitGranted(raw string) []models.RestrictedItemType {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	granted := make([]models.RestrictedItemType, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			granted = append(granted, models.RestrictedItemType(p))
		}
	}
	return granted
}

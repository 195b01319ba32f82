package milestones

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/dbx"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get loads a milestone together with the parties of its project.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Milestone, error) {
	query := `
		SELECT m.id, m.project_id, m.title, m.price_minor, m.status,
			p.freelancer_id, p.client_id,
			m.deliverable_name, m.deliverable_size, m.deliverable_url, m.deliverable_key,
			m.watermark_text, m.payment_proof_url, m.payment_proof_key,
			m.created_at, m.updated_at
		FROM milestones m
		JOIN projects p ON p.id = m.project_id
		WHERE m.id = $1`

	var (
		m                            models.Milestone
		status                       string
		dName, dURL, dKey, watermark sql.NullString
		dSize                        sql.NullInt64
		proofURL, proofKey           sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.ProjectID, &m.Title, &m.PriceMinor, &status,
		&m.FreelancerID, &m.ClientID,
		&dName, &dSize, &dURL, &dKey,
		&watermark, &proofURL, &proofKey,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select milestone: %w", common.ErrPersistence, dbx.Classify(err))
	}

	m.Status = models.Status(status)
	if dURL.Valid || dKey.Valid {
		m.Deliverable = &models.Deliverable{
			Name:       dName.String,
			Size:       dSize.Int64,
			URL:        dURL.String,
			StorageKey: dKey.String,
		}
	}
	if watermark.Valid {
		m.WatermarkText = &watermark.String
	}
	m.PaymentProofURL = proofURL.String
	m.PaymentProofKey = proofKey.String
	return &m, nil
}

func (r *PostgresRepository) SubmitProof(ctx context.Context, id string, expected models.Status, proof models.ObjectRef) (Replaced, error) {
	query := `
		WITH prev AS (
			SELECT id, payment_proof_url, payment_proof_key
			FROM milestones WHERE id = $1 AND status = $2 FOR UPDATE
		)
		UPDATE milestones m
		SET status = $3, payment_proof_url = $4, payment_proof_key = $5, updated_at = now()
		FROM prev
		WHERE m.id = prev.id AND m.status = $2
		RETURNING COALESCE(prev.payment_proof_url, ''), COALESCE(prev.payment_proof_key, '')`

	var old Replaced
	err := r.db.QueryRowContext(ctx, query, id, string(expected), string(models.StatusPaymentSubmitted), proof.URL, proof.Key).
		Scan(&old.URL, &old.Key)
	if errors.Is(err, sql.ErrNoRows) {
		return Replaced{}, r.missedSwap(ctx, id, expected)
	}
	if err != nil {
		return Replaced{}, fmt.Errorf("%w: submit proof: %w", common.ErrPersistence, dbx.Classify(err))
	}
	return old, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, expected, next models.Status) error {
	query := `UPDATE milestones SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, id, string(expected), string(next))
	if err != nil {
		return fmt.Errorf("%w: update status: %w", common.ErrPersistence, dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", common.ErrPersistence, dbx.Classify(err))
	}
	switch n {
	case 1:
		return nil
	case 0:
		return r.missedSwap(ctx, id, expected)
	default:
		return fmt.Errorf("%w: unexpected rows affected: %d", common.ErrPersistence, n)
	}
}

func (r *PostgresRepository) ReplaceDeliverable(ctx context.Context, id string, u DeliverableUpdate) (Replaced, error) {
	query := `
		WITH prev AS (
			SELECT id, deliverable_url, deliverable_key
			FROM milestones WHERE id = $1 FOR UPDATE
		)
		UPDATE milestones m
		SET deliverable_name = $2, deliverable_size = $3, deliverable_url = $4, deliverable_key = $5,
			watermark_text = CASE WHEN $6 THEN $7 ELSE m.watermark_text END,
			updated_at = now()
		FROM prev
		WHERE m.id = prev.id
		RETURNING COALESCE(prev.deliverable_url, ''), COALESCE(prev.deliverable_key, '')`

	d := u.Deliverable
	var old Replaced
	err := r.db.QueryRowContext(ctx, query, id, d.Name, d.Size, d.URL, d.StorageKey, u.SetWatermark, nullString(u.Watermark)).
		Scan(&old.URL, &old.Key)
	if errors.Is(err, sql.ErrNoRows) {
		return Replaced{}, fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return Replaced{}, fmt.Errorf("%w: replace deliverable: %w", common.ErrPersistence, dbx.Classify(err))
	}
	return old, nil
}

func (r *PostgresRepository) SetWatermark(ctx context.Context, id string, text *string) error {
	query := `UPDATE milestones SET watermark_text = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, nullString(text))
	if err != nil {
		return fmt.Errorf("%w: update watermark: %w", common.ErrPersistence, dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", common.ErrPersistence, dbx.Classify(err))
	}
	if n == 0 {
		return fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// KeyReferenced matches the canonical key column and, for rows written
// before keys were stored, the tail of the URL column.
func (r *PostgresRepository) KeyReferenced(ctx context.Context, kind ObjectKind, key string) (bool, error) {
	var query string
	switch kind {
	case KindPaymentProof:
		query = `SELECT EXISTS (SELECT 1 FROM milestones
			WHERE payment_proof_key = $1 OR payment_proof_url LIKE '%/' || $1)`
	case KindDeliverable:
		query = `SELECT EXISTS (SELECT 1 FROM milestones
			WHERE deliverable_key = $1 OR deliverable_url LIKE '%/' || $1)`
	default:
		return false, fmt.Errorf("unknown object kind %q", kind)
	}

	var found bool
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&found); err != nil {
		return false, fmt.Errorf("%w: key lookup: %w", common.ErrPersistence, dbx.Classify(err))
	}
	return found, nil
}

// missedSwap tells a stale expected status apart from a missing row.
func (r *PostgresRepository) missedSwap(ctx context.Context, id string, expected models.Status) error {
	var current string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM milestones WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: select status: %w", common.ErrPersistence, dbx.Classify(err))
	}
	return fmt.Errorf("%w: milestone %s is %s, expected %s", common.ErrConflict, id, current, expected)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

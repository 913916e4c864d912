package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tourops/internal/db"
	"tourops/internal/domain"
	"tourops/internal/domain/models"
)

// PolicyRepository persists refund policies. Policies are soft-expired via
// effective_to, never deleted, so old refund requests keep a valid reference.
type PolicyRepository struct {
	DB *sql.DB
}

const policyColumns = `id, category, min_days_before, max_days_before, refund_percent,
	flat_fee, fee_percent, priority, effective_from, effective_to, active`

func scanPolicy(row interface{ Scan(...any) error }) (models.RefundPolicy, error) {
	var (
		p       models.RefundPolicy
		maxDays sql.NullInt64
		effTo   sql.NullTime
	)
	err := row.Scan(
		&p.ID,
		&p.Category,
		&p.MinDaysBefore,
		&maxDays,
		&p.RefundPercent,
		&p.FlatFee,
		&p.FeePercent,
		&p.Priority,
		&p.EffectiveFrom,
		&effTo,
		&p.Active,
	)
	if err != nil {
		return models.RefundPolicy{}, err
	}
	p.MaxDaysBefore = db.IntPtr(maxDays)
	p.EffectiveTo = db.TimePtr(effTo)
	return p, nil
}

func (r PolicyRepository) GetByID(ctx context.Context, id int64) (models.RefundPolicy, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+policyColumns+`
		FROM refund_policies
		WHERE id = ?
		LIMIT 1`, id)

	p, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RefundPolicy{}, domain.NotFoundError{Resource: "refund policy", Err: err}
		}
		return models.RefundPolicy{}, domain.InternalError{Msg: "get refund policy", Err: err}
	}
	return p, nil
}

// ListActive returns the active policies of one category, lowest priority first.
func (r PolicyRepository) ListActive(ctx context.Context, category models.CancellationCategory) ([]models.RefundPolicy, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+policyColumns+`
		FROM refund_policies
		WHERE category = ? AND active = 1
		ORDER BY priority ASC`, category)
	if err != nil {
		return nil, domain.InternalError{Msg: "list refund policies", Err: err}
	}
	defer rows.Close()

	var out []models.RefundPolicy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, domain.InternalError{Msg: "scan refund policy", Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r PolicyRepository) Create(ctx context.Context, p models.RefundPolicy) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO refund_policies
			(category, min_days_before, max_days_before, refund_percent, flat_fee,
			 fee_percent, priority, effective_from, effective_to, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Category, p.MinDaysBefore, db.NullableInt(p.MaxDaysBefore), p.RefundPercent,
		p.FlatFee, p.FeePercent, p.Priority, p.EffectiveFrom, db.NullableTime(p.EffectiveTo),
		p.Active,
	)
	if err != nil {
		return 0, domain.InternalError{Msg: "insert refund policy", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.InternalError{Msg: "refund policy insert id", Err: err}
	}
	return id, nil
}

// Expire soft-retires a policy by closing its effective window.
func (r PolicyRepository) Expire(ctx context.Context, id int64, effectiveTo time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE refund_policies
		SET active = 0, effective_to = ?
		WHERE id = ? AND active = 1`,
		effectiveTo, id,
	)
	if err != nil {
		return domain.InternalError{Msg: "expire refund policy", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "expire refund policy", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "active refund policy"}
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
	"github.com/jackc/pgx/v5"
)

const dispatchColumns = `
	id, reference, customer_name, customer_email, customer_phone, pickup_time,
	subtotal, service_fee, total, outcome, http_status, error, created_at
`

type dispatchRepository struct {
	db DB
}

func NewDispatchRepository(db DB) interfaces.DispatchRepository {
	return &dispatchRepository{db: db}
}

func (r *dispatchRepository) Create(ctx context.Context, d *domain.Dispatch) error {
	return r.db.InTx(ctx, func(q Querier) error {
		query := `
			INSERT INTO order_dispatches (reference, customer_name, customer_email, customer_phone,
			                              pickup_time, subtotal, service_fee, total, outcome,
			                              http_status, error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`
		err := q.QueryRow(ctx, query,
			d.Reference, d.CustomerName, d.CustomerEmail, d.CustomerPhone,
			d.PickupTime, d.Totals.Subtotal, d.Totals.ServiceFee, d.Totals.Total, string(d.Outcome),
			d.HTTPStatus, d.Error, d.CreatedAt,
		).Scan(&d.ID)
		if err != nil {
			return fmt.Errorf("failed to insert dispatch: %w", err)
		}

		lineQuery := `
			INSERT INTO dispatch_lines (dispatch_id, position, name, quantity, price_value)
			VALUES ($1, $2, $3, $4, $5)
		`
		for i, line := range d.Lines {
			if err := q.Exec(ctx, lineQuery, d.ID, i, line.Name, line.Quantity, line.PriceValue); err != nil {
				return fmt.Errorf("failed to insert dispatch line: %w", err)
			}
		}
		return nil
	})
}

func (r *dispatchRepository) FindByReference(ctx context.Context, reference string) (*domain.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM order_dispatches WHERE reference = $1`

	d, err := scanDispatch(r.db.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDispatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch: %w", err)
	}

	lines, err := r.loadLines(ctx, []int{d.ID})
	if err != nil {
		return nil, err
	}
	d.Lines = lines[d.ID]

	return d, nil
}

func (r *dispatchRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM order_dispatches ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []*domain.Dispatch
	var ids []int
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch: %w", err)
		}
		dispatches = append(dispatches, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dispatches: %w", err)
	}
	if len(ids) == 0 {
		return dispatches, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, d := range dispatches {
		d.Lines = lines[d.ID]
	}

	return dispatches, nil
}

func (r *dispatchRepository) loadLines(ctx context.Context, ids []int) (map[int][]domain.OrderLine, error) {
	query := `
		SELECT dispatch_id, name, quantity, price_value
		FROM dispatch_lines
		WHERE dispatch_id = ANY($1)
		ORDER BY dispatch_id, position
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispatch lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int][]domain.OrderLine)
	for rows.Next() {
		var id int
		var line domain.OrderLine
		if err := rows.Scan(&id, &line.Name, &line.Quantity, &line.PriceValue); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch line: %w", err)
		}
		lines[id] = append(lines[id], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dispatch lines: %w", err)
	}

	return lines, nil
}

func scanDispatch(row Row) (*domain.Dispatch, error) {
	var d domain.Dispatch
	var outcome string
	err := row.Scan(
		&d.ID, &d.Reference, &d.CustomerName, &d.CustomerEmail, &d.CustomerPhone, &d.PickupTime,
		&d.Totals.Subtotal, &d.Totals.ServiceFee, &d.Totals.Total, &outcome,
		&d.HTTPStatus, &d.Error, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Outcome = domain.DispatchOutcome(outcome)
	return &d, nil
}

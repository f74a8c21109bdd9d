package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shipquotes-service/internal/application"
	"shipquotes-service/internal/domain"
)

var _ application.QuoteStore = (*QuoteStore)(nil)

type QuoteStore struct{ db *DB }

func NewQuoteStore(db *DB) *QuoteStore { return &QuoteStore{db: db} }

const quoteColumns = `id::text, basket_id, fingerprint, service, amount::text,
        carrier, description, is_valid, is_selected, created_at, updated_at, expires_at`

func (s *QuoteStore) Upsert(ctx context.Context, key application.QuoteKey, fields application.QuoteFields) (domain.Quote, error) {
	const up = `
        INSERT INTO shipping_quotes
            (id, basket_id, fingerprint, service, amount, carrier, description, is_valid, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (basket_id, fingerprint, service) DO UPDATE
          SET amount=EXCLUDED.amount,
              carrier=EXCLUDED.carrier,
              description=EXCLUDED.description,
              is_valid=EXCLUDED.is_valid,
              expires_at=EXCLUDED.expires_at,
              updated_at=NOW()
        RETURNING ` + quoteColumns
	row := s.db.Pool.QueryRow(ctx, up,
		uuid.NewString(), key.BasketID, key.Fingerprint, key.Service,
		fields.Amount.String(), fields.Carrier, fields.Description, fields.Valid, fields.ExpiresAt,
	)
	return scanQuote(row)
}

func (s *QuoteStore) Get(ctx context.Context, quoteID string) (domain.Quote, error) {
	const q = `SELECT ` + quoteColumns + ` FROM shipping_quotes WHERE id=$1`
	out, err := scanQuote(s.db.Pool.QueryRow(ctx, q, quoteID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, application.ErrNotFound
	}
	return out, err
}

func (s *QuoteStore) ListByBasket(ctx context.Context, basketID string) ([]domain.Quote, error) {
	const q = `SELECT ` + quoteColumns + `
        FROM shipping_quotes WHERE basket_id=$1 ORDER BY fingerprint, service`
	rows, err := s.db.Pool.Query(ctx, q, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, quote)
	}
	return out, rows.Err()
}

// SelectExclusive clears the previous selection of the fingerprint group and
// marks the target quote selected, in one transaction so no reader observes
// zero or two selected quotes.
func (s *QuoteStore) SelectExclusive(ctx context.Context, basketID, fingerprint, quoteID string) (domain.Quote, error) {
	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Quote{}, err
	}
	defer tx.Rollback(ctx)

	const clear = `
        UPDATE shipping_quotes
        SET is_selected=FALSE, updated_at=NOW()
        WHERE basket_id=$1 AND fingerprint=$2 AND is_selected AND id<>$3`
	if _, err := tx.Exec(ctx, clear, basketID, fingerprint, quoteID); err != nil {
		return domain.Quote{}, err
	}

	const set = `
        UPDATE shipping_quotes
        SET is_selected=TRUE, updated_at=NOW()
        WHERE id=$1 AND basket_id=$2 AND fingerprint=$3
        RETURNING ` + quoteColumns
	out, err := scanQuote(tx.QueryRow(ctx, set, quoteID, basketID, fingerprint))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, application.ErrNotFound
	}
	if err != nil {
		return domain.Quote{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Quote{}, err
	}
	return out, nil
}

func (s *QuoteStore) SelectedByGroup(ctx context.Context, basketID, fingerprint string) (domain.Quote, error) {
	const q = `SELECT ` + quoteColumns + `
        FROM shipping_quotes WHERE basket_id=$1 AND fingerprint=$2 AND is_selected`
	out, err := scanQuote(s.db.Pool.QueryRow(ctx, q, basketID, fingerprint))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, application.ErrNotFound
	}
	return out, err
}

func (s *QuoteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const del = `DELETE FROM shipping_quotes WHERE expires_at IS NOT NULL AND expires_at <= $1`
	tag, err := s.db.Pool.Exec(ctx, del, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanQuote(row pgx.Row) (domain.Quote, error) {
	var (
		out      domain.Quote
		amount   string
		selected *bool
	)
	if err := row.Scan(
		&out.ID, &out.BasketID, &out.Fingerprint, &out.Service, &amount,
		&out.Carrier, &out.Description, &out.Valid, &selected,
		&out.CreatedAt, &out.UpdatedAt, &out.ExpiresAt,
	); err != nil {
		return domain.Quote{}, err
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Quote{}, err
	}
	out.Amount = dec
	out.Selected = domain.SelectionFromBool(selected)
	return out, nil
}

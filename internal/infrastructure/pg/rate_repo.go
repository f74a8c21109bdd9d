package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipquotes-service/internal/domain"
	"shipquotes-service/internal/infrastructure/logx"
)

// RateRepo reads the shipping reference data: countries, configured rates,
// and which rate serves which country. It backs both the service resolver
// and the table pricer.
type RateRepo struct{ db *DB }

func NewRateRepo(db *DB) *RateRepo { return &RateRepo{db: db} }

func (r *RateRepo) ApplicableServices(ctx context.Context, countryCode string) ([]string, error) {
	const q = `
        SELECT r.name
        FROM shipping_rates r
        JOIN shipping_rate_countries rc ON rc.rate_name = r.name
        WHERE rc.country_iso = $1
        ORDER BY r.name`
	log := logx.L().With(
		zap.String("repo", "rate"),
		zap.String("operation", "ApplicableServices"),
		zap.String("country", countryCode),
	)
	rows, err := r.db.Pool.Query(ctx, q, countryCode)
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Info("sql.query_success", zap.Int("services", len(out)))
	return out, nil
}

// RateFor returns the configured rate for one service, distinguishing an
// unknown rate name from a rate that does not serve the country.
func (r *RateRepo) RateFor(ctx context.Context, countryCode, service string) (domain.Rate, error) {
	const q = `
        SELECT r.name, r.rate::text, r.carrier, r.description,
               EXISTS (
                   SELECT 1 FROM shipping_rate_countries rc
                   WHERE rc.rate_name = r.name AND rc.country_iso = $2
               )
        FROM shipping_rates r
        WHERE r.name = $1`
	var (
		out    domain.Rate
		amount string
		served bool
	)
	err := r.db.Pool.QueryRow(ctx, q, service, countryCode).Scan(
		&out.Name, &amount, &out.Carrier, &out.Description, &served,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Rate{}, domain.ErrRateNotFound
	}
	if err != nil {
		return domain.Rate{}, err
	}
	if !served {
		return domain.Rate{}, domain.ErrCountryNotServed
	}
	out.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return domain.Rate{}, err
	}
	return out, nil
}

func (r *RateRepo) ListCountries(ctx context.Context) ([]domain.Country, error) {
	const q = `
        SELECT iso, name, name_official, sort_priority
        FROM countries
        ORDER BY sort_priority DESC, name`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Country
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ISO, &c.Name, &c.NameOfficial, &c.SortPriority); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

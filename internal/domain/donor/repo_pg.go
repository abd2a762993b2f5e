package donor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helplink/helplink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// txSource routes transactions through the schema-pinned connection the
// network middleware put in context, so the tx sees the same search_path as
// every other query on the request.
func (r *repoPG) txSource(ctx context.Context) txBeginner {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const donorCols = `id, first_name, last_name, blood_type, region, tier, availability,
	medically_cleared, verified, total_donations, last_donation_date, last_active_at,
	response_rate, calls_to_donations, phone, email, created_at, updated_at`

func scanDonor(row pgx.Row) (*Donor, error) {
	var d Donor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.BloodType, &d.Region, &d.Tier, &d.Availability,
		&d.MedicallyCleared, &d.Verified, &d.TotalDonations, &d.LastDonationDate, &d.LastActiveAt,
		&d.ResponseRate, &d.CallsToDonations, &d.Phone, &d.Email, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func collectDonors(rows pgx.Rows) ([]*Donor, error) {
	defer rows.Close()
	var items []*Donor
	for rows.Next() {
		d, err := scanDonor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, d *Donor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donor (id, first_name, last_name, blood_type, region, tier, availability,
			medically_cleared, verified, total_donations, last_donation_date, last_active_at,
			response_rate, calls_to_donations, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.ID, d.FirstName, d.LastName, d.BloodType, d.Region, d.Tier, d.Availability,
		d.MedicallyCleared, d.Verified, d.TotalDonations, d.LastDonationDate, d.LastActiveAt,
		d.ResponseRate, d.CallsToDonations, d.Phone, d.Email)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Donor, error) {
	d, err := scanDonor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+donorCols+` FROM donor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *repoPG) Search(ctx context.Context, f SearchFilter) ([]*Donor, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.BloodType != "" {
		where = append(where, "blood_type = "+arg(f.BloodType))
	}
	if f.Region != "" {
		where = append(where, "region = "+arg(f.Region))
	}
	if f.Tier != "" {
		where = append(where, "tier = "+arg(string(f.Tier)))
	}
	if f.Availability != "" {
		where = append(where, "availability = "+arg(string(f.Availability)))
	}
	if f.VerifiedOnly {
		where = append(where, "verified")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM donor WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + donorCols + ` FROM donor WHERE ` + cond +
		` ORDER BY last_name, first_name LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectDonors(rows)
	return items, total, err
}

func (r *repoPG) ListCandidates(ctx context.Context, bloodTypes []string, region string) ([]*Donor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+donorCols+` FROM donor
		WHERE blood_type = ANY($1) AND region = $2
		  AND availability = 'available' AND medically_cleared
		ORDER BY id`, bloodTypes, region)
	if err != nil {
		return nil, err
	}
	return collectDonors(rows)
}

func (r *repoPG) UpdateAvailability(ctx context.Context, id uuid.UUID, a Availability) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE donor SET availability = $1, last_active_at = NOW(), updated_at = NOW() WHERE id = $2`, a, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) RecordDonation(ctx context.Context, rec *DonationRecord, cooldownDays int) (bool, error) {
	tx, err := r.txSource(ctx).Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE donor SET
			total_donations = total_donations + $1,
			last_donation_date = $2,
			last_active_at = $2,
			availability = 'unavailable',
			updated_at = NOW()
		WHERE id = $3 AND availability = 'available'
		  AND (last_donation_date IS NULL OR last_donation_date <= $2::timestamptz - make_interval(days => $4))`,
		rec.Units, rec.DonatedAt, rec.DonorID, cooldownDays)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO donation_record (id, donor_id, request_id, units, location, donated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.DonorID, rec.RequestID, rec.Units, rec.Location, rec.DonatedAt)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *repoPG) ListDonations(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*DonationRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM donation_record WHERE donor_id = $1`, donorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, donor_id, request_id, units, location, donated_at, created_at
		FROM donation_record WHERE donor_id = $1
		ORDER BY donated_at DESC LIMIT $2 OFFSET $3`, donorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DonationRecord
	for rows.Next() {
		var rec DonationRecord
		if err := rows.Scan(&rec.ID, &rec.DonorID, &rec.RequestID, &rec.Units,
			&rec.Location, &rec.DonatedAt, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		ByBloodType: make(map[string]int),
		ByRegion:    make(map[string]int),
		ByTier:      make(map[string]int),
	}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE availability = 'available'),
			COUNT(*) FILTER (WHERE verified),
			COALESCE(AVG(total_donations), 0),
			COALESCE(AVG(response_rate), 0),
			COALESCE(SUM(total_donations), 0)
		FROM donor`).Scan(&stats.Total, &stats.Available, &stats.Verified,
		&stats.AvgDonations, &stats.AvgResponseRate, &stats.TotalDonations)
	if err != nil {
		return nil, err
	}

	groups := []struct {
		col  string
		dest map[string]int
	}{
		{"blood_type", stats.ByBloodType},
		{"region", stats.ByRegion},
		{"tier", stats.ByTier},
	}
	for _, g := range groups {
		rows, err := r.conn(ctx).Query(ctx,
			`SELECT `+g.col+`, COUNT(*) FROM donor GROUP BY `+g.col)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, err
			}
			g.dest[key] = count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (r *repoPG) TopDonors(ctx context.Context, limit int) ([]*Donor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+donorCols+` FROM donor
		ORDER BY total_donations DESC, response_rate DESC, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectDonors(rows)
}

func (r *repoPG) NeedingFollowup(ctx context.Context, cutoff time.Time) ([]*Donor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+donorCols+` FROM donor
		WHERE verified AND (last_donation_date < $1 OR (last_donation_date IS NULL AND created_at < $1))
		ORDER BY last_donation_date NULLS FIRST, id`, cutoff)
	if err != nil {
		return nil, err
	}
	return collectDonors(rows)
}

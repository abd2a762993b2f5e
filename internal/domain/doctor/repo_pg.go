package doctor

import (
	"context"
	"errors"

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

const doctorCols = `id, first_name, last_name, specialization, region, available,
	current_load, max_capacity, trainer, experience_years, response_rate, email,
	created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Specialization, &d.Region, &d.Available,
		&d.CurrentLoad, &d.MaxCapacity, &d.Trainer, &d.ExperienceYears, &d.ResponseRate, &d.Email,
		&d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, first_name, last_name, specialization, region, available,
			current_load, max_capacity, trainer, experience_years, response_rate, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID, d.FirstName, d.LastName, d.Specialization, d.Region, d.Available,
		d.CurrentLoad, d.MaxCapacity, d.Trainer, d.ExperienceYears, d.ResponseRate, d.Email)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListAvailableByRegion(ctx context.Context, region string) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor
		 WHERE region = $1 AND available AND current_load < max_capacity
		 ORDER BY id`, region)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE doctor SET available = $1, updated_at = NOW() WHERE id = $2`, available, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ReserveSlot(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET current_load = current_load + 1, updated_at = NOW()
		WHERE id = $1 AND available AND current_load < max_capacity`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) ReleaseSlot(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET current_load = GREATEST(current_load - 1, 0), updated_at = NOW()
		WHERE id = $1`, id)
	return err
}

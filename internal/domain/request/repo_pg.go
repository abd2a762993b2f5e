package request

import (
	"context"
	"errors"
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

const requestCols = `id, patient_id, doctor_id, kind, priority, status, region, title, description,
	hemoglobin_level, iron_level, weight, blood_type, notes,
	created_at, assigned_at, completed_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	var hb, iron, weight *float64
	var bloodType *string
	err := row.Scan(&req.ID, &req.PatientID, &req.DoctorID, &req.Kind, &req.Priority, &req.Status,
		&req.Region, &req.Title, &req.Description,
		&hb, &iron, &weight, &bloodType, &req.Notes,
		&req.CreatedAt, &req.AssignedAt, &req.CompletedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if bloodType != nil {
		req.Health = &HealthSnapshot{BloodType: *bloodType}
		if hb != nil {
			req.Health.HemoglobinLevel = *hb
		}
		if iron != nil {
			req.Health.IronLevel = *iron
		}
		if weight != nil {
			req.Health.Weight = *weight
		}
	}
	return &req, nil
}

func (r *repoPG) Create(ctx context.Context, req *Request) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	var hb, iron, weight *float64
	var bloodType *string
	if req.Health != nil {
		hb, iron, weight = &req.Health.HemoglobinLevel, &req.Health.IronLevel, &req.Health.Weight
		bloodType = &req.Health.BloodType
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_request (id, patient_id, kind, priority, status, region, title, description,
			hemoglobin_level, iron_level, weight, blood_type, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		req.ID, req.PatientID, req.Kind, req.Priority, req.Status, req.Region, req.Title, req.Description,
		hb, iron, weight, bloodType, req.Notes, req.CreatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM patient_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return req, err
}

func collectRequests(rows pgx.Rows) ([]*Request, error) {
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, rows.Err()
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient_request`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM patient_request ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectRequests(rows)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_request WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM patient_request WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectRequests(rows)
	return items, total, err
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_request WHERE doctor_id = $1`, doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+requestCols+` FROM patient_request WHERE doctor_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectRequests(rows)
	return items, total, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_request
		SET status = $1,
		    assigned_at = CASE WHEN $1 = 'assigned' THEN $2 ELSE assigned_at END,
		    completed_at = CASE WHEN $1 = 'completed' THEN $2 ELSE completed_at END,
		    updated_at = $2
		WHERE id = $3 AND status = $4`,
		to, at, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) MarkAssigned(ctx context.Context, id uuid.UUID, doctorID uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_request
		SET doctor_id = $1, status = 'assigned', assigned_at = $2, updated_at = $2
		WHERE id = $3 AND status = 'pending'`,
		doctorID, at, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) CountByDoctorStatus(ctx context.Context, doctorID uuid.UUID, dayStart time.Time) (WorkloadCounts, error) {
	var w WorkloadCounts
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'assigned'),
		       COUNT(*) FILTER (WHERE status = 'in_progress'),
		       COUNT(*) FILTER (WHERE status = 'completed' AND completed_at >= $2)
		FROM patient_request WHERE doctor_id = $1`,
		doctorID, dayStart).
		Scan(&w.Total, &w.Pending, &w.Assigned, &w.InProgress, &w.CompletedToday)
	return w, err
}

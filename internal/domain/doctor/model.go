package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctor table. CurrentLoad and MaxCapacity drive the
// capacity check during assignment; the availability flag is advisory and a
// doctor at capacity is never selectable regardless of it.
type Doctor struct {
	ID              uuid.UUID `db:"id" json:"id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Specialization  string    `db:"specialization" json:"specialization"`
	Region          string    `db:"region" json:"region"`
	Available       bool      `db:"available" json:"available"`
	CurrentLoad     int       `db:"current_load" json:"current_load"`
	MaxCapacity     int       `db:"max_capacity" json:"max_capacity"`
	Trainer         bool      `db:"trainer" json:"trainer"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	ResponseRate    int       `db:"response_rate" json:"response_rate"`
	Email           string    `db:"email" json:"email"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasCapacity reports whether the doctor can accept one more patient.
func (d *Doctor) HasCapacity() bool {
	return d.CurrentLoad < d.MaxCapacity
}

// Name returns the doctor's display name.
func (d *Doctor) Name() string {
	return d.FirstName + " " + d.LastName
}

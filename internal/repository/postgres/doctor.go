package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
)

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `INSERT INTO doctors (name, specialty) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, doctor.Name, doctor.Specialty).Scan(&doctor.ID); err != nil {
		return writeError("create doctor", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `SELECT id, name, specialty FROM doctors WHERE id = $1`
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, readError("get doctor", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `UPDATE doctors SET name = $1, specialty = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, doctor.Name, doctor.Specialty, doctor.ID)
	if err != nil {
		return writeError("update doctor", err)
	}
	return expectAffected(result)
}

func (r *doctorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return deleteError("delete doctor", err)
	}
	return expectAffected(result)
}

func (r *doctorRepository) List(ctx context.Context, filter *model.DoctorFilter) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	query := `
		SELECT id, name, specialty
		FROM doctors
		WHERE ($1::text = '' OR specialty ILIKE '%' || $1::text || '%')
		ORDER BY id
		OFFSET $2 LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &doctors, query, filter.Specialty, filter.Skip, filter.Limit); err != nil {
		return nil, readError("list doctors", err)
	}
	return doctors, nil
}

package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
)

type medicalHistoryRepository struct {
	db *sqlx.DB
}

func NewMedicalHistoryRepository(db *sqlx.DB) repository.MedicalHistoryRepository {
	return &medicalHistoryRepository{db: db}
}

const historyColumns = `id, patient_id, diagnosis, treatment, date`

func (r *medicalHistoryRepository) Create(ctx context.Context, history *model.MedicalHistory) error {
	query := `
		INSERT INTO medical_histories (patient_id, diagnosis, treatment, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		history.PatientID,
		history.Diagnosis,
		history.Treatment,
		history.Date,
	).Scan(&history.ID)
	if err != nil {
		return writeError("create medical history", err)
	}
	return nil
}

func (r *medicalHistoryRepository) Get(ctx context.Context, id int64) (*model.MedicalHistory, error) {
	var history model.MedicalHistory
	query := `SELECT ` + historyColumns + ` FROM medical_histories WHERE id = $1`
	if err := r.db.GetContext(ctx, &history, query, id); err != nil {
		return nil, readError("get medical history", err)
	}
	return &history, nil
}

func (r *medicalHistoryRepository) Update(ctx context.Context, history *model.MedicalHistory) error {
	query := `UPDATE medical_histories SET diagnosis = $1, treatment = $2, date = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, history.Diagnosis, history.Treatment, history.Date, history.ID)
	if err != nil {
		return writeError("update medical history", err)
	}
	return expectAffected(result)
}

func (r *medicalHistoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM medical_histories WHERE id = $1`, id)
	if err != nil {
		return deleteError("delete medical history", err)
	}
	return expectAffected(result)
}

func (r *medicalHistoryRepository) ListByPatient(ctx context.Context, patientID int64, page *model.Pagination) ([]model.MedicalHistory, error) {
	histories := []model.MedicalHistory{}
	query := `SELECT ` + historyColumns + ` FROM medical_histories WHERE patient_id = $1 ORDER BY date DESC, id DESC`
	args := []interface{}{patientID}
	if page != nil {
		query += ` OFFSET $2 LIMIT $3`
		args = append(args, page.Skip, page.Limit)
	}
	if err := r.db.SelectContext(ctx, &histories, query, args...); err != nil {
		return nil, readError("list medical histories", err)
	}
	return histories, nil
}

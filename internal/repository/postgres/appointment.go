package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, date_time, status, purpose`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, date_time, status, purpose)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.DateTime.UTC(),
		appointment.Status,
		appointment.Purpose,
	).Scan(&appointment.ID)
	if err != nil {
		return writeError("create appointment", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	var appointment model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, readError("get appointment", err)
	}
	appointment.DateTime = appointment.DateTime.UTC()
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, date_time = $3, status = $4, purpose = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.DateTime.UTC(),
		appointment.Status,
		appointment.Purpose,
		appointment.ID,
	)
	if err != nil {
		return writeError("update appointment", err)
	}
	return expectAffected(result)
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return deleteError("delete appointment", err)
	}
	return expectAffected(result)
}

func (r *appointmentRepository) List(ctx context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.PatientID != nil {
		add("patient_id = $%d", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		add("doctor_id = $%d", *filter.DoctorID)
	}
	if filter.From != nil {
		add("date_time >= $%d", filter.From.UTC())
	}
	if filter.To != nil {
		add("date_time <= $%d", filter.To.UTC())
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Skip, filter.Limit)
	query += fmt.Sprintf(" ORDER BY date_time, id OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, readError("list appointments", err)
	}
	for _, a := range appointments {
		a.DateTime = a.DateTime.UTC()
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, patientID, doctorID int64, at time.Time) (*model.Appointment, error) {
	var appointment model.Appointment
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1 AND doctor_id = $2 AND date_time = $3 AND status <> $4
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &appointment, query, patientID, doctorID, at.UTC(), model.AppointmentStatusCancelled)
	if err != nil {
		return nil, readError("find appointment by slot", err)
	}
	appointment.DateTime = appointment.DateTime.UTC()
	return &appointment, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error) {
	return r.listBy(ctx, "patient_id", patientID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]model.Appointment, error) {
	return r.listBy(ctx, "doctor_id", doctorID)
}

func (r *appointmentRepository) listBy(ctx context.Context, column string, id int64) ([]model.Appointment, error) {
	appointments := []model.Appointment{}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE ` + column + ` = $1 ORDER BY date_time, id`
	if err := r.db.SelectContext(ctx, &appointments, query, id); err != nil {
		return nil, readError("list appointments by "+column, err)
	}
	for i := range appointments {
		appointments[i].DateTime = appointments[i].DateTime.UTC()
	}
	return appointments, nil
}

package patient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

func TestPatientLifecycle(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Patients, store.MedicalHistory, store.Appointments)
	ctx := context.Background()

	phone := "+15550100"
	patient, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{
		Name: "John Doe", Email: "john@example.com", Phone: &phone, DateOfBirth: "1970-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "1970-01-31", patient.DateOfBirth.String())

	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{Name: "Other", Email: "john@example.com", DateOfBirth: "1980-01-01"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.CreatePatient(ctx, &model.CreatePatientRequest{Name: "Bad", Email: "bad@example.com", DateOfBirth: "31/01/1970"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidFormat))

	newName := "John Q. Doe"
	updated, err := svc.UpdatePatient(ctx, patient.ID, &model.UpdatePatientRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "John Q. Doe", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)

	doctor := &model.Doctor{Name: "Dr. Kildare", Specialty: "General"}
	require.NoError(t, store.Doctors.Create(ctx, doctor))
	appointment := &model.Appointment{PatientID: patient.ID, DoctorID: doctor.ID, DateTime: time.Now().UTC(), Status: model.AppointmentStatusScheduled}
	require.NoError(t, store.Appointments.Create(ctx, appointment))

	detail, err := svc.GetPatient(ctx, patient.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Appointments, 1)
	assert.Empty(t, detail.MedicalHistory)

	_, err = svc.DeletePatient(ctx, patient.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	require.NoError(t, store.Appointments.Delete(ctx, appointment.ID))
	_, err = svc.DeletePatient(ctx, patient.ID)
	require.NoError(t, err)

	_, err = svc.GetPatient(ctx, patient.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

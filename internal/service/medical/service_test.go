package medical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

func TestMedicalHistory(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.MedicalHistory, store.Patients)
	ctx := context.Background()

	dob, _ := model.ParseDate("1990-01-01")
	patient := &model.Patient{Name: "Ann", Email: "ann@example.com", DateOfBirth: dob}
	require.NoError(t, store.Patients.Create(ctx, patient))

	_, err := svc.CreateHistory(ctx, &model.CreateMedicalHistoryRequest{PatientID: 404, Diagnosis: "flu", Date: "2024-01-01"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidReference, appErr.Code)
	assert.Equal(t, "patientId", appErr.Field)

	older, err := svc.CreateHistory(ctx, &model.CreateMedicalHistoryRequest{PatientID: patient.ID, Diagnosis: "flu", Date: "2023-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", older.Patient.Name)
	_, err = svc.CreateHistory(ctx, &model.CreateMedicalHistoryRequest{PatientID: patient.ID, Diagnosis: "sprain", Date: "2024-06-01"})
	require.NoError(t, err)

	list, err := svc.ListForPatient(ctx, patient.ID, model.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sprain", list[0].Diagnosis)

	_, err = svc.ListForPatient(ctx, 404, model.Pagination{Limit: 10})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	treatment := "rest"
	updated, err := svc.UpdateHistory(ctx, older.ID, &model.UpdateMedicalHistoryRequest{Treatment: &treatment})
	require.NoError(t, err)
	require.NotNil(t, updated.Treatment)
	assert.Equal(t, "rest", *updated.Treatment)
	assert.Equal(t, "flu", updated.Diagnosis)

	_, err = svc.DeleteHistory(ctx, older.ID)
	require.NoError(t, err)
	_, err = svc.GetHistory(ctx, older.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

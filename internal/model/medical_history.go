package model

type MedicalHistory struct {
	ID        int64   `db:"id" json:"id"`
	PatientID int64   `db:"patient_id" json:"patientId"`
	Diagnosis string  `db:"diagnosis" json:"diagnosis"`
	Treatment *string `db:"treatment" json:"treatment"`
	Date      Date    `db:"date" json:"date"`
}

// MedicalHistoryDetail is a history entry with its patient
type MedicalHistoryDetail struct {
	MedicalHistory
	Patient Patient `json:"patient"`
}

type CreateMedicalHistoryRequest struct {
	PatientID int64   `json:"patientId"`
	Diagnosis string  `json:"diagnosis" binding:"required"`
	Treatment *string `json:"treatment"`
	Date      string  `json:"date" binding:"required,datetime=2006-01-02"`
}

type UpdateMedicalHistoryRequest struct {
	Diagnosis *string `json:"diagnosis"`
	Treatment *string `json:"treatment"`
	Date      *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

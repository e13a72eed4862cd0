package model

type Patient struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Email       string  `db:"email" json:"email"`
	Phone       *string `db:"phone" json:"phone"`
	DateOfBirth Date    `db:"date_of_birth" json:"dateOfBirth"`
}

// PatientSummary is the patient as nested inside an appointment. Its
// medical history is never loaded there and always serialises as null.
type PatientSummary struct {
	Patient
	MedicalHistory []MedicalHistory `json:"medicalHistory"`
}

// PatientDetail is a patient with its related records
type PatientDetail struct {
	Patient
	MedicalHistory []MedicalHistory `json:"medicalHistory"`
	Appointments   []Appointment    `json:"appointments"`
}

type CreatePatientRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	DateOfBirth string  `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type PatientFilter struct {
	Name  string
	Email string
	Pagination
}

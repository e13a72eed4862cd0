package model

type Doctor struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Specialty string `db:"specialty" json:"specialty"`
}

// DoctorDetail is a doctor with its appointments
type DoctorDetail struct {
	Doctor
	Appointments []Appointment `json:"appointments"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required"`
	Specialty string `json:"specialty" binding:"required"`
}

type UpdateDoctorRequest struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
}

type DoctorFilter struct {
	Specialty string
	Pagination
}

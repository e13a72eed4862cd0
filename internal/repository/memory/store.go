// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same uniqueness and reference rules as the
// PostgreSQL schema and backs tests and the database-less dev mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
)

type db struct {
	mu sync.RWMutex

	nextID int64
	now    func() time.Time

	users        map[int64]model.User
	patients     map[int64]model.Patient
	doctors      map[int64]model.Doctor
	appointments map[int64]model.Appointment
	histories    map[int64]model.MedicalHistory
}

// NewStore returns an empty store with every repository wired.
func NewStore() *repository.Store {
	d := &db{
		now:          time.Now,
		users:        map[int64]model.User{},
		patients:     map[int64]model.Patient{},
		doctors:      map[int64]model.Doctor{},
		appointments: map[int64]model.Appointment{},
		histories:    map[int64]model.MedicalHistory{},
	}
	return &repository.Store{
		Users:          &userRepository{d},
		Patients:       &patientRepository{d},
		Doctors:        &doctorRepository{d},
		Appointments:   &appointmentRepository{d},
		MedicalHistory: &medicalHistoryRepository{d},
		Tokens:         NewTokenRepository(),
	}
}

// NewTokenRepository returns a standalone in-memory revocation list.
func NewTokenRepository() repository.TokenRepository {
	return &tokenRepository{revoked: cache.New(cache.NoExpiration, revokedSweepInterval)}
}

func (d *db) id() int64 {
	d.nextID++
	return d.nextID
}

func page[T any](items []T, p model.Pagination) []T {
	if p.Skip >= len(items) {
		return []T{}
	}
	items = items[p.Skip:]
	if p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type userRepository struct{ d *db }

func (r *userRepository) Create(_ context.Context, user *model.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, u := range r.d.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = r.d.id()
	user.CreatedAt = r.d.now().UTC()
	r.d.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	u, ok := r.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, u := range r.d.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context, p model.Pagination) ([]*model.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	users := make([]*model.User, 0, len(r.d.users))
	for _, u := range r.d.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, p), nil
}

type patientRepository struct{ d *db }

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, p := range r.d.patients {
		if p.Email == patient.Email {
			return repository.ErrDuplicate
		}
	}
	patient.ID = r.d.id()
	r.d.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) Get(_ context.Context, id int64) (*model.Patient, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	p, ok := r.d.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepository) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, p := range r.d.patients {
		if p.Email == email {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.patients[patient.ID]; !ok {
		return repository.ErrNotFound
	}
	r.d.patients[patient.ID] = *patient
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.patients[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range r.d.appointments {
		if a.PatientID == id {
			return repository.ErrReferenced
		}
	}
	for _, h := range r.d.histories {
		if h.PatientID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.d.patients, id)
	return nil
}

func (r *patientRepository) List(_ context.Context, filter *model.PatientFilter) ([]*model.Patient, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	patients := []*model.Patient{}
	for _, p := range r.d.patients {
		if filter.Name != "" && !containsFold(p.Name, filter.Name) {
			continue
		}
		if filter.Email != "" && !containsFold(p.Email, filter.Email) {
			continue
		}
		p := p
		patients = append(patients, &p)
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].ID < patients[j].ID })
	return page(patients, filter.Pagination), nil
}

type doctorRepository struct{ d *db }

func (r *doctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	doctor.ID = r.d.id()
	r.d.doctors[doctor.ID] = *doctor
	return nil
}

func (r *doctorRepository) Get(_ context.Context, id int64) (*model.Doctor, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	d, ok := r.d.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r *doctorRepository) Update(_ context.Context, doctor *model.Doctor) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.doctors[doctor.ID]; !ok {
		return repository.ErrNotFound
	}
	r.d.doctors[doctor.ID] = *doctor
	return nil
}

func (r *doctorRepository) Delete(_ context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range r.d.appointments {
		if a.DoctorID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.d.doctors, id)
	return nil
}

func (r *doctorRepository) List(_ context.Context, filter *model.DoctorFilter) ([]*model.Doctor, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	doctors := []*model.Doctor{}
	for _, d := range r.d.doctors {
		if filter.Specialty != "" && !containsFold(d.Specialty, filter.Specialty) {
			continue
		}
		d := d
		doctors = append(doctors, &d)
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].ID < doctors[j].ID })
	return page(doctors, filter.Pagination), nil
}

type appointmentRepository struct{ d *db }

// checkRefs enforces the foreign keys and the active-slot unique index.
// Callers hold the write lock.
func (r *appointmentRepository) checkRefs(a *model.Appointment) error {
	if _, ok := r.d.patients[a.PatientID]; !ok {
		return repository.ErrMissingReference
	}
	if _, ok := r.d.doctors[a.DoctorID]; !ok {
		return repository.ErrMissingReference
	}
	if a.Status == model.AppointmentStatusCancelled {
		return nil
	}
	for id, other := range r.d.appointments {
		if id == a.ID || other.Status == model.AppointmentStatusCancelled {
			continue
		}
		if other.PatientID == a.PatientID && other.DoctorID == a.DoctorID && other.DateTime.Equal(a.DateTime) {
			return repository.ErrDuplicate
		}
	}
	return nil
}

func (r *appointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	appointment.DateTime = appointment.DateTime.UTC()
	if err := r.checkRefs(appointment); err != nil {
		return err
	}
	appointment.ID = r.d.id()
	r.d.appointments[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id int64) (*model.Appointment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	a, ok := r.d.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.appointments[appointment.ID]; !ok {
		return repository.ErrNotFound
	}
	appointment.DateTime = appointment.DateTime.UTC()
	if err := r.checkRefs(appointment); err != nil {
		return err
	}
	r.d.appointments[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepository) Delete(_ context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.appointments, id)
	return nil
}

func sortAppointments[T any](items []T, get func(T) model.Appointment) {
	sort.Slice(items, func(i, j int) bool {
		a, b := get(items[i]), get(items[j])
		if !a.DateTime.Equal(b.DateTime) {
			return a.DateTime.Before(b.DateTime)
		}
		return a.ID < b.ID
	})
}

func (r *appointmentRepository) List(_ context.Context, filter *model.AppointmentFilter) ([]*model.Appointment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	appointments := []*model.Appointment{}
	for _, a := range r.d.appointments {
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.From != nil && a.DateTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.DateTime.After(*filter.To) {
			continue
		}
		a := a
		appointments = append(appointments, &a)
	}
	sortAppointments(appointments, func(a *model.Appointment) model.Appointment { return *a })
	return page(appointments, filter.Pagination), nil
}

func (r *appointmentRepository) FindActiveBySlot(_ context.Context, patientID, doctorID int64, at time.Time) (*model.Appointment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var found *model.Appointment
	for _, a := range r.d.appointments {
		if a.PatientID != patientID || a.DoctorID != doctorID || !a.DateTime.Equal(at) {
			continue
		}
		if a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if found == nil || a.ID < found.ID {
			a := a
			found = &a
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *appointmentRepository) ListByPatient(_ context.Context, patientID int64) ([]model.Appointment, error) {
	return r.listBy(func(a model.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *appointmentRepository) ListByDoctor(_ context.Context, doctorID int64) ([]model.Appointment, error) {
	return r.listBy(func(a model.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *appointmentRepository) listBy(match func(model.Appointment) bool) []model.Appointment {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	appointments := []model.Appointment{}
	for _, a := range r.d.appointments {
		if match(a) {
			appointments = append(appointments, a)
		}
	}
	sortAppointments(appointments, func(a model.Appointment) model.Appointment { return a })
	return appointments
}

type medicalHistoryRepository struct{ d *db }

func (r *medicalHistoryRepository) Create(_ context.Context, history *model.MedicalHistory) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.patients[history.PatientID]; !ok {
		return repository.ErrMissingReference
	}
	history.ID = r.d.id()
	r.d.histories[history.ID] = *history
	return nil
}

func (r *medicalHistoryRepository) Get(_ context.Context, id int64) (*model.MedicalHistory, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	h, ok := r.d.histories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (r *medicalHistoryRepository) Update(_ context.Context, history *model.MedicalHistory) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.histories[history.ID]; !ok {
		return repository.ErrNotFound
	}
	r.d.histories[history.ID] = *history
	return nil
}

func (r *medicalHistoryRepository) Delete(_ context.Context, id int64) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.histories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.histories, id)
	return nil
}

func (r *medicalHistoryRepository) ListByPatient(_ context.Context, patientID int64, p *model.Pagination) ([]model.MedicalHistory, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	histories := []model.MedicalHistory{}
	for _, h := range r.d.histories {
		if h.PatientID == patientID {
			histories = append(histories, h)
		}
	}
	sort.Slice(histories, func(i, j int) bool {
		if !histories[i].Date.Equal(histories[j].Date.Time) {
			return histories[i].Date.After(histories[j].Date.Time)
		}
		return histories[i].ID > histories[j].ID
	})
	if p != nil {
		histories = page(histories, *p)
	}
	return histories, nil
}

const revokedSweepInterval = 10 * time.Minute

type tokenRepository struct {
	revoked *cache.Cache
}

func (r *tokenRepository) Revoke(_ context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	r.revoked.Set(jti, struct{}{}, ttl)
	return nil
}

func (r *tokenRepository) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := r.revoked.Get(jti)
	return ok, nil
}

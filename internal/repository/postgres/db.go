package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/hpms-api/internal/config"
	"github.com/jwalitptl/hpms-api/internal/repository"
)

func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewStore wires every PostgreSQL repository. tokens is supplied separately
// because revocations live in Redis or memory.
func NewStore(db *sqlx.DB, tokens repository.TokenRepository) *repository.Store {
	return &repository.Store{
		Users:          NewUserRepository(db),
		Patients:       NewPatientRepository(db),
		Doctors:        NewDoctorRepository(db),
		Appointments:   NewAppointmentRepository(db),
		MedicalHistory: NewMedicalHistoryRepository(db),
		Tokens:         tokens,
	}
}

package scheduling

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

// AppointmentRepository persists confirmed visits.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *Appointment) error
}

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresAppointmentRepository writes appointments via pgx.
type PostgresAppointmentRepository struct {
	db db
}

// NewPostgresAppointmentRepository wires the repository to a pgx pool or tx.
func NewPostgresAppointmentRepository(db db) *PostgresAppointmentRepository {
	if db == nil {
		panic("scheduling: database handle required")
	}
	return &PostgresAppointmentRepository{db: db}
}

// Create inserts the appointment row. The error is returned untouched so
// the validator can refuse to confirm the booking.
func (r *PostgresAppointmentRepository) Create(ctx context.Context, appt *Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (
			id, customer_name, phone, scheduled_date, scheduled_time,
			visit_type, vehicle_interest, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, appt.ID, appt.CustomerName, appt.Phone, appt.ScheduledDate,
		appt.ScheduledTime, appt.VisitType, appt.VehicleInterest,
		appt.Status, appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("scheduling: insert appointment: %w", err)
	}
	return nil
}

// InMemoryAppointmentRepository keeps appointments in memory for tests and
// store-less deployments.
type InMemoryAppointmentRepository struct {
	mu           sync.Mutex
	appointments []*Appointment
}

// NewInMemoryAppointmentRepository creates an empty repository.
func NewInMemoryAppointmentRepository() *InMemoryAppointmentRepository {
	return &InMemoryAppointmentRepository{}
}

func (r *InMemoryAppointmentRepository) Create(_ context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *appt
	r.appointments = append(r.appointments, &copied)
	return nil
}

// All returns a snapshot of the stored appointments.
func (r *InMemoryAppointmentRepository) All() []*Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out
}

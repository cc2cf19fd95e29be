package professionals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/donglares/agendia-platform/internal/schedule"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores professional aggregates in the relational
// database. Saves run in a single transaction with an optimistic version
// check so two racing writers cannot silently drop each other's bookings.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("professionals: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Save upserts the whole aggregate. The professional row carries a version
// stamp checked on update; services are replaced wholesale and bookings are
// upserted (only their status ever changes after insertion).
func (r *PostgresRepository) Save(ctx context.Context, p *schedule.Professional) error {
	hours, err := json.Marshal(p.WorkingHours)
	if err != nil {
		return fmt.Errorf("professionals: encode working hours: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("professionals: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if p.Version == 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO professionals (id, name, contact_address, working_hours, version)
			VALUES ($1, $2, $3, $4, 1)
		`, p.ID, p.Name, p.ContactAddress, hours)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateContact
			}
			return fmt.Errorf("professionals: insert aggregate root: %w", err)
		}
	} else {
		tag, err := tx.Exec(ctx, `
			UPDATE professionals
			SET name = $2, contact_address = $3, working_hours = $4, version = version + 1
			WHERE id = $1 AND version = $5
		`, p.ID, p.Name, p.ContactAddress, hours, p.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateContact
			}
			return fmt.Errorf("professionals: update aggregate root: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM services WHERE professional_id = $1`, p.ID); err != nil {
		return fmt.Errorf("professionals: clear catalog: %w", err)
	}
	for i, svc := range p.ServicesOffered {
		_, err := tx.Exec(ctx, `
			INSERT INTO services (professional_id, name, duration_minutes, position)
			VALUES ($1, $2, $3, $4)
		`, p.ID, svc.Name, svc.DurationMinutes, i)
		if err != nil {
			return fmt.Errorf("professionals: insert service %q: %w", svc.Name, err)
		}
	}

	for _, b := range p.Bookings {
		_, err := tx.Exec(ctx, `
			INSERT INTO bookings (id, professional_id, service_name, service_duration_minutes,
				start_time, end_time, client_contact, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
		`, b.ID, p.ID, b.Service.Name, b.Service.DurationMinutes,
			b.StartTime, b.EndTime, b.ClientContact, string(b.Status))
		if err != nil {
			return fmt.Errorf("professionals: upsert booking %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("professionals: commit save: %w", err)
	}

	p.Version++
	return nil
}

// GetByID loads the full aggregate.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*schedule.Professional, error) {
	return r.load(ctx, `
		SELECT id, name, contact_address, working_hours, version
		FROM professionals WHERE id = $1
	`, id)
}

// GetByContact loads the aggregate whose own contact address matches.
func (r *PostgresRepository) GetByContact(ctx context.Context, contact string) (*schedule.Professional, error) {
	return r.load(ctx, `
		SELECT id, name, contact_address, working_hours, version
		FROM professionals WHERE contact_address = $1
	`, contact)
}

// List loads every aggregate, bookings and all.
func (r *PostgresRepository) List(ctx context.Context) ([]*schedule.Professional, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, contact_address, working_hours, version
		FROM professionals ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("professionals: list roots: %w", err)
	}
	roots, err := scanRoots(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range roots {
		if err := r.loadChildren(ctx, p); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

func (r *PostgresRepository) load(ctx context.Context, query string, arg any) (*schedule.Professional, error) {
	row := r.db.QueryRow(ctx, query, arg)
	p, err := scanRoot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("professionals: load root: %w", err)
	}
	if err := r.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) loadChildren(ctx context.Context, p *schedule.Professional) error {
	rows, err := r.db.Query(ctx, `
		SELECT name, duration_minutes FROM services
		WHERE professional_id = $1 ORDER BY position
	`, p.ID)
	if err != nil {
		return fmt.Errorf("professionals: load catalog: %w", err)
	}
	for rows.Next() {
		var svc schedule.Service
		if err := rows.Scan(&svc.Name, &svc.DurationMinutes); err != nil {
			rows.Close()
			return fmt.Errorf("professionals: scan service: %w", err)
		}
		p.ServicesOffered = append(p.ServicesOffered, svc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("professionals: iterate catalog: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, service_name, service_duration_minutes, start_time, end_time, client_contact, status
		FROM bookings WHERE professional_id = $1 ORDER BY seq
	`, p.ID)
	if err != nil {
		return fmt.Errorf("professionals: load bookings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			b      schedule.Booking
			status string
		)
		if err := rows.Scan(&b.ID, &b.Service.Name, &b.Service.DurationMinutes,
			&b.StartTime, &b.EndTime, &b.ClientContact, &status); err != nil {
			return fmt.Errorf("professionals: scan booking: %w", err)
		}
		b.Status = schedule.Status(status)
		p.Bookings = append(p.Bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("professionals: iterate bookings: %w", err)
	}
	return nil
}

func scanRoot(row pgx.Row) (*schedule.Professional, error) {
	var (
		p     schedule.Professional
		hours []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.ContactAddress, &hours, &p.Version); err != nil {
		return nil, err
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &p.WorkingHours); err != nil {
			return nil, fmt.Errorf("professionals: decode working hours: %w", err)
		}
	}
	if p.WorkingHours == nil {
		p.WorkingHours = schedule.WorkingHours{}
	}
	return &p, nil
}

func scanRoots(rows pgx.Rows) ([]*schedule.Professional, error) {
	defer rows.Close()
	var out []*schedule.Professional
	for rows.Next() {
		p, err := scanRoot(rows)
		if err != nil {
			return nil, fmt.Errorf("professionals: scan root: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("professionals: iterate roots: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PostgresRepository)(nil)

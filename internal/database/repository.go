package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

//go:embed schema.sql
var schema string

// Repository handles all database operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ gateway.Records = (*Repository)(nil)

// EnsureSchema creates missing tables and indexes
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping checks the pool can reach the database
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// --- Client Operations ---

const clientColumns = `
	id::text, user_id::text, name, email, phone, birthdate, is_free_service, notes, created_at`

// ListClients returns the owner's clients, newest first
func (r *Repository) ListClients(ctx context.Context, ownerID string) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var row clientRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}

	return clients, nil
}

// GetClient returns a client by ID
func (r *Repository) GetClient(ctx context.Context, ownerID, clientID string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + `
		FROM clients
		WHERE user_id = $1 AND id::text = $2
	`

	var row clientRow
	err := r.pool.QueryRow(ctx, query, ownerID, clientID).Scan(row.fields()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	client := row.toModel()
	return &client, nil
}

// InsertClient stores a new client; CreatedAt is set by the database
func (r *Repository) InsertClient(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO clients (id, user_id, name, email, phone, birthdate, is_free_service, notes)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::date, $7, $8)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Birthdate, c.IsFreeService, c.Notes,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}

	return nil
}

// UpdateClient overwrites the editable fields of a client
func (r *Repository) UpdateClient(ctx context.Context, c *models.Client) error {
	query := `
		UPDATE clients
		SET name = $3, email = $4, phone = $5, birthdate = NULLIF($6, '')::date,
		    is_free_service = $7, notes = $8
		WHERE user_id = $1 AND id::text = $2
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.OwnerID, c.ID, c.Name, c.Email, c.Phone, c.Birthdate, c.IsFreeService, c.Notes,
	).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return gateway.ErrNotFound
		}
		return fmt.Errorf("failed to update client: %w", err)
	}

	return nil
}

// DeleteClient removes a client; flights and payments cascade
func (r *Repository) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE user_id = $1 AND id::text = $2`, ownerID, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// --- Flight Operations ---

// ListFlights returns the owner's flights ordered by date with the client joined
func (r *Repository) ListFlights(ctx context.Context, ownerID string) ([]models.FlightRecord, error) {
	query := `
		SELECT f.id::text, f.user_id::text, f.client_id::text, f.airline, f.ticket_number,
		       f.date, f.status, f.created_at, c.name, c.is_free_service
		FROM flights f
		LEFT JOIN clients c ON c.id = f.client_id AND c.user_id = f.user_id
		WHERE f.user_id = $1
		ORDER BY f.date ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	flights := []models.FlightRecord{}
	for rows.Next() {
		var row flightRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}

	return flights, nil
}

// InsertFlight stores a new flight
func (r *Repository) InsertFlight(ctx context.Context, f *models.Flight) error {
	query := `
		INSERT INTO flights (id, user_id, client_id, airline, ticket_number, date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		f.ID, f.OwnerID, f.ClientID, f.Airline, f.TicketNumber, f.Date, string(f.Status),
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert flight: %w", err)
	}

	return nil
}

// --- Payment Operations ---

// ListPayments returns the owner's payments, most recent first
func (r *Repository) ListPayments(ctx context.Context, ownerID string) ([]models.Payment, error) {
	query := `
		SELECT id::text, user_id::text, client_id::text, COALESCE(flight_id::text, ''),
		       amount, date, method, status, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var row paymentRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payments: %w", err)
	}

	return payments, nil
}

// InsertPayment stores a ledger entry
func (r *Repository) InsertPayment(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (id, user_id, client_id, flight_id, amount, date, method, status)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.ClientID, p.FlightID, p.Amount, p.Date, string(p.Method), string(p.Status),
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

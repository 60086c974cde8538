// Package gateway defines the record and authentication boundaries the
// service talks to. Every call takes a context and may fail; failures are
// reported once and never retried.
package gateway

import (
	"context"
	"errors"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionExpired     = errors.New("session expired")
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Records stores clients, flights and payments scoped to an owning user
type Records interface {
	ListClients(ctx context.Context, ownerID string) ([]models.Client, error)
	GetClient(ctx context.Context, ownerID, clientID string) (*models.Client, error)
	InsertClient(ctx context.Context, client *models.Client) error
	UpdateClient(ctx context.Context, client *models.Client) error
	// DeleteClient also removes the client's flights and payments
	DeleteClient(ctx context.Context, ownerID, clientID string) error

	// ListFlights returns flights joined with their client's name and free-service flag
	ListFlights(ctx context.Context, ownerID string) ([]models.FlightRecord, error)
	InsertFlight(ctx context.Context, flight *models.Flight) error

	ListPayments(ctx context.Context, ownerID string) ([]models.Payment, error)
	InsertPayment(ctx context.Context, payment *models.Payment) error

	Ping(ctx context.Context) error
}

// Authenticator issues and resolves login sessions
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.AuthSession, *models.User, error)
	SignUp(ctx context.Context, email, password, name string) (*models.AuthSession, *models.User, error)
	SignOut(ctx context.Context, token string) error
	// CurrentUser resolves a token; unknown or expired tokens yield ErrInvalidCredentials or ErrSessionExpired
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// CheckPassword enforces the password policy shared by every Authenticator
func CheckPassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

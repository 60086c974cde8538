package database

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// birthdateLayout is the wire form of a client's birthdate
const birthdateLayout = "2006-01-02"

// clientRow mirrors a clients row
type clientRow struct {
	ID            string
	UserID        string
	Name          string
	Email         string
	Phone         string
	Birthdate     *time.Time
	IsFreeService bool
	Notes         string
	CreatedAt     time.Time
}

func (r *clientRow) fields() []any {
	return []any{
		&r.ID, &r.UserID, &r.Name, &r.Email, &r.Phone,
		&r.Birthdate, &r.IsFreeService, &r.Notes, &r.CreatedAt,
	}
}

func (r *clientRow) toModel() models.Client {
	c := models.Client{
		ID:            r.ID,
		OwnerID:       r.UserID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		IsFreeService: r.IsFreeService,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
	if r.Birthdate != nil {
		c.Birthdate = r.Birthdate.Format(birthdateLayout)
	}
	return c
}

// flightRow mirrors a flights row joined with its client
type flightRow struct {
	ID                string
	UserID            string
	ClientID          string
	Airline           string
	TicketNumber      string
	Date              time.Time
	Status            string
	CreatedAt         time.Time
	ClientName        *string
	ClientFreeService *bool
}

func (r *flightRow) fields() []any {
	return []any{
		&r.ID, &r.UserID, &r.ClientID, &r.Airline, &r.TicketNumber,
		&r.Date, &r.Status, &r.CreatedAt, &r.ClientName, &r.ClientFreeService,
	}
}

func (r *flightRow) toModel() models.FlightRecord {
	rec := models.FlightRecord{
		Flight: models.Flight{
			ID:           r.ID,
			OwnerID:      r.UserID,
			ClientID:     r.ClientID,
			Date:         r.Date,
			Airline:      r.Airline,
			TicketNumber: r.TicketNumber,
			Status:       models.FlightStatus(r.Status),
			CreatedAt:    r.CreatedAt,
		},
	}
	if r.ClientName != nil {
		rec.ClientName = *r.ClientName
		rec.ClientResolved = true
	}
	if r.ClientFreeService != nil {
		rec.ClientFreeService = *r.ClientFreeService
	}
	return rec
}

// paymentRow mirrors a payments row
type paymentRow struct {
	ID        string
	UserID    string
	ClientID  string
	FlightID  string
	Amount    decimal.Decimal
	Date      time.Time
	Method    string
	Status    string
	CreatedAt time.Time
}

func (r *paymentRow) fields() []any {
	return []any{
		&r.ID, &r.UserID, &r.ClientID, &r.FlightID, &r.Amount,
		&r.Date, &r.Method, &r.Status, &r.CreatedAt,
	}
}

func (r *paymentRow) toModel() models.Payment {
	return models.Payment{
		ID:        r.ID,
		OwnerID:   r.UserID,
		ClientID:  r.ClientID,
		FlightID:  r.FlightID,
		Amount:    r.Amount,
		Date:      r.Date,
		Method:    models.PaymentMethod(r.Method),
		Status:    models.PaymentStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

package models

import "github.com/shopspring/decimal"

// ClientInput is the create/update payload for a client
type ClientInput struct {
	Name          string `json:"name" validate:"required,notblank"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Birthdate     string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	IsFreeService bool   `json:"isFreeService"`
	Notes         string `json:"notes"`
}

// CreateFlightRequest represents a request to record a new flight
type CreateFlightRequest struct {
	ClientID     string `json:"clientId" validate:"required"`
	Airline      string `json:"airline" validate:"required,notblank"`
	TicketNumber string `json:"ticketNumber"`
	Date         string `json:"date" validate:"required"`
	Status       string `json:"status" validate:"required,flightstatus"`
}

// RecordPaymentRequest represents a payment entered against a client
type RecordPaymentRequest struct {
	FlightID string          `json:"flightId"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Method   string          `json:"method" validate:"required,oneof=cash card bank_transfer other"`
	Status   string          `json:"status" validate:"omitempty,oneof=paid unpaid"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest represents a new operator account
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

// AuthResponse is returned after a successful sign in or sign up
type AuthResponse struct {
	Session *AuthSession `json:"session"`
	User    *User        `json:"user"`
}

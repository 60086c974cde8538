package models

import "time"

// Client represents a customer the operator books flights for
type Client struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"-"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone"`
	Birthdate     string    `json:"birthdate"`
	IsFreeService bool      `json:"isFreeService"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ClientView is a client annotated with derived state
type ClientView struct {
	Client
	Initials           string        `json:"initials"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	HasUpcomingFlights bool          `json:"hasUpcomingFlights"`
}

// ClientOption is the reduced client shape used by pickers
type ClientOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

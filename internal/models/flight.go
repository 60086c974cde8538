package models

import (
	"fmt"
	"strings"
	"time"
)

// UnknownClientName is shown for flights whose client can no longer be resolved
const UnknownClientName = "Unknown Client"

// Flight represents a flight booked on behalf of a client
type Flight struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"-"`
	ClientID     string       `json:"clientId"`
	Date         time.Time    `json:"date"`
	Airline      string       `json:"airline"`
	TicketNumber string       `json:"ticketNumber"`
	Status       FlightStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// FlightRecord is a flight joined with the owning client's name and free-service flag
type FlightRecord struct {
	Flight
	ClientName        string `json:"clientName"`
	ClientFreeService bool   `json:"clientIsFreeService"`
	ClientResolved    bool   `json:"-"`
}

// DisplayName returns the client name or the unknown-client sentinel
func (r FlightRecord) DisplayName() string {
	if !r.ClientResolved || strings.TrimSpace(r.ClientName) == "" {
		return UnknownClientName
	}
	return r.ClientName
}

// FlightView is a flight annotated for display
type FlightView struct {
	FlightRecord
	PaymentStatus PaymentStatus  `json:"paymentStatus"`
	Display       Classification `json:"display"`
}

type FlightStatus string

const (
	FlightStatusUpcoming    FlightStatus = "upcoming"
	FlightStatusDelayed     FlightStatus = "delayed"
	FlightStatusRescheduled FlightStatus = "rescheduled"
	FlightStatusCompleted   FlightStatus = "completed"
	FlightStatusCanceled    FlightStatus = "canceled"
)

// FlightStatuses lists the canonical vocabulary in display order
var FlightStatuses = []FlightStatus{
	FlightStatusUpcoming,
	FlightStatusDelayed,
	FlightStatusRescheduled,
	FlightStatusCompleted,
	FlightStatusCanceled,
}

// flightStatusAliases translates the alternate vocabulary onto canonical values.
var flightStatusAliases = map[string]FlightStatus{
	"happened":  FlightStatusCompleted,
	"cancelled": FlightStatusCanceled,
}

// Valid reports whether s is a canonical status
func (s FlightStatus) Valid() bool {
	for _, known := range FlightStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseFlightStatus accepts canonical values and known aliases, case-insensitively.
func ParseFlightStatus(raw string) (FlightStatus, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s := FlightStatus(v); s.Valid() {
		return s, nil
	}
	if s, ok := flightStatusAliases[v]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown flight status %q", raw)
}

// StatusCategory groups flight statuses for display and filtering
type StatusCategory string

const (
	CategoryUpcoming  StatusCategory = "upcoming"
	CategoryCompleted StatusCategory = "completed"
	CategoryCanceled  StatusCategory = "canceled"
	CategoryUnknown   StatusCategory = "unknown"
)

type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityWarning     Severity = "warning"
	SeveritySuccess     Severity = "success"
	SeverityDestructive Severity = "destructive"
	SeverityNeutral     Severity = "neutral"
)

// Classification is the display category of a flight status
type Classification struct {
	Category   StatusCategory `json:"category"`
	Severity   Severity       `json:"severity"`
	ColorClass string         `json:"colorClass"`
	Label      string         `json:"label"`
}

// Package stats computes the dashboard summary.
package stats

import (
	"sort"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// DefaultPreviewSize is the number of upcoming flights shown on the dashboard
const DefaultPreviewSize = 5

// Summary holds the dashboard counters
type Summary struct {
	TotalClients     int `json:"totalClients"`
	UpcomingFlights  int `json:"upcomingFlights"`
	CompletedFlights int `json:"completedFlights"`
	UnpaidPayments   int `json:"unpaidPayments"`
}

// Dashboard is the summary plus the lists shown beneath it
type Dashboard struct {
	Stats           Summary             `json:"stats"`
	UpcomingPreview []models.FlightView `json:"upcomingFlights"`
	UnpaidClients   []models.ClientView `json:"unpaidClients"`
}

// CountsAsUpcoming reports whether a flight is counted as upcoming on the dashboard.
// Rescheduled flights are not counted.
func CountsAsUpcoming(status models.FlightStatus) bool {
	s, err := models.ParseFlightStatus(string(status))
	return err == nil && (s == models.FlightStatusUpcoming || s == models.FlightStatusDelayed)
}

// CountsAsCompleted reports whether a flight is counted as completed on the dashboard.
func CountsAsCompleted(status models.FlightStatus) bool {
	s, err := models.ParseFlightStatus(string(status))
	return err == nil && s == models.FlightStatusCompleted
}

// IsUnpaid reports whether a client counts towards unpaid payments
func IsUnpaid(c models.ClientView) bool {
	return !c.IsFreeService && c.PaymentStatus == models.PaymentStatusUnpaid
}

// Summarize counts over payment-annotated clients and flights
func Summarize(clients []models.ClientView, flights []models.FlightView) Summary {
	s := Summary{TotalClients: len(clients)}
	for _, f := range flights {
		switch {
		case CountsAsUpcoming(f.Status):
			s.UpcomingFlights++
		case CountsAsCompleted(f.Status):
			s.CompletedFlights++
		}
	}
	for _, c := range clients {
		if IsUnpaid(c) {
			s.UnpaidPayments++
		}
	}
	return s
}

// Build assembles the dashboard. Upcoming flights are ordered by date and
// capped at previewSize; a non-positive size uses DefaultPreviewSize.
func Build(clients []models.ClientView, flights []models.FlightView, previewSize int) *Dashboard {
	if previewSize <= 0 {
		previewSize = DefaultPreviewSize
	}

	upcoming := make([]models.FlightView, 0, previewSize)
	for _, f := range flights {
		if CountsAsUpcoming(f.Status) {
			upcoming = append(upcoming, f)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	if len(upcoming) > previewSize {
		upcoming = upcoming[:previewSize]
	}

	unpaid := make([]models.ClientView, 0)
	for _, c := range clients {
		if IsUnpaid(c) {
			unpaid = append(unpaid, c)
		}
	}

	return &Dashboard{
		Stats:           Summarize(clients, flights),
		UpcomingPreview: upcoming,
		UnpaidClients:   unpaid,
	}
}

package derive

import (
	"fmt"
	"sort"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/google/uuid"
)

// timelineNamespace seeds deterministic IDs for derived timeline entries.
var timelineNamespace = uuid.MustParse("6f1c2a52-3b8e-4c1d-9a57-0d4b8f7e2c10")

// Timeline derives a client's activity log from its records, newest first.
// Entries are rebuilt on every read; nothing here is persisted.
func Timeline(client *models.Client, flights []models.Flight, payments []models.Payment) []models.ActivityLog {
	var entries []models.ActivityLog

	for _, f := range flights {
		if f.ClientID != client.ID {
			continue
		}
		booked, err := models.NewActivity(
			entryID(f.ID, models.ActivityFlightBooked),
			client.ID,
			fmt.Sprintf("Flight with %s booked", f.Airline),
			models.FlightBooked{FlightID: f.ID, Airline: f.Airline, FlightDate: f.Date},
			f.CreatedAt,
		)
		if err == nil {
			entries = append(entries, *booked)
		}

		var follow *models.ActivityLog
		switch f.Status {
		case models.FlightStatusCanceled:
			follow, err = models.NewActivity(
				entryID(f.ID, models.ActivityFlightCanceled),
				client.ID,
				fmt.Sprintf("Flight with %s canceled", f.Airline),
				models.FlightCanceled{FlightID: f.ID, Airline: f.Airline},
				f.CreatedAt,
			)
		case models.FlightStatusRescheduled, models.FlightStatusDelayed:
			follow, err = models.NewActivity(
				entryID(f.ID, models.ActivityFlightRescheduled),
				client.ID,
				fmt.Sprintf("Flight with %s %s", f.Airline, f.Status),
				models.FlightRescheduled{FlightID: f.ID, Airline: f.Airline, FlightDate: f.Date, Status: f.Status},
				f.CreatedAt,
			)
		}
		if err == nil && follow != nil {
			entries = append(entries, *follow)
		}
	}

	for _, p := range payments {
		if p.ClientID != client.ID || p.Status != models.PaymentStatusPaid {
			continue
		}
		received, err := models.NewActivity(
			entryID(p.ID, models.ActivityPaymentReceived),
			client.ID,
			fmt.Sprintf("Payment of %s received", FormatCurrency(p.Amount)),
			models.PaymentReceived{PaymentID: p.ID, Amount: p.Amount, Method: p.Method},
			p.Date,
		)
		if err == nil {
			entries = append(entries, *received)
		}
	}

	if client.IsFreeService {
		free, err := models.NewActivity(
			entryID(client.ID, models.ActivityMarkedFreeService),
			client.ID,
			"Marked as free service",
			models.MarkedFreeService{},
			client.CreatedAt,
		)
		if err == nil {
			entries = append(entries, *free)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

func entryID(sourceID string, t models.ActivityType) string {
	return uuid.NewSHA1(timelineNamespace, []byte(sourceID+"/"+string(t))).String()
}

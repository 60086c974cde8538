// Package derive computes display state from stored records.
package derive

import "github.com/cx-tal-miterani/travel-desk/internal/models"

// EffectivePaymentStatus returns the payment status shown for a client.
// Free service overrides everything; without a payment the client is unpaid.
func EffectivePaymentStatus(client *models.Client, payment *models.Payment) models.PaymentStatus {
	if client != nil && client.IsFreeService {
		return models.PaymentStatusFreeService
	}
	if payment == nil || !payment.Status.Recordable() {
		return models.PaymentStatusUnpaid
	}
	return payment.Status
}

// LatestPayment returns the most recent payment accepted by match, or nil.
func LatestPayment(payments []models.Payment, match func(*models.Payment) bool) *models.Payment {
	var latest *models.Payment
	for i := range payments {
		p := &payments[i]
		if match != nil && !match(p) {
			continue
		}
		if latest == nil || p.After(latest) {
			latest = p
		}
	}
	return latest
}

// ForClient matches payments recorded against the client.
func ForClient(clientID string) func(*models.Payment) bool {
	return func(p *models.Payment) bool { return p.ClientID == clientID }
}

// ForFlight matches payments recorded against the flight.
func ForFlight(flightID string) func(*models.Payment) bool {
	return func(p *models.Payment) bool { return p.FlightID != "" && p.FlightID == flightID }
}

var classifications = map[models.FlightStatus]models.Classification{
	models.FlightStatusUpcoming: {
		Category:   models.CategoryUpcoming,
		Severity:   models.SeverityInfo,
		ColorClass: "bg-blue-50 text-blue-700 border-blue-200",
		Label:      "Upcoming",
	},
	models.FlightStatusRescheduled: {
		Category:   models.CategoryUpcoming,
		Severity:   models.SeverityInfo,
		ColorClass: "bg-amber-50 text-amber-700 border-amber-200",
		Label:      "Rescheduled",
	},
	models.FlightStatusDelayed: {
		Category:   models.CategoryUpcoming,
		Severity:   models.SeverityWarning,
		ColorClass: "bg-amber-50 text-amber-700 border-amber-200",
		Label:      "Delayed",
	},
	models.FlightStatusCompleted: {
		Category:   models.CategoryCompleted,
		Severity:   models.SeveritySuccess,
		ColorClass: "bg-green-50 text-green-700 border-green-200",
		Label:      "Completed",
	},
	models.FlightStatusCanceled: {
		Category:   models.CategoryCanceled,
		Severity:   models.SeverityDestructive,
		ColorClass: "bg-red-50 text-red-700 border-red-200",
		Label:      "Canceled",
	},
}

// ClassifyFlightStatus maps a stored status to its display category.
// Aliases are translated first; anything unrecognised is classified unknown.
func ClassifyFlightStatus(status models.FlightStatus) models.Classification {
	if s, err := models.ParseFlightStatus(string(status)); err == nil {
		return classifications[s]
	}
	return models.Classification{
		Category:   models.CategoryUnknown,
		Severity:   models.SeverityNeutral,
		ColorClass: "bg-gray-50 text-gray-700 border-gray-200",
		Label:      string(status),
	}
}

// IsUpcoming reports whether the flight still lies ahead (upcoming, delayed or rescheduled).
func IsUpcoming(status models.FlightStatus) bool {
	return ClassifyFlightStatus(status).Category == models.CategoryUpcoming
}

// PaymentStatusColor returns the badge classes for a payment status
func PaymentStatusColor(status models.PaymentStatus) string {
	switch status {
	case models.PaymentStatusPaid:
		return "bg-green-50 text-green-700 border-green-200"
	case models.PaymentStatusUnpaid:
		return "bg-red-50 text-red-700 border-red-200"
	case models.PaymentStatusFreeService:
		return "bg-purple-50 text-purple-700 border-purple-200"
	default:
		return "bg-gray-50 text-gray-700 border-gray-200"
	}
}

package filter

import (
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// Client toggle names
const (
	ToggleUnpaid      = "unpaid"
	ToggleFreeService = "freeService"
	ToggleHasUpcoming = "hasUpcoming"
)

// ClientToggles is the single toggle group of the clients list
func ClientToggles() *Group[models.ClientView] {
	return NewGroup("client",
		Toggle[models.ClientView]{
			Name:    ToggleUnpaid,
			Aliases: []string{"showUnpaid"},
			Match: func(c models.ClientView) bool {
				return c.PaymentStatus == models.PaymentStatusUnpaid
			},
		},
		Toggle[models.ClientView]{
			Name:    ToggleFreeService,
			Aliases: []string{"showFreeService", "free"},
			Match: func(c models.ClientView) bool {
				return c.IsFreeService
			},
		},
		Toggle[models.ClientView]{
			Name:    ToggleHasUpcoming,
			Aliases: []string{"showWithUpcomingFlights", "upcoming"},
			Match: func(c models.ClientView) bool {
				return c.HasUpcomingFlights
			},
		},
	)
}

// NewClientFilter searches name and phone and applies the client toggles.
func NewClientFilter(query string, toggles []string) (*Filter[models.ClientView], error) {
	group := ClientToggles()
	if err := group.Enable(toggles...); err != nil {
		return nil, err
	}
	return New(query, func(c models.ClientView) []string {
		return []string{c.Name, c.Phone}
	}, group), nil
}

// FlightStatusToggles has one toggle per canonical flight status
func FlightStatusToggles() *Group[models.FlightView] {
	toggles := make([]Toggle[models.FlightView], 0, len(models.FlightStatuses))
	for _, s := range models.FlightStatuses {
		status := s
		t := Toggle[models.FlightView]{
			Name: string(status),
			Match: func(f models.FlightView) bool {
				parsed, err := models.ParseFlightStatus(string(f.Status))
				return err == nil && parsed == status
			},
		}
		if status == models.FlightStatusCompleted {
			t.Aliases = []string{"happened"}
		}
		toggles = append(toggles, t)
	}
	return NewGroup("flight status", toggles...)
}

// FlightPaymentToggles filters flights by their effective payment status
func FlightPaymentToggles() *Group[models.FlightView] {
	byStatus := func(s models.PaymentStatus) Predicate[models.FlightView] {
		return func(f models.FlightView) bool { return f.PaymentStatus == s }
	}
	return NewGroup("payment",
		Toggle[models.FlightView]{Name: string(models.PaymentStatusPaid), Match: byStatus(models.PaymentStatusPaid)},
		Toggle[models.FlightView]{Name: string(models.PaymentStatusUnpaid), Match: byStatus(models.PaymentStatusUnpaid)},
		Toggle[models.FlightView]{Name: string(models.PaymentStatusFreeService), Aliases: []string{"freeService"}, Match: byStatus(models.PaymentStatusFreeService)},
	)
}

// NewFlightFilter searches client name, airline and ticket number; status and
// payment toggles form two independent groups.
func NewFlightFilter(query string, statuses, payments []string) (*Filter[models.FlightView], error) {
	statusGroup := FlightStatusToggles()
	if err := statusGroup.Enable(statuses...); err != nil {
		return nil, err
	}
	paymentGroup := FlightPaymentToggles()
	if err := paymentGroup.Enable(payments...); err != nil {
		return nil, err
	}
	return New(query, func(f models.FlightView) []string {
		return []string{f.DisplayName(), f.Airline, f.TicketNumber}
	}, statusGroup, paymentGroup), nil
}

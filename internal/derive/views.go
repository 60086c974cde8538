package derive

import "github.com/cx-tal-miterani/travel-desk/internal/models"

// ClientViews annotates clients with initials, effective payment status and
// whether any of their flights is still upcoming.
func ClientViews(clients []models.Client, flights []models.FlightRecord, payments []models.Payment) []models.ClientView {
	upcoming := make(map[string]bool)
	for _, f := range flights {
		if IsUpcoming(f.Status) {
			upcoming[f.ClientID] = true
		}
	}

	views := make([]models.ClientView, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		views = append(views, models.ClientView{
			Client:             *c,
			Initials:           Initials(c.Name),
			PaymentStatus:      EffectivePaymentStatus(c, LatestPayment(payments, ForClient(c.ID))),
			HasUpcomingFlights: upcoming[c.ID],
		})
	}
	return views
}

// FlightViews annotates flights with their display classification and the
// payment status of the most recent payment recorded against each flight.
func FlightViews(flights []models.FlightRecord, payments []models.Payment) []models.FlightView {
	views := make([]models.FlightView, 0, len(flights))
	for _, f := range flights {
		owner := &models.Client{ID: f.ClientID, IsFreeService: f.ClientFreeService}
		record := f
		record.ClientName = f.DisplayName()
		views = append(views, models.FlightView{
			FlightRecord:  record,
			PaymentStatus: EffectivePaymentStatus(owner, LatestPayment(payments, ForFlight(f.ID))),
			Display:       ClassifyFlightStatus(f.Status),
		})
	}
	return views
}

package stats

import (
	"testing"
	"time"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flight(id string, status models.FlightStatus, date time.Time) models.FlightView {
	return models.FlightView{FlightRecord: models.FlightRecord{Flight: models.Flight{ID: id, Status: status, Date: date}}}
}

func TestSummarize_FlightCounts(t *testing.T) {
	now := time.Now()
	flights := []models.FlightView{
		flight("1", models.FlightStatusUpcoming, now),
		flight("2", models.FlightStatusDelayed, now),
		flight("3", models.FlightStatusCompleted, now),
		flight("4", models.FlightStatusCanceled, now),
	}

	s := Summarize(nil, flights)
	assert.Equal(t, 2, s.UpcomingFlights)
	assert.Equal(t, 1, s.CompletedFlights)
	assert.Equal(t, 0, s.TotalClients)
}

func TestSummarize_RescheduledNotCounted(t *testing.T) {
	s := Summarize(nil, []models.FlightView{flight("1", models.FlightStatusRescheduled, time.Now())})
	assert.Zero(t, s.UpcomingFlights)
	assert.Zero(t, s.CompletedFlights)
}

func TestSummarize_NonCanonicalStoredStatus(t *testing.T) {
	now := time.Now()
	flights := []models.FlightView{
		flight("1", models.FlightStatus("Delayed"), now),
		flight("2", models.FlightStatus(" UPCOMING "), now),
		flight("3", models.FlightStatus("Happened"), now),
		flight("4", models.FlightStatus("boarding"), now),
	}

	s := Summarize(nil, flights)
	assert.Equal(t, 2, s.UpcomingFlights)
	assert.Equal(t, 1, s.CompletedFlights)

	d := Build(nil, flights, 0)
	assert.Len(t, d.UpcomingPreview, 2)
}

func TestSummarize_UnpaidPayments(t *testing.T) {
	clients := []models.ClientView{
		{Client: models.Client{ID: "a"}, PaymentStatus: models.PaymentStatusUnpaid},
		{Client: models.Client{ID: "b"}, PaymentStatus: models.PaymentStatusPaid},
		{Client: models.Client{ID: "c", IsFreeService: true}, PaymentStatus: models.PaymentStatusFreeService},
		// inconsistent annotation: the free flag still wins
		{Client: models.Client{ID: "d", IsFreeService: true}, PaymentStatus: models.PaymentStatusUnpaid},
		{Client: models.Client{ID: "e"}, PaymentStatus: models.PaymentStatusUnpaid},
	}

	s := Summarize(clients, nil)
	assert.Equal(t, 5, s.TotalClients)
	assert.Equal(t, 2, s.UnpaidPayments)
}

func TestBuild(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var flights []models.FlightView
	for i := 7; i >= 1; i-- {
		flights = append(flights, flight(string(rune('a'+i)), models.FlightStatusUpcoming, base.AddDate(0, 0, i)))
	}
	flights = append(flights, flight("done", models.FlightStatusCompleted, base))

	clients := []models.ClientView{
		{Client: models.Client{ID: "a"}, PaymentStatus: models.PaymentStatusUnpaid},
		{Client: models.Client{ID: "b"}, PaymentStatus: models.PaymentStatusPaid},
	}

	d := Build(clients, flights, 0)
	require.Len(t, d.UpcomingPreview, DefaultPreviewSize)
	for i := 1; i < len(d.UpcomingPreview); i++ {
		assert.True(t, d.UpcomingPreview[i-1].Date.Before(d.UpcomingPreview[i].Date))
	}
	assert.Equal(t, base.AddDate(0, 0, 1), d.UpcomingPreview[0].Date)

	require.Len(t, d.UnpaidClients, 1)
	assert.Equal(t, "a", d.UnpaidClients[0].ID)

	assert.Equal(t, 7, d.Stats.UpcomingFlights)
	assert.Equal(t, 1, d.Stats.CompletedFlights)
}

package derive

import (
	"testing"
	"time"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePaymentStatus(t *testing.T) {
	paid := &models.Payment{Status: models.PaymentStatusPaid}
	unpaid := &models.Payment{Status: models.PaymentStatusUnpaid}

	tests := []struct {
		name     string
		client   *models.Client
		payment  *models.Payment
		expected models.PaymentStatus
	}{
		{"free service without payment", &models.Client{IsFreeService: true}, nil, models.PaymentStatusFreeService},
		{"free service overrides paid", &models.Client{IsFreeService: true}, paid, models.PaymentStatusFreeService},
		{"free service overrides unpaid", &models.Client{IsFreeService: true}, unpaid, models.PaymentStatusFreeService},
		{"no payment is unpaid", &models.Client{}, nil, models.PaymentStatusUnpaid},
		{"paid payment", &models.Client{}, paid, models.PaymentStatusPaid},
		{"unpaid payment", &models.Client{}, unpaid, models.PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectivePaymentStatus(tt.client, tt.payment))
		})
	}
}

func TestLatestPayment(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: "p1", ClientID: "c1", Date: base, Status: models.PaymentStatusPaid},
		{ID: "p2", ClientID: "c1", Date: base.Add(24 * time.Hour), Status: models.PaymentStatusUnpaid},
		{ID: "p3", ClientID: "c2", Date: base.Add(48 * time.Hour), Status: models.PaymentStatusPaid},
		{ID: "p4", ClientID: "c1", Date: base.Add(24 * time.Hour), CreatedAt: base, Status: models.PaymentStatusPaid},
	}

	latest := LatestPayment(payments, ForClient("c1"))
	require.NotNil(t, latest)
	assert.Equal(t, "p4", latest.ID, "same date breaks ties on createdAt")

	assert.Nil(t, LatestPayment(payments, ForClient("missing")))
	assert.Nil(t, LatestPayment(payments, ForFlight("")))
}

func TestClassifyFlightStatus(t *testing.T) {
	tests := []struct {
		status   models.FlightStatus
		category models.StatusCategory
		severity models.Severity
	}{
		{models.FlightStatusUpcoming, models.CategoryUpcoming, models.SeverityInfo},
		{models.FlightStatusRescheduled, models.CategoryUpcoming, models.SeverityInfo},
		{models.FlightStatusDelayed, models.CategoryUpcoming, models.SeverityWarning},
		{models.FlightStatusCompleted, models.CategoryCompleted, models.SeveritySuccess},
		{"happened", models.CategoryCompleted, models.SeveritySuccess},
		{models.FlightStatusCanceled, models.CategoryCanceled, models.SeverityDestructive},
		{"boarding", models.CategoryUnknown, models.SeverityNeutral},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			c := ClassifyFlightStatus(tt.status)
			assert.Equal(t, tt.category, c.Category)
			assert.Equal(t, tt.severity, c.Severity)
			assert.NotEmpty(t, c.ColorClass)
		})
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "JS", Initials("John Smith"))
	assert.Equal(t, "M", Initials("Madonna"))
	assert.Equal(t, "", Initials(""))
	assert.Equal(t, "", Initials("   "))
	assert.Equal(t, "MJ", Initials("mary jane watson"))
	assert.Equal(t, "ÉL", Initials("élodie  laurent"))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		pattern  string
		expected string
	}{
		{"default pattern", "2024-03-05T10:30:00Z", "", "Mar 05, 2024"},
		{"date only", "1985-06-15", "MMM dd, yyyy", "Jun 15, 1985"},
		{"numeric", "2024-03-05", "dd/MM/yy", "05/03/24"},
		{"long names", "2024-03-05", "EEEE, MMMM d", "Tuesday, March 5"},
		{"time", "2024-03-05T14:07:09Z", "h:mm a", "2:07 PM"},
		{"24 hour", "2024-03-05T04:07:09Z", "HH:mm:ss", "04:07:09"},
		{"quoted literal", "2024-03-05", "'Day' d", "Day 5"},
		{"malformed input", "not-a-date", "MMM dd, yyyy", "not-a-date"},
		{"empty input", "", "MMM dd, yyyy", ""},
		{"unknown token", "2024-03-05", "QQQ", "2024-03-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDate(tt.value, tt.pattern))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(decimal.Zero))
	assert.Equal(t, "$350.00", FormatCurrency(decimal.NewFromInt(350)))
	assert.Equal(t, "$1,234.50", FormatCurrency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$1,000,000.01", FormatCurrency(decimal.RequireFromString("1000000.01")))
	assert.Equal(t, "-$12.00", FormatCurrency(decimal.NewFromInt(-12)))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "Client re...", TruncateText("Client requested window seat", 9))
	assert.Equal(t, "...", TruncateText("abc", 0))
}

func TestViews(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	clients := []models.Client{
		{ID: "a", Name: "John Smith"},
		{ID: "b", Name: "Sarah Jones"},
		{ID: "c", Name: "Michael Thompson", IsFreeService: true},
	}
	flights := []models.FlightRecord{
		{Flight: models.Flight{ID: "f1", ClientID: "a", Status: models.FlightStatusUpcoming}, ClientName: "John Smith", ClientResolved: true},
		{Flight: models.Flight{ID: "f2", ClientID: "b", Status: models.FlightStatusCompleted}, ClientName: "Sarah Jones", ClientResolved: true},
		{Flight: models.Flight{ID: "f3", ClientID: "gone", Status: models.FlightStatusCanceled}},
	}
	payments := []models.Payment{
		{ID: "p1", ClientID: "b", FlightID: "f2", Status: models.PaymentStatusPaid, Date: now},
	}

	cv := ClientViews(clients, flights, payments)
	require.Len(t, cv, 3)
	assert.Equal(t, models.PaymentStatusUnpaid, cv[0].PaymentStatus)
	assert.True(t, cv[0].HasUpcomingFlights)
	assert.Equal(t, "JS", cv[0].Initials)
	assert.Equal(t, models.PaymentStatusPaid, cv[1].PaymentStatus)
	assert.False(t, cv[1].HasUpcomingFlights)
	assert.Equal(t, models.PaymentStatusFreeService, cv[2].PaymentStatus)

	fv := FlightViews(flights, payments)
	require.Len(t, fv, 3)
	assert.Equal(t, models.PaymentStatusUnpaid, fv[0].PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, fv[1].PaymentStatus)
	assert.Equal(t, models.UnknownClientName, fv[2].ClientName)
	assert.Equal(t, models.CategoryCanceled, fv[2].Display.Category)
}

func TestTimeline(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := &models.Client{ID: "c1", Name: "John Smith", IsFreeService: true, CreatedAt: created}
	flights := []models.Flight{
		{ID: "f1", ClientID: "c1", Airline: "Delta Airlines", Date: created.AddDate(0, 2, 0), Status: models.FlightStatusUpcoming, CreatedAt: created.AddDate(0, 0, 1)},
		{ID: "f2", ClientID: "c1", Airline: "Lufthansa", Date: created.AddDate(0, 3, 0), Status: models.FlightStatusCanceled, CreatedAt: created.AddDate(0, 0, 2)},
		{ID: "f3", ClientID: "other", Airline: "KLM", Status: models.FlightStatusUpcoming, CreatedAt: created},
	}
	payments := []models.Payment{
		{ID: "p1", ClientID: "c1", Amount: decimal.NewFromInt(350), Method: models.PaymentMethodCard, Status: models.PaymentStatusPaid, Date: created.AddDate(0, 0, 3)},
		{ID: "p2", ClientID: "c1", Amount: decimal.NewFromInt(100), Method: models.PaymentMethodCash, Status: models.PaymentStatusUnpaid, Date: created.AddDate(0, 0, 4)},
	}

	entries := Timeline(client, flights, payments)
	require.Len(t, entries, 5)

	assert.Equal(t, models.ActivityPaymentReceived, entries[0].Type())
	received, ok := entries[0].Payload.(models.PaymentReceived)
	require.True(t, ok)
	assert.True(t, received.Amount.Equal(decimal.NewFromInt(350)))
	assert.Equal(t, models.PaymentMethodCard, received.Method)

	assert.Equal(t, models.ActivityMarkedFreeService, entries[len(entries)-1].Type())

	again := Timeline(client, flights, payments)
	assert.Equal(t, entries[0].ID, again[0].ID, "derived IDs are stable")
}

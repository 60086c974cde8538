package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/cx-tal-miterani/travel-desk/internal/store"
)

const owner = "operator-1"

type AdminServiceTestSuite struct {
	suite.Suite
	store *store.Store
	svc   *adminServiceImpl
	ctx   context.Context
}

func (s *AdminServiceTestSuite) SetupTest() {
	st, err := store.New(filepath.Join(s.T().TempDir(), "records.db"), time.Hour)
	s.Require().NoError(err)
	s.store = st
	s.svc = NewAdminService(st, logger.NewNop()).(*adminServiceImpl)
	s.svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	s.ctx = context.Background()
}

func (s *AdminServiceTestSuite) TearDownTest() {
	s.store.Close()
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}

func (s *AdminServiceTestSuite) createClient(name string, free bool) *models.Client {
	c, err := s.svc.CreateClient(s.ctx, owner, &models.ClientInput{Name: name, IsFreeService: free})
	s.Require().NoError(err)
	return c
}

func (s *AdminServiceTestSuite) createFlight(clientID, airline, date, status string) *models.Flight {
	f, err := s.svc.CreateFlight(s.ctx, owner, &models.CreateFlightRequest{
		ClientID: clientID, Airline: airline, TicketNumber: airline[:2] + date, Date: date, Status: status,
	})
	s.Require().NoError(err)
	return f
}

func (s *AdminServiceTestSuite) TestCreateClientValidation() {
	_, err := s.svc.CreateClient(s.ctx, owner, &models.ClientInput{Name: "   ", Email: "nope", Birthdate: "01/02/1990"})

	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "name")
	s.Contains(verr.Fields, "email")
	s.Contains(verr.Fields, "birthdate")

	clients, err := s.store.ListClients(s.ctx, owner)
	s.Require().NoError(err)
	s.Empty(clients, "nothing written on validation failure")
}

func (s *AdminServiceTestSuite) TestCreateClientTrimsAndDefaults() {
	c, err := s.svc.CreateClient(s.ctx, owner, &models.ClientInput{Name: "  John Smith ", Email: "john@example.com", Birthdate: "1985-03-15"})
	s.Require().NoError(err)
	s.Equal("John Smith", c.Name)
	s.False(c.IsFreeService)
	s.NotEmpty(c.ID)
}

func (s *AdminServiceTestSuite) TestDashboard() {
	john := s.createClient("John Smith", false)
	sarah := s.createClient("Sarah Jones", true)
	mike := s.createClient("Mike Brown", false)

	s.createFlight(john.ID, "Delta", "2024-07-01", "upcoming")
	s.createFlight(sarah.ID, "United", "2024-06-20", "delayed")
	s.createFlight(mike.ID, "American", "2024-05-01", "happened")
	s.createFlight(mike.ID, "British", "2024-08-01", "cancelled")
	s.createFlight(mike.ID, "Lufthansa", "2024-09-01", "rescheduled")

	_, err := s.svc.RecordPayment(s.ctx, owner, mike.ID, &models.RecordPaymentRequest{
		Amount: decimal.NewFromInt(300), Method: "card",
	})
	s.Require().NoError(err)

	d, err := s.svc.Dashboard(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal(3, d.Stats.TotalClients)
	s.Equal(2, d.Stats.UpcomingFlights)
	s.Equal(1, d.Stats.CompletedFlights)
	s.Equal(1, d.Stats.UnpaidPayments)

	s.Require().Len(d.UpcomingPreview, 2)
	s.Equal("United", d.UpcomingPreview[0].Airline)
	s.Require().Len(d.UnpaidClients, 1)
	s.Equal("John Smith", d.UnpaidClients[0].Name)
}

func (s *AdminServiceTestSuite) TestListClientsFilters() {
	a := s.createClient("Anna", false)
	s.createClient("Ben", false)
	s.createClient("Cleo", true)
	_, err := s.svc.RecordPayment(s.ctx, owner, a.ID, &models.RecordPaymentRequest{Amount: decimal.NewFromInt(1), Method: "cash", Status: "unpaid"})
	s.Require().NoError(err)

	list, err := s.svc.ListClients(s.ctx, owner, "", []string{"showUnpaid", "showFreeService"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"Anna", "Ben", "Cleo"}, clientNames(list.Clients))
	s.Equal([]string{"unpaid", "freeService"}, list.Toggles)

	list, err = s.svc.ListClients(s.ctx, owner, "cle", nil)
	s.Require().NoError(err)
	s.Equal([]string{"Cleo"}, clientNames(list.Clients))

	_, err = s.svc.ListClients(s.ctx, owner, "", []string{"vip"})
	var verr *ValidationError
	s.ErrorAs(err, &verr)
}

func (s *AdminServiceTestSuite) TestListFlightsFilters() {
	john := s.createClient("John Smith", false)
	sarah := s.createClient("Sarah Jones", false)
	paid := s.createFlight(john.ID, "Delta", "2024-07-01", "upcoming")
	s.createFlight(sarah.ID, "United", "2024-07-02", "upcoming")
	s.createFlight(sarah.ID, "KLM", "2024-05-02", "completed")

	_, err := s.svc.RecordPayment(s.ctx, owner, john.ID, &models.RecordPaymentRequest{
		FlightID: paid.ID, Amount: decimal.NewFromInt(450), Method: "bank_transfer",
	})
	s.Require().NoError(err)

	list, err := s.svc.ListFlights(s.ctx, owner, "", []string{"upcoming"}, []string{"unpaid"})
	s.Require().NoError(err)
	s.Require().Len(list.Flights, 1)
	s.Equal("United", list.Flights[0].Airline)
	s.Equal(models.PaymentStatusUnpaid, list.Flights[0].PaymentStatus)
	s.Equal([]string{"upcoming"}, list.Statuses)
	s.Equal([]string{"unpaid"}, list.Payments)

	list, err = s.svc.ListFlights(s.ctx, owner, "john", []string{"happened", "UPCOMING"}, nil)
	s.Require().NoError(err)
	s.Require().Len(list.Flights, 1)
	s.Equal(models.PaymentStatusPaid, list.Flights[0].PaymentStatus)
	s.Equal([]string{"upcoming", "completed"}, list.Statuses)
	s.Empty(list.Payments)
}

func (s *AdminServiceTestSuite) TestCreateFlightUnknownClient() {
	_, err := s.svc.CreateFlight(s.ctx, owner, &models.CreateFlightRequest{
		ClientID: "missing", Airline: "Delta", Date: "2024-07-01", Status: "upcoming",
	})
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "clientId")
}

func (s *AdminServiceTestSuite) TestCreateFlightValidation() {
	c := s.createClient("John", false)

	_, err := s.svc.CreateFlight(s.ctx, owner, &models.CreateFlightRequest{ClientID: c.ID, Airline: "Delta", Date: "2024-07-01", Status: "boarding"})
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "status")

	_, err = s.svc.CreateFlight(s.ctx, owner, &models.CreateFlightRequest{ClientID: c.ID, Airline: "Delta", Date: "tomorrow", Status: "upcoming"})
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "date")
}

func (s *AdminServiceTestSuite) TestCreateFlightNormalizesStatus() {
	c := s.createClient("John", false)
	f := s.createFlight(c.ID, "Delta", "2024-05-01", "Happened")
	s.Equal(models.FlightStatusCompleted, f.Status)
}

func (s *AdminServiceTestSuite) TestNewFlightForm() {
	s.createClient("zoe", false)
	s.createClient("Adam", false)
	s.createClient("mark", false)

	form, err := s.svc.NewFlightForm(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal("2024-06-01", form.Date)
	s.Equal(models.FlightStatusUpcoming, form.Status)
	s.Equal([]string{"Adam", "mark", "zoe"}, []string{form.Clients[0].Name, form.Clients[1].Name, form.Clients[2].Name})
}

func (s *AdminServiceTestSuite) TestClientDetails() {
	c := s.createClient("John Smith", false)
	other := s.createClient("Sarah", false)
	f := s.createFlight(c.ID, "Delta", "2024-07-01", "canceled")
	s.createFlight(other.ID, "United", "2024-07-01", "upcoming")
	_, err := s.svc.RecordPayment(s.ctx, owner, c.ID, &models.RecordPaymentRequest{FlightID: f.ID, Amount: decimal.NewFromInt(10), Method: "cash"})
	s.Require().NoError(err)

	details, err := s.svc.GetClientDetails(s.ctx, owner, c.ID)
	s.Require().NoError(err)
	s.Equal("JS", details.Client.Initials)
	s.Equal(models.PaymentStatusPaid, details.Client.PaymentStatus)
	s.Require().Len(details.Flights, 1)
	s.Equal(models.CategoryCanceled, details.Flights[0].Display.Category)
	s.Len(details.Payments, 1)
	s.NotEmpty(details.Timeline)

	_, err = s.svc.GetClientDetails(s.ctx, owner, "missing")
	s.ErrorIs(err, gateway.ErrNotFound)
}

func (s *AdminServiceTestSuite) TestUpdateAndDeleteClient() {
	c := s.createClient("John", false)

	updated, err := s.svc.UpdateClient(s.ctx, owner, c.ID, &models.ClientInput{Name: "John Smith", IsFreeService: true})
	s.Require().NoError(err)
	s.True(updated.IsFreeService)

	_, err = s.svc.UpdateClient(s.ctx, owner, "missing", &models.ClientInput{Name: "X"})
	s.ErrorIs(err, gateway.ErrNotFound)

	s.Require().NoError(s.svc.DeleteClient(s.ctx, owner, c.ID))
	s.ErrorIs(s.svc.DeleteClient(s.ctx, owner, c.ID), gateway.ErrNotFound)
}

func (s *AdminServiceTestSuite) TestRecordPaymentValidation() {
	c := s.createClient("John", false)
	other := s.createClient("Sarah", false)
	f := s.createFlight(other.ID, "Delta", "2024-07-01", "upcoming")

	tests := []struct {
		name  string
		req   models.RecordPaymentRequest
		field string
	}{
		{"zero amount", models.RecordPaymentRequest{Amount: decimal.Zero, Method: "cash"}, "amount"},
		{"negative amount", models.RecordPaymentRequest{Amount: decimal.NewFromInt(-5), Method: "cash"}, "amount"},
		{"unknown method", models.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cheque"}, "method"},
		{"free is not recordable", models.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cash", Status: "free"}, "status"},
		{"flight of another client", models.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cash", FlightID: f.ID}, "flightId"},
		{"bad date", models.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cash", Date: "yesterday"}, "date"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := tt.req
			_, err := s.svc.RecordPayment(s.ctx, owner, c.ID, &req)
			var verr *ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Contains(verr.Fields, tt.field)
		})
	}

	_, err := s.svc.RecordPayment(s.ctx, owner, "missing", &models.RecordPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cash"})
	s.ErrorIs(err, gateway.ErrNotFound)
}

func clientNames(views []models.ClientView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Name
	}
	return out
}

// slowRecords counts inserts and holds them until release is closed
type slowRecords struct {
	gateway.Records
	inserts atomic.Int32
	release chan struct{}
}

func (r *slowRecords) InsertClient(ctx context.Context, c *models.Client) error {
	r.inserts.Add(1)
	select {
	case <-r.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestCreateClient_DuplicateSubmissionsShareOneInsert(t *testing.T) {
	records := &slowRecords{release: make(chan struct{})}
	svc := NewAdminService(records, logger.NewNop())

	const n = 5
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := svc.CreateClient(context.Background(), owner, &models.ClientInput{Name: "John"})
			if err == nil {
				ids[i] = c.ID
			}
		}(i)
	}

	require.Eventually(t, func() bool { return records.inserts.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(records.release)
	wg.Wait()

	assert.Equal(t, int32(1), records.inserts.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestCreateClient_AbandonedSubmissionDoesNotFailDuplicate(t *testing.T) {
	records := &slowRecords{release: make(chan struct{})}
	svc := NewAdminService(records, logger.NewNop())
	input := &models.ClientInput{Name: "John"}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.CreateClient(ctxA, owner, input)
		errA <- err
	}()
	require.Eventually(t, func() bool { return records.inserts.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		client *models.Client
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		c, err := svc.CreateClient(context.Background(), owner, input)
		resB <- result{c, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(records.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "John", b.client.Name)
	assert.Equal(t, int32(1), records.inserts.Load())
}

// failingRecords fails every listing
type failingRecords struct {
	gateway.Records
}

func (failingRecords) ListClients(ctx context.Context, ownerID string) ([]models.Client, error) {
	return nil, errors.New("connection refused")
}

func TestDashboard_GatewayFailure(t *testing.T) {
	svc := NewAdminService(failingRecords{}, logger.NewNop())
	_, err := svc.Dashboard(context.Background(), owner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load clients")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "email": "must be a valid email address"}}
	assert.Equal(t, "validation failed: email: must be a valid email address, name: is required", err.Error())
}

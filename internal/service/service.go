package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/cx-tal-miterani/travel-desk/internal/derive"
	"github.com/cx-tal-miterani/travel-desk/internal/filter"
	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/cx-tal-miterani/travel-desk/internal/stats"
)

// formDateLayout is the date format used by form defaults
const formDateLayout = "2006-01-02"

// sharedWriteTimeout bounds a collapsed write, which outlives any single caller
const sharedWriteTimeout = 10 * time.Second

// ClientList is a filtered client list
type ClientList struct {
	Clients []models.ClientView `json:"clients"`
	Query   string              `json:"query"`
	Toggles []string            `json:"toggles"`
}

// FlightList is a filtered flight list
type FlightList struct {
	Flights  []models.FlightView `json:"flights"`
	Query    string              `json:"query"`
	Statuses []string            `json:"statuses"`
	Payments []string            `json:"payments"`
}

// ClientDetails is everything shown on a client's page
type ClientDetails struct {
	Client   models.ClientView    `json:"client"`
	Flights  []models.FlightView  `json:"flights"`
	Payments []models.Payment     `json:"payments"`
	Timeline []models.ActivityLog `json:"timeline"`
}

// FlightForm holds the defaults of the new flight form
type FlightForm struct {
	Date     string                `json:"date"`
	Status   models.FlightStatus   `json:"status"`
	Statuses []models.FlightStatus `json:"statuses"`
	Clients  []models.ClientOption `json:"clients"`
}

// AdminService defines the operator-facing operations. Every call is scoped to ownerID.
type AdminService interface {
	Dashboard(ctx context.Context, ownerID string) (*stats.Dashboard, error)

	ListClients(ctx context.Context, ownerID, query string, toggles []string) (*ClientList, error)
	GetClientDetails(ctx context.Context, ownerID, clientID string) (*ClientDetails, error)
	CreateClient(ctx context.Context, ownerID string, input *models.ClientInput) (*models.Client, error)
	UpdateClient(ctx context.Context, ownerID, clientID string, input *models.ClientInput) (*models.Client, error)
	DeleteClient(ctx context.Context, ownerID, clientID string) error

	ListFlights(ctx context.Context, ownerID, query string, statuses, payments []string) (*FlightList, error)
	NewFlightForm(ctx context.Context, ownerID string) (*FlightForm, error)
	CreateFlight(ctx context.Context, ownerID string, req *models.CreateFlightRequest) (*models.Flight, error)

	RecordPayment(ctx context.Context, ownerID, clientID string, req *models.RecordPaymentRequest) (*models.Payment, error)
}

// adminServiceImpl implements AdminService
type adminServiceImpl struct {
	records     gateway.Records
	log         logger.Logger
	validate    *validator.Validate
	inflight    singleflight.Group
	now         func() time.Time
	previewSize int
	sharedWrite time.Duration
}

// NewAdminService creates a new AdminService
func NewAdminService(records gateway.Records, log logger.Logger) AdminService {
	return &adminServiceImpl{
		records:     records,
		log:         log,
		validate:    newValidator(),
		now:         time.Now,
		previewSize: stats.DefaultPreviewSize,
		sharedWrite: sharedWriteTimeout,
	}
}

// snapshot loads every record of the owner
func (s *adminServiceImpl) snapshot(ctx context.Context, ownerID string) ([]models.Client, []models.FlightRecord, []models.Payment, error) {
	clients, err := s.records.ListClients(ctx, ownerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load clients: %w", err)
	}
	flights, err := s.records.ListFlights(ctx, ownerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load flights: %w", err)
	}
	payments, err := s.records.ListPayments(ctx, ownerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load payments: %w", err)
	}
	return clients, flights, payments, nil
}

func (s *adminServiceImpl) Dashboard(ctx context.Context, ownerID string) (*stats.Dashboard, error) {
	clients, flights, payments, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return stats.Build(
		derive.ClientViews(clients, flights, payments),
		derive.FlightViews(flights, payments),
		s.previewSize,
	), nil
}

// --- Clients ---

func (s *adminServiceImpl) ListClients(ctx context.Context, ownerID, query string, toggles []string) (*ClientList, error) {
	f, err := filter.NewClientFilter(query, toggles)
	if err != nil {
		return nil, fieldError("toggle", err.Error())
	}

	clients, flights, payments, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	groups := f.Groups()
	return &ClientList{
		Clients: f.Apply(derive.ClientViews(clients, flights, payments)),
		Query:   f.Query(),
		Toggles: nonNil(groups[0].Active()),
	}, nil
}

func (s *adminServiceImpl) GetClientDetails(ctx context.Context, ownerID, clientID string) (*ClientDetails, error) {
	client, err := s.records.GetClient(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	_, allFlights, allPayments, err := s.snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	flights := make([]models.FlightRecord, 0)
	plain := make([]models.Flight, 0)
	for _, f := range allFlights {
		if f.ClientID == client.ID {
			flights = append(flights, f)
			plain = append(plain, f.Flight)
		}
	}
	payments := make([]models.Payment, 0)
	for _, p := range allPayments {
		if p.ClientID == client.ID {
			payments = append(payments, p)
		}
	}

	timeline := derive.Timeline(client, plain, payments)
	if timeline == nil {
		timeline = []models.ActivityLog{}
	}
	return &ClientDetails{
		Client:   derive.ClientViews([]models.Client{*client}, flights, payments)[0],
		Flights:  derive.FlightViews(flights, payments),
		Payments: payments,
		Timeline: timeline,
	}, nil
}

func (s *adminServiceImpl) CreateClient(ctx context.Context, ownerID string, input *models.ClientInput) (*models.Client, error) {
	if err := check(s.validate, input); err != nil {
		return nil, err
	}

	v, err := s.once(ctx, ownerID, "client", input, func(ctx context.Context) (interface{}, error) {
		client := clientFromInput(input)
		client.ID = uuid.New().String()
		client.OwnerID = ownerID
		client.CreatedAt = s.now().UTC()
		if err := s.records.InsertClient(ctx, client); err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		s.log.Info("client created", "owner", ownerID, "client", client.ID)
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Client), nil
}

// UpdateClient overwrites the client with input. Concurrent edits: last write wins.
func (s *adminServiceImpl) UpdateClient(ctx context.Context, ownerID, clientID string, input *models.ClientInput) (*models.Client, error) {
	if err := check(s.validate, input); err != nil {
		return nil, err
	}

	client := clientFromInput(input)
	client.ID = clientID
	client.OwnerID = ownerID
	if err := s.records.UpdateClient(ctx, client); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *adminServiceImpl) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	if err := s.records.DeleteClient(ctx, ownerID, clientID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	s.log.Info("client deleted", "owner", ownerID, "client", clientID)
	return nil
}

func clientFromInput(input *models.ClientInput) *models.Client {
	return &models.Client{
		Name:          strings.TrimSpace(input.Name),
		Email:         strings.TrimSpace(input.Email),
		Phone:         strings.TrimSpace(input.Phone),
		Birthdate:     strings.TrimSpace(input.Birthdate),
		IsFreeService: input.IsFreeService,
		Notes:         input.Notes,
	}
}

// --- Flights ---

func (s *adminServiceImpl) ListFlights(ctx context.Context, ownerID, query string, statuses, payments []string) (*FlightList, error) {
	f, err := filter.NewFlightFilter(query, statuses, payments)
	if err != nil {
		return nil, fieldError("toggle", err.Error())
	}

	records, err := s.records.ListFlights(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flights: %w", err)
	}
	ledger, err := s.records.ListPayments(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	groups := f.Groups()
	return &FlightList{
		Flights:  f.Apply(derive.FlightViews(records, ledger)),
		Query:    f.Query(),
		Statuses: nonNil(groups[0].Active()),
		Payments: nonNil(groups[1].Active()),
	}, nil
}

func (s *adminServiceImpl) NewFlightForm(ctx context.Context, ownerID string) (*FlightForm, error) {
	clients, err := s.records.ListClients(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}

	options := make([]models.ClientOption, 0, len(clients))
	for _, c := range clients {
		options = append(options, models.ClientOption{ID: c.ID, Name: c.Name})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return strings.ToLower(options[i].Name) < strings.ToLower(options[j].Name)
	})

	return &FlightForm{
		Date:     s.now().Format(formDateLayout),
		Status:   models.FlightStatusUpcoming,
		Statuses: models.FlightStatuses,
		Clients:  options,
	}, nil
}

func (s *adminServiceImpl) CreateFlight(ctx context.Context, ownerID string, req *models.CreateFlightRequest) (*models.Flight, error) {
	if err := check(s.validate, req); err != nil {
		return nil, err
	}
	date, err := derive.ParseISO(req.Date)
	if err != nil {
		return nil, fieldError("date", "must be a valid date")
	}
	status, err := models.ParseFlightStatus(req.Status)
	if err != nil {
		return nil, fieldError("status", err.Error())
	}

	v, err := s.once(ctx, ownerID, "flight", req, func(ctx context.Context) (interface{}, error) {
		if _, err := s.records.GetClient(ctx, ownerID, req.ClientID); err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				return nil, fieldError("clientId", "client not found")
			}
			return nil, fmt.Errorf("failed to load client: %w", err)
		}

		flight := &models.Flight{
			ID:           uuid.New().String(),
			OwnerID:      ownerID,
			ClientID:     req.ClientID,
			Date:         date,
			Airline:      strings.TrimSpace(req.Airline),
			TicketNumber: strings.TrimSpace(req.TicketNumber),
			Status:       status,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.records.InsertFlight(ctx, flight); err != nil {
			return nil, fmt.Errorf("failed to create flight: %w", err)
		}
		s.log.Info("flight created", "owner", ownerID, "flight", flight.ID, "client", flight.ClientID)
		return flight, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Flight), nil
}

// --- Payments ---

func (s *adminServiceImpl) RecordPayment(ctx context.Context, ownerID, clientID string, req *models.RecordPaymentRequest) (*models.Payment, error) {
	if err := check(s.validate, req); err != nil {
		return nil, err
	}
	if !req.Amount.GreaterThan(decimal.Zero) {
		return nil, fieldError("amount", "must be greater than 0")
	}
	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, fieldError("method", err.Error())
	}
	status := models.PaymentStatusPaid
	if req.Status != "" {
		status = models.PaymentStatus(req.Status)
	}
	date := s.now().UTC()
	if req.Date != "" {
		if date, err = derive.ParseISO(req.Date); err != nil {
			return nil, fieldError("date", "must be a valid date")
		}
	}

	v, err := s.once(ctx, ownerID, "payment:"+clientID, req, func(ctx context.Context) (interface{}, error) {
		if _, err := s.records.GetClient(ctx, ownerID, clientID); err != nil {
			return nil, err
		}
		if req.FlightID != "" {
			if err := s.checkFlightOwner(ctx, ownerID, clientID, req.FlightID); err != nil {
				return nil, err
			}
		}

		payment := &models.Payment{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			ClientID:  clientID,
			FlightID:  req.FlightID,
			Amount:    req.Amount.Round(2),
			Date:      date,
			Method:    method,
			Status:    status,
			CreatedAt: s.now().UTC(),
		}
		if err := s.records.InsertPayment(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to record payment: %w", err)
		}
		s.log.Info("payment recorded", "owner", ownerID, "client", clientID, "amount", payment.Amount.StringFixed(2))
		return payment, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Payment), nil
}

func (s *adminServiceImpl) checkFlightOwner(ctx context.Context, ownerID, clientID, flightID string) error {
	flights, err := s.records.ListFlights(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load flights: %w", err)
	}
	for _, f := range flights {
		if f.ID == flightID {
			if f.ClientID != clientID {
				return fieldError("flightId", "flight belongs to another client")
			}
			return nil
		}
	}
	return fieldError("flightId", "flight not found")
}

// once collapses identical concurrent submissions of the same owner into a single insert.
// The insert runs on a context detached from the caller that started it, so a
// caller going away does not fail the others waiting on the same write.
func (s *adminServiceImpl) once(ctx context.Context, ownerID, kind string, payload interface{}, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	sum := sha256.Sum256(body)
	key := ownerID + ":" + kind + ":" + hex.EncodeToString(sum[:])

	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sharedWrite)
		defer cancel()
		return fn(shared)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.log.Debug("duplicate submission collapsed", "owner", ownerID, "kind", kind)
		}
		return res.Val, res.Err
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

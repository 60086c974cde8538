package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/cx-tal-miterani/travel-desk/internal/service"
	"github.com/cx-tal-miterani/travel-desk/internal/stats"
)

// MockAdminService is a mock implementation of service.AdminService
type MockAdminService struct {
	mock.Mock
}

var _ service.AdminService = (*MockAdminService)(nil)

func (m *MockAdminService) Dashboard(ctx context.Context, ownerID string) (*stats.Dashboard, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.Dashboard), args.Error(1)
}

func (m *MockAdminService) ListClients(ctx context.Context, ownerID, query string, toggles []string) (*service.ClientList, error) {
	args := m.Called(ctx, ownerID, query, toggles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClientList), args.Error(1)
}

func (m *MockAdminService) GetClientDetails(ctx context.Context, ownerID, clientID string) (*service.ClientDetails, error) {
	args := m.Called(ctx, ownerID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClientDetails), args.Error(1)
}

func (m *MockAdminService) CreateClient(ctx context.Context, ownerID string, input *models.ClientInput) (*models.Client, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockAdminService) UpdateClient(ctx context.Context, ownerID, clientID string, input *models.ClientInput) (*models.Client, error) {
	args := m.Called(ctx, ownerID, clientID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockAdminService) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	args := m.Called(ctx, ownerID, clientID)
	return args.Error(0)
}

func (m *MockAdminService) ListFlights(ctx context.Context, ownerID, query string, statuses, payments []string) (*service.FlightList, error) {
	args := m.Called(ctx, ownerID, query, statuses, payments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FlightList), args.Error(1)
}

func (m *MockAdminService) NewFlightForm(ctx context.Context, ownerID string) (*service.FlightForm, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FlightForm), args.Error(1)
}

func (m *MockAdminService) CreateFlight(ctx context.Context, ownerID string, req *models.CreateFlightRequest) (*models.Flight, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flight), args.Error(1)
}

func (m *MockAdminService) RecordPayment(ctx context.Context, ownerID, clientID string, req *models.RecordPaymentRequest) (*models.Payment, error) {
	args := m.Called(ctx, ownerID, clientID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

// MockAuthService is a mock implementation of service.AuthService
type MockAuthService struct {
	mock.Mock
}

var _ service.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthService) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

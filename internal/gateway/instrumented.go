package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/metrics"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// instrumented wraps a Records with call metrics and error logging
type instrumented struct {
	next    Records
	metrics *metrics.Metrics
	log     logger.Logger
}

// Instrument decorates records with prometheus metrics and logging
func Instrument(records Records, m *metrics.Metrics, log logger.Logger) Records {
	return &instrumented{next: records, metrics: m, log: log}
}

// track starts timing op; the returned func records the outcome
func (i *instrumented) track(op string) func(error) {
	start := time.Now()
	return func(err error) {
		i.metrics.GatewayCalls.WithLabelValues(op).Inc()
		i.metrics.GatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err == nil || errors.Is(err, ErrNotFound) {
			return
		}
		i.metrics.GatewayErrors.WithLabelValues(op).Inc()
		i.log.Warn("gateway call failed", "operation", op, "error", err)
	}
}

func (i *instrumented) ListClients(ctx context.Context, ownerID string) ([]models.Client, error) {
	done := i.track("list_clients")
	clients, err := i.next.ListClients(ctx, ownerID)
	done(err)
	return clients, err
}

func (i *instrumented) GetClient(ctx context.Context, ownerID, clientID string) (*models.Client, error) {
	done := i.track("get_client")
	client, err := i.next.GetClient(ctx, ownerID, clientID)
	done(err)
	return client, err
}

func (i *instrumented) InsertClient(ctx context.Context, client *models.Client) error {
	done := i.track("insert_client")
	err := i.next.InsertClient(ctx, client)
	done(err)
	return err
}

func (i *instrumented) UpdateClient(ctx context.Context, client *models.Client) error {
	done := i.track("update_client")
	err := i.next.UpdateClient(ctx, client)
	done(err)
	return err
}

func (i *instrumented) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	done := i.track("delete_client")
	err := i.next.DeleteClient(ctx, ownerID, clientID)
	done(err)
	return err
}

func (i *instrumented) ListFlights(ctx context.Context, ownerID string) ([]models.FlightRecord, error) {
	done := i.track("list_flights")
	flights, err := i.next.ListFlights(ctx, ownerID)
	done(err)
	return flights, err
}

func (i *instrumented) InsertFlight(ctx context.Context, flight *models.Flight) error {
	done := i.track("insert_flight")
	err := i.next.InsertFlight(ctx, flight)
	done(err)
	return err
}

func (i *instrumented) ListPayments(ctx context.Context, ownerID string) ([]models.Payment, error) {
	done := i.track("list_payments")
	payments, err := i.next.ListPayments(ctx, ownerID)
	done(err)
	return payments, err
}

func (i *instrumented) InsertPayment(ctx context.Context, payment *models.Payment) error {
	done := i.track("insert_payment")
	err := i.next.InsertPayment(ctx, payment)
	done(err)
	return err
}

func (i *instrumented) Ping(ctx context.Context) error {
	done := i.track("ping")
	err := i.next.Ping(ctx)
	done(err)
	return err
}

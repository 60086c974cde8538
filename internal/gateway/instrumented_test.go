package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/metrics"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecords fails every call with err
type stubRecords struct {
	Records
	err error
}

func (s stubRecords) GetClient(ctx context.Context, ownerID, clientID string) (*models.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Client{ID: clientID, OwnerID: ownerID}, nil
}

func (s stubRecords) Ping(ctx context.Context) error {
	return s.err
}

func TestInstrument_CountsCallsAndErrors(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	records := Instrument(stubRecords{err: errors.New("connection refused")}, m, logger.NewNop())

	require.Error(t, records.Ping(context.Background()))
	require.Error(t, records.Ping(context.Background()))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayCalls.WithLabelValues("ping")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayErrors.WithLabelValues("ping")))
}

func TestInstrument_NotFoundIsNotAnError(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	records := Instrument(stubRecords{err: ErrNotFound}, m, logger.NewNop())

	_, err := records.GetClient(context.Background(), "owner", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayCalls.WithLabelValues("get_client")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GatewayErrors.WithLabelValues("get_client")))
}

func TestInstrument_PassesResultsThrough(t *testing.T) {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	records := Instrument(stubRecords{}, m, logger.NewNop())

	client, err := records.GetClient(context.Background(), "owner", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", client.ID)
	assert.Equal(t, "owner", client.OwnerID)
}

func TestCheckPassword(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("12345"), ErrWeakPassword)
	assert.NoError(t, CheckPassword("123456"))
	assert.ErrorIs(t, CheckPassword(""), ErrWeakPassword)
}

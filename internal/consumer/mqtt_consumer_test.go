package consumer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/config"
	"github.com/tonton108/plc-dashboard/internal/domain"
	"github.com/tonton108/plc-dashboard/internal/service"
)

type stubEquipmentRepo struct{}

func (r *stubEquipmentRepo) Resolve(_ context.Context, equipmentID string) (*domain.Equipment, error) {
	if equipmentID == "PLC_001" {
		return &domain.Equipment{ID: 1, EquipmentID: "PLC_001"}, nil
	}
	return nil, fmt.Errorf("equipment %s: %w", equipmentID, domain.ErrEquipmentNotFound)
}

func (r *stubEquipmentRepo) List(_ context.Context) ([]*domain.Equipment, error) {
	return nil, nil
}

type stubMeasurementRepo struct {
	inserted []*domain.Measurement
}

func (r *stubMeasurementRepo) Insert(_ context.Context, m *domain.Measurement) (int64, error) {
	r.inserted = append(r.inserted, m)
	return int64(len(r.inserted)), nil
}

func (r *stubMeasurementRepo) ListRange(context.Context, int64, time.Time, time.Time, int) ([]*domain.Measurement, error) {
	return nil, nil
}

func (r *stubMeasurementRepo) DeleteBatchBefore(context.Context, time.Time, int) (int64, error) {
	return 0, nil
}

func (r *stubMeasurementRepo) CountBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *stubMeasurementRepo) Count(context.Context) (int64, error) {
	return 0, nil
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(context.Context, string, interface{}) error { return nil }

func newTestConsumer(measurementRepo *stubMeasurementRepo) *MQTTConsumer {
	logger := zap.NewNop()
	ingest := service.NewIngestService(&stubEquipmentRepo{}, measurementRepo, noopBroadcaster{}, nil, logger)
	cfg := config.Load()
	return NewMQTTConsumer(cfg, nil, ingest, logger)
}

func TestHandleMessage_IngestsTelemetry(t *testing.T) {
	repo := &stubMeasurementRepo{}
	c := newTestConsumer(repo)

	payload := []byte(`{"equipment_id":"PLC_001","timestamp":"2026-08-29T10:00:00Z","production_count":42}`)
	err := c.handleMessage("plc/telemetry", payload)

	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	require.NotNil(t, repo.inserted[0].ProductionCount)
	assert.Equal(t, int64(42), *repo.inserted[0].ProductionCount)
}

func TestHandleMessage_RejectsMalformedJSON(t *testing.T) {
	repo := &stubMeasurementRepo{}
	c := newTestConsumer(repo)

	err := c.handleMessage("plc/telemetry", []byte("{not json"))

	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestHandleMessage_RequiresEquipmentID(t *testing.T) {
	repo := &stubMeasurementRepo{}
	c := newTestConsumer(repo)

	err := c.handleMessage("plc/telemetry", []byte(`{"production_count":1}`))

	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestHandleMessage_UnknownEquipment(t *testing.T) {
	repo := &stubMeasurementRepo{}
	c := newTestConsumer(repo)

	err := c.handleMessage("plc/telemetry", []byte(`{"equipment_id":"PLC_404"}`))

	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryboard/internal/shared/testutil"
	"deliveryboard/pkg/contracts/domain"
)

func TestHealthServiceReadiness(t *testing.T) {
	ctx := context.Background()
	f := newBoardFixture(t, nil)
	dirs := map[domain.RecordKind]string{
		domain.KindReservation: f.resDir,
		domain.KindRequisition: f.reqDir,
	}
	hs := NewHealthService("1.2.0", "", "", f.board, dirs, func() int { return 3 }, nil)

	status := hs.ReadinessCheck(ctx)
	assert.Equal(t, "not_ready", status.Status)

	testutil.WriteReport(t, f.resDir, "ME5R.txt", testutil.ReservationReport, testutil.FixedNow)
	testutil.WriteReport(t, f.reqDir, "ME5A.txt", testutil.RequisitionReport, testutil.FixedNow)
	require.NoError(t, f.board.RefreshAll(ctx))

	status = hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", status.Status)
	ws, ok := status.Services["websocket"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, "3 clients connected", ws.Message)
}

func TestHealthServiceBasics(t *testing.T) {
	hs := NewHealthService("1.2.0", "2025-03-01", "abc123", nil, nil, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.2.0", v["version"])
	assert.Equal(t, "abc123", v["build_id"])

	assert.Equal(t, "not_ready", hs.ReadinessCheck(ctx).Status)
}

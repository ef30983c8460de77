package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/gridpulse/internal/market"
)

func testBundle() *market.Bundle {
	return &market.Bundle{
		Sequence:    3,
		GeneratedAt: time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC),
		Snapshot: market.Snapshot{
			System: market.SystemState{TotalLoad: 18000, AvgPrice: 55},
		},
	}
}

func TestRedis_PublishSetsKeyWithTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	bundle := testBundle()
	payload, err := json.Marshal(bundle)
	require.NoError(t, err)

	mock.ExpectSet("gridpulse:bundle:latest", payload, 5*time.Minute).SetVal("OK")

	pub := NewRedis(client, "gridpulse:bundle:latest", 5*time.Minute)
	require.NoError(t, pub.Publish(context.Background(), bundle))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_PublishWrapsSetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	bundle := testBundle()
	payload, err := json.Marshal(bundle)
	require.NoError(t, err)

	mock.ExpectSet("k", payload, time.Minute).SetErr(errors.New("connection refused"))

	pub := NewRedis(client, "k", time.Minute)
	err = pub.Publish(context.Background(), bundle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis publish")
}

func TestRedis_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	client, mock := redismock.NewClientMock()
	bundle := testBundle()
	payload, err := json.Marshal(bundle)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		mock.ExpectSet("k", payload, time.Minute).SetErr(errors.New("connection refused"))
	}

	pub := NewRedis(client, "k", time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.Error(t, pub.Publish(ctx, bundle))
	}

	// Fourth attempt is rejected by the open breaker without reaching
	// the client; no further expectation is set.
	err = pub.Publish(ctx, bundle)
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Name(t *testing.T) {
	client, _ := redismock.NewClientMock()
	assert.Equal(t, "redis", NewRedis(client, "k", time.Minute).Name())
}

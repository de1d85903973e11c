package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/platform/telemetry"
)

func TestSetup_NoopWithoutEndpoint(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), &telemetry.Config{ServiceName: "charforge"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = telemetry.Setup(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_RequiresServiceName(t *testing.T) {
	_, err := telemetry.Setup(context.Background(), &telemetry.Config{Endpoint: "http://localhost:4318"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestSetup_ShutdownWithUnreachableCollector(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation; nothing answers there.
	shutdown, err := telemetry.Setup(context.Background(), &telemetry.Config{
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "charforge-test",
		Insecure:    true,
	})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestOptions(t *testing.T) {
	assert.NotNil(t, telemetry.ServerOption())
	assert.NotNil(t, telemetry.DialOption())
}

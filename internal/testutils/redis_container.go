//go:build integration

package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/KirkDiggler/rpg-charforge/internal/redis"
)

// CreateRedisContainerClient starts a real Redis in Docker and returns a
// client for it. Docker must be available.
func CreateRedisContainerClient(t *testing.T) (redis.Client, func()) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v [%s]", err, time.Since(start))
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("getting redis endpoint: %v", err)
	}

	client, err := redis.NewClient(endpoint, &redis.Options{PoolSize: 20})
	if err != nil {
		t.Fatalf("creating redis client: %v", err)
	}
	t.Logf("redis container started at %s [%s]", endpoint, time.Since(start))

	cleanup := func() {
		_ = client.Close()
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating redis container: %v", err)
		}
	}
	return client, cleanup
}

//go:build integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/Sternrassler/wise-api-client/internal/testutil"
	"github.com/Sternrassler/wise-api-client/pkg/client"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestRedis(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cleanup := func() {
		redisC.Terminate(ctx)
	}

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port()), cleanup
}

func TestRun_ResumesAfterFailure(t *testing.T) {
	redisURL, cleanup := setupTestRedis(t)
	defer cleanup()

	mock := testutil.NewMockWise()
	defer mock.Close()
	mock.SetSequence(activitiesPath,
		testutil.NewJSONResponse(`{"activities":[{"id":"a"},{"id":"b"}],"cursor":"c1"}`),
		testutil.NewErrorResponse(http.StatusServiceUnavailable, "maintenance"),
	)

	cfg := exportConfig{APIKey: "token", ProfileID: "101", RedisURL: redisURL}
	opts := []client.Option{client.WithHTTPClient(mock.Client())}

	var first bytes.Buffer
	if err := run(context.Background(), cfg, &first, opts...); err == nil {
		t.Fatal("expected first run to fail")
	}
	if got := strings.Join(exportedIDs(t, &first), ","); got != "a,b" {
		t.Fatalf("first run ids = %s", got)
	}

	mock.Reset()
	mock.SetCursorPages(activitiesPath, map[string]string{
		"c1": `{"activities":[{"id":"c"}]}`,
	})

	var second bytes.Buffer
	if err := run(context.Background(), cfg, &second, opts...); err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if got := strings.Join(exportedIDs(t, &second), ","); got != "c" {
		t.Errorf("second run ids = %s, want c", got)
	}
	if reqs := mock.Requests(); len(reqs) != 1 || reqs[0].Query.Get("nextCursor") != "c1" {
		t.Errorf("second run requests = %+v", reqs)
	}

	// The checkpoint is gone once the feed is exhausted.
	mock.Reset()
	mock.SetCursorPages(activitiesPath, map[string]string{
		"": `{"activities":[{"id":"a"}]}`,
	})
	var third bytes.Buffer
	if err := run(context.Background(), cfg, &third, opts...); err != nil {
		t.Fatalf("third run error = %v", err)
	}
	if got := strings.Join(exportedIDs(t, &third), ","); got != "a" {
		t.Errorf("third run ids = %s, want a", got)
	}
}

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustverify/trustverify/internal/authz"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type captureSink struct {
	mu      sync.Mutex
	entries []Entry
	gate    chan struct{}
	first   chan struct{}
	once    sync.Once
}

func newCaptureSink(blocking bool) *captureSink {
	s := &captureSink{first: make(chan struct{})}
	if blocking {
		s.gate = make(chan struct{})
	}
	return s
}

func (s *captureSink) Write(ctx context.Context, e Entry) error {
	s.once.Do(func() { close(s.first) })
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *captureSink) all() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

func TestEmitterDeliversEntries(t *testing.T) {
	sink := newCaptureSink(false)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	emitter := NewEmitter(sink, 16, nil, WithClock(func() time.Time { return at }))

	principal := &authz.Principal{ID: "42", Email: "user@example.com"}
	emitter.Record(authz.AccessDecision{
		Allowed:     true,
		Role:        authz.RoleUser,
		Requirement: "permission:create:transaction",
	}, principal, "POST /api/transactions")
	emitter.Record(authz.AccessDecision{
		Code:        authz.CodeInsufficientPermissions,
		Role:        authz.RoleUser,
		Requirement: "permission:manage:org_billing",
		Required:    "manage:org_billing",
	}, principal, "POST /api/org/billing")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, emitter.Close(ctx))

	entries := sink.all()
	require.Len(t, entries, 2)

	require.Equal(t, OutcomeAllow, entries[0].Outcome)
	require.Equal(t, "USER", entries[0].Role)
	require.Equal(t, "42", entries[0].PrincipalID)
	require.Equal(t, "POST /api/transactions", entries[0].Endpoint)
	require.Equal(t, at, entries[0].At)
	require.Empty(t, entries[0].Code)

	require.Equal(t, OutcomeDeny, entries[1].Outcome)
	require.Equal(t, "INSUFFICIENT_PERMISSIONS", entries[1].Code)
	require.Equal(t, "manage:org_billing", entries[1].Required)
}

func TestEmitterRecordsUnauthenticatedRole(t *testing.T) {
	sink := newCaptureSink(false)
	emitter := NewEmitter(sink, 16, nil)

	emitter.Record(authz.AccessDecision{
		Code:        authz.CodeAuthenticationRequired,
		Requirement: "permission:create:transaction",
		Required:    "create:transaction",
	}, nil, "POST /api/transactions")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, emitter.Close(ctx))

	entries := sink.all()
	require.Len(t, entries, 1)
	require.Equal(t, RoleUnauthenticated, entries[0].Role)
	require.Empty(t, entries[0].PrincipalID)
}

func TestEmitterShedsOldestWhenQueueFull(t *testing.T) {
	sink := newCaptureSink(true)
	var drops int
	var dropMu sync.Mutex
	emitter := NewEmitter(sink, 2, nil, WithDropHook(func() {
		dropMu.Lock()
		drops++
		dropMu.Unlock()
	}))

	record := func(endpoint string) {
		emitter.Record(authz.AccessDecision{
			Allowed:     true,
			Role:        authz.RoleUser,
			Requirement: "permission:read:own_profile",
		}, &authz.Principal{ID: "1"}, endpoint)
	}

	// First entry parks the drain goroutine inside the blocked sink.
	record("e1")
	select {
	case <-sink.first:
	case <-time.After(time.Second):
		t.Fatal("sink never received the first entry")
	}

	// Fill the queue, then overflow it: each overflow sheds the oldest
	// buffered entry and keeps the newest.
	record("e2")
	record("e3")
	record("e4")
	record("e5")
	record("e6")

	close(sink.gate)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, emitter.Close(ctx))

	dropMu.Lock()
	require.Equal(t, 3, drops)
	dropMu.Unlock()

	endpoints := make([]string, 0)
	for _, e := range sink.all() {
		endpoints = append(endpoints, e.Endpoint)
	}
	require.Equal(t, []string{"e1", "e5", "e6"}, endpoints)
}

func TestEmitterRecordNeverBlocks(t *testing.T) {
	sink := newCaptureSink(true)
	emitter := NewEmitter(sink, 1, nil)
	defer close(sink.gate)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			emitter.Record(authz.AccessDecision{Allowed: true, Role: authz.RoleUser}, nil, "GET /x")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a stalled sink")
	}
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emitter *Emitter
	emitter.Record(authz.AccessDecision{Allowed: true}, nil, "GET /x")
}

func TestLogSinkSeverity(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf)
	sink := LogSink{Logger: logger}

	require.NoError(t, sink.Write(context.Background(), Entry{Outcome: OutcomeDeny, Role: "USER", Code: "INSUFFICIENT_PERMISSIONS"}))
	require.NoError(t, sink.Write(context.Background(), Entry{Outcome: OutcomeAllow, Role: "USER"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "WARN", first["level"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Equal(t, "DEBUG", second["level"])
}

func TestMultiSinkFansOut(t *testing.T) {
	a := newCaptureSink(false)
	b := newCaptureSink(false)
	sink := MultiSink{a, b}

	require.NoError(t, sink.Write(context.Background(), Entry{Endpoint: "GET /x"}))
	require.Len(t, a.all(), 1)
	require.Len(t, b.all(), 1)
}

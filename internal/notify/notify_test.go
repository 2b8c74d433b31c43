package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type stubConn struct {
	subject    string
	data       []byte
	publishErr error
	drained    bool
}

func (s *stubConn) Publish(subj string, data []byte) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	s.subject, s.data = subj, data
	return nil
}

func (s *stubConn) FlushWithContext(ctx context.Context) error { return ctx.Err() }

func (s *stubConn) Drain() error {
	s.drained = true
	return nil
}

func TestNatsNotifierPublish(t *testing.T) {
	conn := &stubConn{}
	n := &NatsNotifier{conn: conn, subject: "seeder.runs"}

	if err := n.Publish(context.Background(), "completed", map[string]int{"succeeded": 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn.subject != "seeder.runs.completed" {
		t.Fatalf("unexpected subject %s", conn.subject)
	}
	var got map[string]int
	if err := json.Unmarshal(conn.data, &got); err != nil || got["succeeded"] != 3 {
		t.Fatalf("unexpected payload %s", conn.data)
	}
	if err := n.Close(); err != nil || !conn.drained {
		t.Fatalf("expected drain on close")
	}
}

func TestNatsNotifierErrors(t *testing.T) {
	n := &NatsNotifier{conn: &stubConn{publishErr: errors.New("no responders")}, subject: "seeder.runs"}
	if err := n.Publish(context.Background(), "completed", struct{}{}); err == nil {
		t.Fatalf("expected publish error")
	}
	if err := n.Publish(context.Background(), "completed", func() {}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

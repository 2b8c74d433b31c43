package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
)

func TestConnect_Validation(t *testing.T) {
	if _, err := Connect(context.Background(), "", "warn"); err == nil {
		t.Fatalf("expected error for empty dsn")
	}

	if _, err := Connect(context.Background(), "invalid-dsn", "warn"); err == nil {
		t.Fatalf("expected error for invalid dsn")
	}
}

func TestNewTracer(t *testing.T) {
	cases := map[string]struct {
		level string
		want  tracelog.LogLevel
		isNil bool
	}{
		"disabled": {level: "none", isNil: true},
		"debug":    {level: "debug", want: tracelog.LogLevelDebug},
		"upper":    {level: "INFO", want: tracelog.LogLevelInfo},
		"unknown":  {level: "loud", want: tracelog.LogLevelWarn},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tracer := newTracer(tc.level)
			if tc.isNil {
				if tracer != nil {
					t.Fatalf("expected no tracer")
				}
				return
			}
			if tracer == nil || tracer.LogLevel != tc.want {
				t.Fatalf("unexpected tracer %+v", tracer)
			}
		})
	}
}

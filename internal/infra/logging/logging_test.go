//go:build !integration

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithEmitsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := context.Background()
	ctx = WithTraceID(ctx, "tr-1")
	ctx = WithTenantID(ctx, "t1")
	ctx = WithRequestID(ctx, "r1")
	ctx = WithAdminID(ctx, "admin-1")

	With(ctx, &base).Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{
		`"trace_id":"tr-1"`,
		`"tenant_id":"t1"`,
		`"request_id":"r1"`,
		`"admin_id":"admin-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestWithSkipsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	With(context.Background(), &base).Info().Msg("hello")

	out := buf.String()
	for _, absent := range []string{"trace_id", "tenant_id", "request_id", "admin_id"} {
		if strings.Contains(out, absent) {
			t.Errorf("unexpected %s in %s", absent, out)
		}
	}
}

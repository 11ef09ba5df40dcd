package services

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
)

var envelopeCode = attribute.Key("envelope.code")

// loggerFrom returns the request-scoped logger carried by ctx, or the global
// logger when none was attached.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// recoverTo turns a panic in op into a 500 envelope written to *out.
// It must be deferred directly by the service method.
func recoverTo(ctx context.Context, op string, out *domain.Messenger) {
	if r := recover(); r != nil {
		loggerFrom(ctx).Error().
			Str("op", op).
			Interface("panic", r).
			Bytes("stack", debug.Stack()).
			Msg("service panic recovered")
		*out = domain.InternalError("internal error", fmt.Errorf("panic: %v", r))
	}
}

// finish records a failure envelope on span.
func finish(span trace.Span, m domain.Messenger) {
	span.SetAttributes(envelopeCode.Int(m.Code))
	if m.Code >= domain.CodeInternalError {
		span.SetStatus(codes.Error, m.Message)
	}
}

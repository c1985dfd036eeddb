package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "soldieriq-gateway"

// StartChatSpan starts a span covering one chat exchange.
func StartChatSpan(ctx context.Context, sessionID, model string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "chat.submit",
		trace.WithAttributes(
			attribute.String("chat.session_id", sessionID),
			attribute.String("chat.model", model),
		),
	)
}

// StartResolveSpan starts a span for one asset-link resolution.
func StartResolveSpan(ctx context.Context, storageKey string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "assets.resolve",
		trace.WithAttributes(
			attribute.String("asset.storage_key", storageKey),
		),
	)
}

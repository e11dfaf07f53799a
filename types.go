package authcore

import (
	"io"

	"github.com/rs/zerolog"

	internalaudit "github.com/mpsstore/authcore/internal/audit"
)

// LoginResult is returned by [Engine.Login]. Message is user-facing and
// deliberately vague on failure; Reason carries the precise sentinel error
// for callers that branch on it (never show Reason to the user).
type LoginResult struct {
	Success bool
	Message string
	Reason  error
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON lines to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// ZerologSink is an [AuditSink] backed by a zerolog logger.
type ZerologSink = internalaudit.ZerologSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZerologSink creates a [ZerologSink] over logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return internalaudit.NewZerologSink(logger)
}

package escrow

import (
	"context"

	"github.com/rs/zerolog"

	"opencure/internal/domain"
)

// LogSink writes every event to a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Publish(_ context.Context, ev domain.Event) error {
	s.Logger.Info().
		Str("event_id", ev.ID).
		Str("project_id", ev.ProjectID).
		Int("seq", ev.Sequence).
		Str("type", string(ev.Type)).
		Interface("payload", ev.Payload).
		Msg("escrow event")
	return nil
}

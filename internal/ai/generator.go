package ai

import (
	"context"
	"log/slog"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
)

// ErrGeneration is returned when the language model is unreachable or returns nothing usable.
var ErrGeneration = errors.NewSentinel("generation failed")

// MaxReplyRunes bounds the length of generated replies.
const MaxReplyRunes = 2000

// Generator produces narrative replies.
type Generator interface {
	// GenerateReply answers message in the voice configured by system. history is passed as conversational context
	// in its original order.
	GenerateReply(ctx context.Context, system string, history []models.Turn, message string) (string, error)
}

// Embedder turns texts into vectors for semantic clue matching.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// generationError marks err as an [ErrGeneration] while keeping the transport cause for the logs.
func generationError(err error, msg string, attrs ...slog.Attr) error {
	return errors.Wrap(errors.Join(ErrGeneration, err), msg, attrs...)
}

func truncate(reply string) string {
	runes := []rune(reply)
	if len(runes) <= MaxReplyRunes {
		return reply
	}
	return string(runes[:MaxReplyRunes])
}

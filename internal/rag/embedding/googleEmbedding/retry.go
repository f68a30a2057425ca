package googleEmbedding

import (
	"context"
	"time"

	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func getContent(texts []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(texts))

	for _, text := range texts {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contentsToSend
}

// waitBeforeRetry blocks for the backoff period but gives up as soon as the
// request context is cancelled.
func waitBeforeRetry(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// doRetry reports whether the error is a rate limit we may retry once.
// Anything else stays a hard failure of the current batch.
func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Error("Rate limit hit! ", "error", err)
			return true
		}
	}
	return false
}

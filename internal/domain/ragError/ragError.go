package ragError

import (
	"errors"
	"fmt"
)

// Kind names the pipeline stage a request died in. One request failing must
// never corrupt the vector store or another session's history, so every
// stage wraps its cause in one of these instead of mutating shared state.
type Kind string

const (
	Ingestion  Kind = "INGESTION_FAILURE"
	Embedding  Kind = "EMBEDDING_FAILURE"
	Retrieval  Kind = "RETRIEVAL_FAILURE"
	Generation Kind = "GENERATION_FAILURE"
)

type PipelineError struct {
	Kind  Kind
	Cause error
	//Retry tells the caller a retry of the identical request is safe.
	//The service itself never auto-retries - no hidden duplicate LLM calls.
	Retry bool
}

func (e *PipelineError) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func New(kind Kind, cause error, canRetry bool) *PipelineError {
	return &PipelineError{Kind: kind, Cause: cause, Retry: canRetry}
}

// KindOf extracts the pipeline kind from an error chain, or "" when the
// error did not originate in the pipeline.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func IsRetryable(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Retry
}

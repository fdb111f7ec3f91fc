package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or media type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	// Diagnosis and guide synthesis cannot run without it.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are skipped without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGroundingUnsupported indicates the generation provider cannot run
	// web-grounded requests.
	ErrGroundingUnsupported = errors.New("grounded search not supported")

	// ErrRateLimited indicates an external API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Crawl Errors.

	// ErrFetchRejected indicates a fetched page failed status, content-type
	// or size validation.
	ErrFetchRejected = errors.New("fetch rejected")

	// ErrContentTooShort indicates extracted text is below the minimum viable length.
	ErrContentTooShort = errors.New("content too short")

	// Pipeline Errors.

	// ErrNoDiagnosis indicates the diagnosis call returned no usable fault.
	ErrNoDiagnosis = errors.New("no diagnosis")

	// ErrSchemaInvalid indicates a structured response failed schema validation.
	ErrSchemaInvalid = errors.New("schema invalid")
)

// MissingFieldError reports a required field absent from structured output
// or from a request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is matches ErrSchemaInvalid.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrSchemaInvalid
}

// FetchError describes why a page fetch was rejected.
type FetchError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

// Is matches ErrFetchRejected.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchRejected
}

// StageError is a fatal pipeline failure tagged with the stage that raised it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if err wraps a *StageError.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

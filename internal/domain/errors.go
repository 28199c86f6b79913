package domain

import "errors"

// Error kinds surfaced by the pipeline. Callers distinguish retryable
// failures (ErrBackendUnavailable) from non-retryable ones
// (ErrDimensionMismatch) with errors.Is.
var (
	// ErrModelUnavailable indicates the embedding model could not be
	// loaded or reached.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrDimensionMismatch indicates an embedding's width differs from the
	// collection's established dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBatchWrite indicates a partitioned store write failed partway.
	// Batches committed before the failure are not rolled back, so the
	// document may be left partially indexed.
	ErrBatchWrite = errors.New("batch write failed")

	// ErrBackendUnavailable indicates the generation endpoint was
	// unreachable or returned a non-success status.
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrMalformedResponse indicates the generation payload could not be
	// parsed into text.
	ErrMalformedResponse = errors.New("malformed generation response")

	// ErrDocumentRead indicates a source document could not be read.
	ErrDocumentRead = errors.New("document read failed")
)

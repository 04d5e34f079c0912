package sitemath

import "errors"

// Sentinel errors for library operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load typesetting page")
	ErrTypeset        = errors.New("typesetting failed")
	ErrEngineNotReady = errors.New("MathJax did not start")

	// File transformer errors.
	ErrReadDocument  = errors.New("failed to read document")
	ErrParseDocument = errors.New("failed to parse document")
	ErrWriteDocument = errors.New("failed to write document")

	// Site enumeration errors.
	ErrListDirectory = errors.New("failed to list site directory")

	// Completion counting errors.
	ErrDuplicateCompletion = errors.New("job completed more than once")
	ErrAlreadyLaunched     = errors.New("jobs already launched")
	ErrNilTransformer      = errors.New("transformer cannot be nil")

	// Engine option validation errors.
	ErrInvalidFormat     = errors.New("invalid output format")
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrInvalidMathJaxURL = errors.New("invalid MathJax URL")
	ErrInvalidDelimiter  = errors.New("invalid math delimiter")
	ErrInvalidWorkers    = errors.New("invalid worker count")
)

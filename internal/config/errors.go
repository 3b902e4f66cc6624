package config

import "errors"

// Validation errors returned by Config.Validate. Callers match them with
// errors.Is.
var (
	// ErrNoItemSelectors is returned when no item selector is configured.
	ErrNoItemSelectors = errors.New("no item selectors configured")

	// ErrNoTitleSelectors is returned when no title selector is configured.
	ErrNoTitleSelectors = errors.New("no title selectors configured")

	// ErrInvalidSelector is returned when a configured selector does not compile.
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrInvalidDebounce is returned when the debounce window is not positive.
	ErrInvalidDebounce = errors.New("invalid debounce: must be positive")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidFetchTimeout is returned when the fetch timeout is not positive.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)

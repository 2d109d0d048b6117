package model

import "errors"

// Error kinds surfaced by the listing pipeline. Callers match them with errors.Is.
var (
	ErrValidation        = errors.New("missing fields")
	ErrUpstreamTransport = errors.New("upstream transport error")
	ErrOptimizationParse = errors.New("optimization parse error")
	ErrPersistence       = errors.New("persistence error")
	ErrConfiguration     = errors.New("configuration error")
)

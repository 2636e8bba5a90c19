// Package dserr provides DirSchema's error envelope: a trimmed version of
// gofulmen's errors.ErrorEnvelope (errors/errors.go) carrying the fields the
// Driver and cmd/dirschema actually thread -- code, message, path, details,
// severity -- without that package's telemetry trace IDs, since the
// Evaluator runs single-threaded and synchronously (§5).
package dserr

import (
	"fmt"
	"time"
)

// Severity classifies an Envelope, mirroring errors.Severity's enum without
// the numeric SeverityLevel table DirSchema has no use for.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Envelope is DirSchema's structured error/diagnostic carrier, used for
// run-level failures (rule-document invalid, adapter unavailable) that are
// not themselves part of a per-path ErrorReport.
type Envelope struct {
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	Path          string         `json:"path,omitempty"`
	Severity      Severity       `json:"severity,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	Timestamp     string         `json:"timestamp"`
	original      error
}

// New creates an Envelope with the given code/message, stamped with the
// current time.
func New(code, message string) *Envelope {
	return &Envelope{
		Code:      code,
		Message:   message,
		Severity:  SeverityError,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// WithPath attaches the path the failure concerns.
func (e *Envelope) WithPath(path string) *Envelope {
	e.Path = path
	return e
}

// WithSeverity overrides the default "error" severity.
func (e *Envelope) WithSeverity(sev Severity) *Envelope {
	e.Severity = sev
	return e
}

// WithCorrelationID attaches a run-correlation identifier (§3 AMBIENT STACK:
// the Driver mints one per run using github.com/google/uuid).
func (e *Envelope) WithCorrelationID(id string) *Envelope {
	e.CorrelationID = id
	return e
}

// WithDetails merges the given keys into Details.
func (e *Envelope) WithDetails(details map[string]any) *Envelope {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithOriginal records the underlying Go error without serializing it.
func (e *Envelope) WithOriginal(err error) *Envelope {
	e.original = err
	return e
}

// Unwrap exposes the original error for errors.Is/errors.As.
func (e *Envelope) Unwrap() error { return e.original }

// Error implements the error interface.
func (e *Envelope) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

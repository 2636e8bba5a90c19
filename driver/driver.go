// Package driver implements the Driver (§4.6): it enumerates a tree
// adapter's paths, filters out metadata companions, runs the Evaluator over
// every remaining path, and assembles the non-empty reports into a mapping
// keyed by path, preserving enumeration order. It also wires the ambient
// stack the Evaluator core itself stays free of: a run-correlation ID
// (github.com/google/uuid, grounded on gofulmen errors/errors.go's
// CorrelationID field) and structured logging (dslog), one event per
// non-empty report plus a run summary.
package driver

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dirschema/dirschema-go/dserr"
	"github.com/dirschema/dirschema-go/dslog"
	"github.com/dirschema/dirschema-go/eval"
	"github.com/dirschema/dirschema-go/match"
	"github.com/dirschema/dirschema-go/metaconv"
	"github.com/dirschema/dirschema-go/rule"
	"github.com/dirschema/dirschema-go/treeadapter"
)

// Result is the outcome of a Driver run: the ordered list of evaluated
// paths (companions already excluded) and the reports keyed by path for
// those that failed.
type Result struct {
	RunID   string
	Paths   []string
	Reports map[string]*eval.Report
}

// Driver wires an Evaluator, a MetaConvention, and an adapter together to
// run §4.6's four-step algorithm over a whole tree.
type Driver struct {
	Evaluator  *eval.Evaluator
	Adapter    treeadapter.Adapter
	Convention metaconv.Convention
	Logger     *dslog.Logger
}

// New builds a Driver. logger may be nil, in which case driver events are
// dropped (useful for tests that don't care about log output).
func New(evaluator *eval.Evaluator, adapter treeadapter.Adapter, convention metaconv.Convention, logger *dslog.Logger) *Driver {
	return &Driver{Evaluator: evaluator, Adapter: adapter, Convention: convention, Logger: logger}
}

// Run evaluates rootRule over every non-companion path the adapter
// enumerates, returning the accumulated Result. The adapter's enumeration
// order is preserved in Result.Paths and therefore in report iteration,
// per §4.6 step 4's stability requirement.
func (d *Driver) Run(rootRule *rule.Rule) (Result, error) {
	runID := uuid.NewString()
	logger := d.Logger
	if logger != nil {
		logger = logger.With(zap.String("runId", runID))
	}

	if warnings, err := d.Evaluator.Prepare(rootRule); err != nil {
		envelope := dserr.New("RULE_DOCUMENT_INVALID", "rule document failed to prepare").
			WithCorrelationID(runID).
			WithOriginal(err)
		if logger != nil {
			logger.Error("rule document failed to prepare", zap.Error(envelope))
		}
		return Result{}, envelope
	} else if logger != nil {
		for _, w := range warnings {
			logger.Warn("rule document lint warning", zap.String("warning", w))
		}
	}

	all, err := d.Adapter.Enumerate()
	if err != nil {
		envelope := dserr.New("ENUMERATE_FAILED", "adapter enumeration failed").
			WithSeverity(dserr.SeverityCritical).
			WithCorrelationID(runID).
			WithOriginal(err)
		if logger != nil {
			logger.Error("enumerate failed", zap.Error(envelope))
		}
		return Result{}, envelope
	}

	result := Result{
		RunID:   runID,
		Paths:   make([]string, 0, len(all)),
		Reports: make(map[string]*eval.Report),
	}

	for _, p := range all {
		if d.Convention.IsCompanion(p) {
			continue
		}
		result.Paths = append(result.Paths, p)

		report, err := d.Evaluator.Evaluate(rootRule, p, match.Initial(p))
		if err != nil {
			envelope := dserr.New("EVALUATE_FAILED", "path evaluation failed").
				WithPath(p).
				WithSeverity(dserr.SeverityCritical).
				WithCorrelationID(runID).
				WithOriginal(err)
			if logger != nil {
				logger.Error("evaluate failed", zap.String("path", p), zap.Error(envelope))
			}
			return Result{}, envelope
		}
		if report != nil {
			result.Reports[p] = report
			if logger != nil {
				logger.Info("path failed", zap.String("path", p), zap.String("message", report.Message))
			}
		}
	}

	if logger != nil {
		logger.Info("run complete",
			zap.Int("pathsEvaluated", len(result.Paths)),
			zap.Int("pathsFailed", len(result.Reports)),
		)
	}

	return result, nil
}

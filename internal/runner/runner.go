// Package runner implements the runner interface: the orchestration
// layer that assembles a Composition from a project's pipeline plus the
// mandatory ETL/sink segments, resolves asset store state, compiles the
// apply subgraph, and hands the resulting Symbol program to a concrete
// Executor.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/deeplearning2012/forml/internal/asset"
	"github.com/deeplearning2012/forml/internal/compiler"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/frame"
	"github.com/deeplearning2012/forml/pkg/flow/pipeline"
)

// ErrProjectNotEvaluable is returned by CVScore when the project has no
// evaluation segment configured.
var ErrProjectNotEvaluable = errors.New("runner: project has no evaluation segment configured")

// ErrProviderUnresolved is returned when a required provider reference
// (feed, sink) could not be resolved for a run.
var ErrProviderUnresolved = errors.New("runner: required provider unresolved")

// Feed is the external collaborator producing a DSL Query and
// materializing it as an ETL segment, parameterized by ordinal bounds.
// Concrete feed backends are a provider concern; the runner only needs
// this contract.
type Feed interface {
	Load(source *frame.Query, lower, upper any) (*pipeline.Segment, error)
}

// Sink is the external collaborator consuming a composition's apply
// output, as the terminal segment of a Composition.
type Sink interface {
	Save() (*pipeline.Segment, error)
}

// Executor is the runner-specific hook that actually invokes a compiled
// symbol program, implemented by a concrete runtime. For a training run
// it returns the serialized state blob produced for each shared worker
// group; apply and cvscore runs may return a nil map.
type Executor interface {
	Run(ctx context.Context, symbols []compiler.Symbol) (states map[int][]byte, err error)
}

// Project describes the composition inputs a Runner assembles for
// train/apply/cvscore: the source query, the user pipeline segment, and
// an optional evaluation segment enabling cvscore.
type Project struct {
	Source     *frame.Query
	Pipeline   *pipeline.Segment
	Evaluation *pipeline.Segment // nil if the project is not evaluable
}

// Runner orchestrates train/apply/cvscore invocations for one project
// against one lineage of its asset store.
type Runner struct {
	project  Project
	lineage  asset.Lineage
	feed     Feed
	sink     Sink
	executor Executor

	tracer    trace.Tracer
	histogram prometheus.Histogram
}

// Option configures a Runner.
type Option func(*Runner)

// WithTracer overrides the default (otel.Tracer("forml/runner")) tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// WithHistogram registers a prometheus.Histogram to observe _run duration.
func WithHistogram(histogram prometheus.Histogram) Option {
	return func(r *Runner) { r.histogram = histogram }
}

// New creates a Runner for project against lineage, using feed/sink to
// assemble the ETL/sink segments and executor to invoke compiled programs.
func New(project Project, lineage asset.Lineage, feed Feed, sink Sink, executor Executor, opts ...Option) *Runner {
	r := &Runner{
		project:  project,
		lineage:  lineage,
		feed:     feed,
		sink:     sink,
		executor: executor,
		tracer:   otel.Tracer("forml/runner"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Runner) observe(start time.Time) {
	if r.histogram != nil {
		r.histogram.Observe(time.Since(start).Seconds())
	}
}

// Train runs the training code: it assembles a composition from the
// project pipeline, resolves prior state for the shared worker set, and
// executes the compiled program, publishing a new generation stamped
// with a fresh training timestamp.
func (r *Runner) Train(ctx context.Context, lower, upper any) error {
	ctx, span := r.tracer.Start(ctx, "forml.runner.train",
		trace.WithAttributes(attribute.String("forml.lineage", r.lineage.Key().String())))
	defer span.End()
	defer r.observe(time.Now())

	prev, err := r.lineage.Latest()
	if err != nil {
		return err
	}

	prevTag, err := prev.Tag()
	if err != nil {
		return err
	}

	if lower == nil {
		lower = prevTag.Training.Ordinal
	}

	composition, err := r.build(lower, upper, r.project.Pipeline)
	if err != nil {
		return err
	}

	symbols, err := compiler.Compile(composition.Apply, composition.Shared, priorStateResolver{tag: prevTag})
	if err != nil {
		return err
	}

	states, err := r.executor.Run(ctx, symbols)
	if err != nil {
		return err
	}

	stateIDs := make([]uuid.UUID, 0, len(states))
	blobs := make(map[uuid.UUID][]byte, len(states))

	for _, gid := range sortedGroupIDs(states) {
		id := uuid.New()
		stateIDs = append(stateIDs, id)
		blobs[id] = states[gid]
	}

	newTag := asset.Training{}.Trigger(prevTag, time.Now(), upper)
	newTag.States = stateIDs

	if _, err := r.lineage.Publish(newTag, blobs); err != nil {
		return err
	}

	return nil
}

// Apply runs the applying code against the lineage's latest generation's
// state, without advancing the generation.
func (r *Runner) Apply(ctx context.Context, lower, upper any) error {
	ctx, span := r.tracer.Start(ctx, "forml.runner.apply",
		trace.WithAttributes(attribute.String("forml.lineage", r.lineage.Key().String())))
	defer span.End()
	defer r.observe(time.Now())

	composition, err := r.build(lower, upper, r.project.Pipeline)
	if err != nil {
		return err
	}

	latest, err := r.lineage.Latest()
	if err != nil {
		return err
	}

	tag, err := latest.Tag()
	if err != nil {
		return err
	}

	symbols, err := compiler.Compile(composition.Apply, composition.Shared, priorStateResolver{tag: tag})
	if err != nil {
		return err
	}

	_, err = r.executor.Run(ctx, symbols)

	return err
}

// CVScore runs the crossvalidating evaluation: per the source's own
// "TODO rename to evaluate" note, its semantics are the *train* track of
// an evaluation-augmented pipeline, not a fresh cross-validation loop.
func (r *Runner) CVScore(ctx context.Context, lower, upper any) error {
	ctx, span := r.tracer.Start(ctx, "forml.runner.cvscore",
		trace.WithAttributes(attribute.String("forml.lineage", r.lineage.Key().String())))
	defer span.End()
	defer r.observe(time.Now())

	if r.project.Evaluation == nil {
		return ErrProjectNotEvaluable
	}

	composition, err := r.build(lower, upper, r.project.Pipeline, r.project.Evaluation)
	if err != nil {
		return err
	}

	for _, train := range composition.Train {
		symbols, err := compiler.Compile(train, nil, priorStateResolver{})
		if err != nil {
			return err
		}

		if _, err := r.executor.Run(ctx, symbols); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) build(lower, upper any, blocks ...*pipeline.Segment) (*pipeline.Composition, error) {
	if r.feed == nil || r.sink == nil {
		return nil, ErrProviderUnresolved
	}

	etl, err := r.feed.Load(r.project.Source, lower, upper)
	if err != nil {
		return nil, fmt.Errorf("runner: load ETL segment: %w", err)
	}

	sink, err := r.sink.Save()
	if err != nil {
		return nil, fmt.Errorf("runner: build sink segment: %w", err)
	}

	expanded := make([]*pipeline.Segment, len(blocks))

	for i, b := range blocks {
		exp, err := b.Expand()
		if err != nil {
			return nil, fmt.Errorf("runner: expand block %d: %w", i, err)
		}

		expanded[i] = exp
	}

	return pipeline.New(etl, expanded, sink)
}

// priorStateResolver reports a worker group as having prior state
// whenever the resolved tag has ever been trained; the core spec leaves
// unspecified any finer per-group existence check, and a trained tag's
// state list is the only signal available without executor involvement.
type priorStateResolver struct {
	tag asset.Tag
}

func (p priorStateResolver) HasState(int) bool {
	return p.tag.Training.Timestamp != nil
}

func sortedGroupIDs(states map[int][]byte) []int {
	ids := make([]int, 0, len(states))
	for gid := range states {
		ids = append(ids, gid)
	}

	sort.Ints(ids)

	return ids
}

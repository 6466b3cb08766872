package repos

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sundayezeilo/repostore/internal/errx"
	"github.com/sundayezeilo/repostore/internal/idgen"
)

const tracerName = "github.com/sundayezeilo/repostore/internal/repos"

// CreateRequest carries the client supplied fields of a new record.
// Techs must hold a JSON array.
type CreateRequest struct {
	Title json.RawMessage
	URL   json.RawMessage
	Techs json.RawMessage
}

// UpdateRequest carries the fields of an update. A numeric Likes turns the
// update into a read of the current likes count.
type UpdateRequest struct {
	Title json.RawMessage
	URL   json.RawMessage
	Techs json.RawMessage
	Likes json.RawMessage
}

// UpdateResult is either the updated record or, when LikesOnly is set, the
// untouched record's current likes.
type UpdateResult struct {
	Repo      Repo
	LikesOnly bool
	Likes     int64
}

// Service defines the catalog operations.
type Service interface {
	List(ctx context.Context) ([]Repo, error)
	Create(ctx context.Context, req CreateRequest) (Repo, error)
	Update(ctx context.Context, id string, req UpdateRequest) (UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, id string) (int64, error)
}

// MetricsRecorder receives one observation per service call.
type MetricsRecorder interface {
	RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(context.Context, string, string, time.Duration) {}

// ServiceConfig holds optional instrumentation for the service.
type ServiceConfig struct {
	Tracer  trace.Tracer    // defaults to the global tracer provider
	Metrics MetricsRecorder // defaults to a no-op recorder
}

type service struct {
	store   Store
	tracer  trace.Tracer
	metrics MetricsRecorder
}

// NewService creates a new service instance.
func NewService(store Store, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &service{
		store:   store,
		tracer:  tracer,
		metrics: metrics,
	}
}

func (s *service) List(ctx context.Context) (repos []Repo, err error) {
	const op = "repos.service.List"

	ctx, done := s.begin(ctx, "repos.List")
	defer func() { done(err) }()

	repos, err = s.store.List(ctx)
	if err != nil {
		return nil, errx.Wrap(op, err)
	}
	return repos, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (created Repo, err error) {
	const op = "repos.service.Create"

	ctx, done := s.begin(ctx, "repos.Create")
	defer func() { done(err) }()

	techs, ok := parseTechs(req.Techs)
	if !ok {
		return Repo{}, errx.E(op, errx.Invalid, ErrInvalidTechs)
	}

	created, err = s.store.Create(ctx, Repo{
		Title: req.Title,
		URL:   req.URL,
		Techs: techs,
	})
	if err != nil {
		return Repo{}, errx.Wrap(op, err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("repo.id", created.ID.String()))
	return created, nil
}

// Update validates in a fixed order: id format, existence, the numeric likes
// short-circuit, then techs.
func (s *service) Update(ctx context.Context, rawID string, req UpdateRequest) (res UpdateResult, err error) {
	const op = "repos.service.Update"

	ctx, done := s.begin(ctx, "repos.Update", attribute.String("repo.id", rawID))
	defer func() { done(err) }()

	id, err := parseID(op, rawID)
	if err != nil {
		return UpdateResult{}, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return UpdateResult{}, errx.Wrap(op, err)
	}

	// A numeric likes in the body only echoes the stored count.
	if isNumber(req.Likes) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("repo.likes_only", true))
		return UpdateResult{LikesOnly: true, Likes: current.Likes}, nil
	}

	techs, ok := parseTechs(req.Techs)
	if !ok {
		return UpdateResult{}, errx.E(op, errx.Invalid, ErrInvalidTechs)
	}

	updated, err := s.store.Update(ctx, Repo{
		ID:    id,
		Title: req.Title,
		URL:   req.URL,
		Techs: techs,
	})
	if err != nil {
		return UpdateResult{}, errx.Wrap(op, err)
	}
	return UpdateResult{Repo: updated}, nil
}

func (s *service) Delete(ctx context.Context, rawID string) (err error) {
	const op = "repos.service.Delete"

	ctx, done := s.begin(ctx, "repos.Delete", attribute.String("repo.id", rawID))
	defer func() { done(err) }()

	id, err := parseID(op, rawID)
	if err != nil {
		return err
	}

	if err = s.store.Delete(ctx, id); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

func (s *service) Like(ctx context.Context, rawID string) (likes int64, err error) {
	const op = "repos.service.Like"

	ctx, done := s.begin(ctx, "repos.Like", attribute.String("repo.id", rawID))
	defer func() { done(err) }()

	id, err := parseID(op, rawID)
	if err != nil {
		return 0, err
	}

	likes, err = s.store.Like(ctx, id)
	if err != nil {
		return 0, errx.Wrap(op, err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("repo.likes", likes))
	return likes, nil
}

// begin starts a span for operation and returns a func that closes it and
// records the outcome.
func (s *service) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := outcomeOf(err)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.kind", errx.KindOf(err).String()))
			// Client mistakes are not server faults.
			if errx.KindOf(err) != errx.Invalid && errx.KindOf(err) != errx.NotFound {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
		s.metrics.RecordOperation(ctx, operation, outcome, time.Since(start))
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	switch errx.KindOf(err) {
	case errx.Invalid:
		return "invalid"
	case errx.NotFound:
		return "not_found"
	case errx.Unavailable:
		return "unavailable"
	default:
		return "error"
	}
}

// parseID validates raw as an identifier. Stored ids are matched by their
// exact lower-case text, so any other spelling of a well-formed id is unknown.
func parseID(op, raw string) (uuid.UUID, error) {
	id, err := idgen.Parse(raw)
	if err != nil {
		return uuid.Nil, errx.E(op, errx.Invalid, ErrInvalidID)
	}
	if id.String() != raw {
		return uuid.Nil, errx.E(op, errx.NotFound, ErrNotFound)
	}
	return id, nil
}

// parseTechs reports whether raw is a JSON array and returns its elements.
// Element types are not checked.
func parseTechs(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	techs := make([]json.RawMessage, 0)
	if err := json.Unmarshal(trimmed, &techs); err != nil {
		return nil, false
	}
	return techs, true
}

// isNumber reports whether raw is a JSON number.
func isNumber(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	c := trimmed[0]
	if c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid(trimmed)
}

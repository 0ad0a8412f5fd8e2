package gradescale

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	syncx "github.com/mind-engage/mindengage-gradescale/internal/sync"
)

// EventSink receives an event for every stored scale.
type EventSink interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

// StoreTransport saves through a Store directly, for editors running next to
// the database.
type StoreTransport struct {
	Store    Store
	CourseID string
	Events   EventSink // optional
	Log      *zap.Logger
	Tracer   trace.Tracer // nil: global provider
}

func (t *StoreTransport) Save(ctx context.Context, rec GradeScale) (GradeScale, error) {
	if rec.CourseID == "" {
		rec.CourseID = t.CourseID
	}
	ctx, span := t.tracer().Start(ctx, "gradescale.save", trace.WithAttributes(
		attribute.String("gradescale.course_id", rec.CourseID),
		attribute.String("gradescale.type", string(rec.Type)),
		attribute.Bool("gradescale.new", rec.IsNew()),
	))
	defer span.End()

	saved, err := t.Store.PutScale(ctx, rec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put scale")
		return GradeScale{}, err
	}
	span.SetAttributes(attribute.String("gradescale.id", saved.ID))
	if t.Events != nil {
		if err := t.Events.Record(ctx, syncx.EventGradeScaleSaved, saved.ID, map[string]any{
			"course_id": saved.CourseID,
			"scale":     saved,
		}); err != nil {
			t.logger().Warn("event log append failed", zap.String("id", saved.ID), zap.Error(err))
		}
	}
	return saved, nil
}

func (t *StoreTransport) SetCourseUseWeights(ctx context.Context, useWeights bool) error {
	if t.CourseID == "" {
		return fmt.Errorf("%w: transport has no course", ErrInvalidArgument)
	}
	return t.Store.SetCourseUseWeights(ctx, t.CourseID, useWeights)
}

func (t *StoreTransport) tracer() trace.Tracer {
	if t.Tracer != nil {
		return t.Tracer
	}
	return otel.Tracer("github.com/mind-engage/mindengage-gradescale/internal/gradescale")
}

func (t *StoreTransport) logger() *zap.Logger {
	if t.Log == nil {
		return zap.NewNop()
	}
	return t.Log
}

package gormdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hexagonal/domain/shared"
	"hexagonal/pkg/logger"
	"hexagonal/pkg/metrics"

	"go.uber.org/zap"
)

// PublicationFailure 一个聚合根的发布失败
type PublicationFailure struct {
	Aggregate shared.AggregateRoot
	Err       error
}

// PublicationError 事务已提交，但部分聚合根的事件没有发布成功
// 这些聚合根的事件缓冲区保持不变，可以稍后用 PublishPending 重试
type PublicationError struct {
	Failures []PublicationFailure
}

func (e *PublicationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Aggregate, f.Err)
	}
	return "committed but failed to publish events for " + strings.Join(parts, "; ")
}

func (e *PublicationError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// PublicationFailed 供 retry 包识别，提交后的失败不能整体重试
func (e *PublicationError) PublicationFailed() bool { return true }

// Aggregates 仍持有未发布事件的聚合根
func (e *PublicationError) Aggregates() []shared.AggregateRoot {
	out := make([]shared.AggregateRoot, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Aggregate
	}
	return out
}

// PublishPending 对每个聚合根：取出 PendingEvents → sink.Publish → 成功后 ClearEvents
// 某个聚合根失败不影响其余聚合根；失败汇总为 *PublicationError
// sink 为 nil 时不做任何事，事件保留在缓冲区
func PublishPending(ctx context.Context, sink shared.EventSink, aggregates []shared.AggregateRoot) error {
	if sink == nil {
		return nil
	}
	var failures []PublicationFailure
	for _, agg := range dedupe(aggregates) {
		events := agg.PendingEvents()
		if len(events) == 0 {
			continue
		}
		kind := agg.DeclaredKind()
		if err := sink.Publish(ctx, agg, events); err != nil {
			metrics.EventsPublished.WithLabelValues(kind, "error").Add(float64(len(events)))
			logger.Warn("Domain event publication failed, events kept on aggregate",
				zap.String("aggregate", kind),
				zap.String("aggregate_id", agg.IdentifierString()),
				zap.Int("events", len(events)),
				zap.Error(err),
			)
			failures = append(failures, PublicationFailure{Aggregate: agg, Err: err})
			continue
		}
		metrics.EventsPublished.WithLabelValues(kind, "ok").Add(float64(len(events)))
		agg.ClearEvents()
	}
	if len(failures) > 0 {
		return &PublicationError{Failures: failures}
	}
	return nil
}

// IsPublicationError 事务已提交、仅发布失败
func IsPublicationError(err error) bool {
	var pubErr *PublicationError
	return errors.As(err, &pubErr)
}

func dedupe(aggregates []shared.AggregateRoot) []shared.AggregateRoot {
	out := make([]shared.AggregateRoot, 0, len(aggregates))
	seen := make(map[shared.AggregateRoot]struct{}, len(aggregates))
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		if _, ok := seen[agg]; ok {
			continue
		}
		seen[agg] = struct{}{}
		out = append(out, agg)
	}
	return out
}

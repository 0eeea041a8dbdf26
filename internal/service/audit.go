package service

import (
	"context"

	"meridian/internal/core"
	fluentdModel "meridian/internal/database/fluentd/model"
	fluentdRepo "meridian/internal/database/fluentd/repository"
	"meridian/internal/database/mongodb/model"
	"meridian/internal/dto"
	"meridian/internal/telemetry"

	"go.uber.org/zap"
)

// mutationSink 集中發送異動事件：Prometheus 計數 + Fluentd 集中紀錄。
// Mongo 端的 *_histories 才是權威紀錄，這裡都是 best-effort。
type mutationSink struct {
	metric  *telemetry.Metric
	logRepo *fluentdRepo.LogRepository
	logger  *zap.Logger
}

func (sink *mutationSink) emit(ctx context.Context, resource core.Resource, entityID string, action core.AuditAction, field, actorID, reason string) {
	if sink.metric != nil && sink.metric.MutationTotal != nil {
		sink.metric.MutationTotal.WithLabelValues(string(resource), string(action)).Inc()
	}
	if sink.logRepo == nil {
		return
	}
	if err := sink.logRepo.LogMutation(ctx, fluentdModel.MutationLog{
		EntityType: string(resource),
		EntityID:   entityID,
		Action:     string(action),
		Field:      field,
		ActorID:    actorID,
		Reason:     reason,
	}); err != nil {
		sink.logger.Warn("failed to ship mutation log", zap.Error(err))
	}
}

func modelToHistoryResponseDto(m *model.AuditHistory) *dto.HistoryResponseDto {
	return &dto.HistoryResponseDto{
		ID:        m.ID.Hex(),
		EntityID:  m.EntityID.Hex(),
		Action:    m.Action,
		Field:     m.Field,
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
		ActorID:   m.ActorID.Hex(),
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}

func modelToStatusChangeDtos(changes []model.StatusChange) []dto.StatusChangeDto {
	if len(changes) == 0 {
		return nil
	}
	out := make([]dto.StatusChangeDto, len(changes))
	for i, c := range changes {
		out[i] = dto.StatusChangeDto{
			Status:    c.Status,
			Reason:    c.Reason,
			ChangedBy: c.ChangedBy.Hex(),
			ChangedAt: c.ChangedAt,
		}
	}
	return out
}

package service

import (
	"context"
	"errors"
	"time"

	"meridian/config"
	"meridian/internal/core"
	"meridian/internal/database/mongodb/repository"
	redisRepo "meridian/internal/database/redis/repository"
	"meridian/internal/telemetry"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultPermissionTTLSeconds = 3600

type PermissionService struct {
	trace        *telemetry.Trace
	logger       *zap.Logger
	metric       *telemetry.Metric
	cache        *redisRepo.PermissionCacheRepository
	ttl          time.Duration
	branchRepo   *repository.BranchRepository
	divisionRepo *repository.DivisionRepository
	positionRepo *repository.PositionRepository
	areaRepo     *repository.ServiceAreaRepository
}

func NewPermissionService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	metric *telemetry.Metric,
	conf *config.Configuration,
	cache *redisRepo.PermissionCacheRepository,
	branchRepo *repository.BranchRepository,
	divisionRepo *repository.DivisionRepository,
	positionRepo *repository.PositionRepository,
	areaRepo *repository.ServiceAreaRepository,
) *PermissionService {
	ttlSeconds := conf.Cache.PermissionTTLSeconds
	if ttlSeconds <= 0 {
		ttlSeconds = defaultPermissionTTLSeconds
	}
	return &PermissionService{
		trace:        trace,
		logger:       logger,
		metric:       metric,
		cache:        cache,
		ttl:          time.Duration(ttlSeconds) * time.Second,
		branchRepo:   branchRepo,
		divisionRepo: divisionRepo,
		positionRepo: positionRepo,
		areaRepo:     areaRepo,
	}
}

// Check 權限判定。判定失敗一律拒絕（fail-closed），不會因為快取或
// 資料庫故障而放行。targetID 非空時，授權不足會再嘗試 creator 擁有權。
func (s *PermissionService) Check(ctx context.Context, claims *core.Claims, resource core.Resource, action core.Action, targetID string) bool {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if claims == nil {
		return false
	}
	if claims.Role == core.RoleAdmin {
		s.observe(span, claims, resource, action, targetID, "role", true)
		return true
	}

	if allowed, found, err := s.cache.Get(ctx, claims.UserID, string(resource), string(action), targetID); err == nil && found {
		s.observe(span, claims, resource, action, targetID, "cache", allowed)
		return allowed
	} else if err != nil {
		s.logger.Warn("permission cache read failed", zap.Error(err))
	}

	allowed := decide(claims, resource, action)
	if !allowed && targetID != "" {
		allowed = s.ownsTarget(ctx, claims, resource, targetID)
	}

	if err := s.cache.Set(ctx, claims.UserID, string(resource), string(action), targetID, allowed, s.ttl); err != nil {
		s.logger.Warn("permission cache write failed", zap.Error(err))
	}

	s.observe(span, claims, resource, action, targetID, "resolved", allowed)
	return allowed
}

// InvalidateUser 使用者權限異動後清掉其判定快取
func (s *PermissionService) InvalidateUser(ctx context.Context, userID string) error {
	return s.cache.InvalidateUser(ctx, userID)
}

// decide 純函式判定：逐條比對 token 內的授權項目。
// 放行形式：{resource,action}、{resource,manage}、{resource,*}、{*,*}；
// 資源為 * 時動作也必須是 *，不接受 {*,read} 這種半萬用授權。
func decide(claims *core.Claims, resource core.Resource, action core.Action) bool {
	for _, entry := range claims.Permissions {
		if entry.Resource == string(core.ResourceWildcard) {
			if entry.Action == string(core.ActionWildcard) {
				return true
			}
			continue
		}
		if entry.Resource != string(resource) {
			continue
		}
		if entry.Action == string(action) ||
			entry.Action == string(core.ActionManage) ||
			entry.Action == string(core.ActionWildcard) {
			return true
		}
	}
	return false
}

// ownsTarget 擁有權後備：目標資源的 createdBy 是本人即放行
func (s *PermissionService) ownsTarget(ctx context.Context, claims *core.Claims, resource core.Resource, targetID string) bool {
	id, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return false
	}
	creator, err := s.lookupCreator(ctx, resource, id)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("ownership lookup failed", zap.Error(err))
		}
		return false
	}
	return creator.Hex() == claims.UserID
}

func (s *PermissionService) lookupCreator(ctx context.Context, resource core.Resource, id primitive.ObjectID) (primitive.ObjectID, error) {
	switch resource {
	case core.ResourceBranch:
		branch, err := s.branchRepo.GetByID(ctx, id)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return branch.CreatedBy, nil
	case core.ResourceDivision:
		division, err := s.divisionRepo.GetByID(ctx, id)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return division.CreatedBy, nil
	case core.ResourcePosition:
		position, err := s.positionRepo.GetByID(ctx, id)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return position.CreatedBy, nil
	case core.ResourceServiceArea:
		area, err := s.areaRepo.GetByID(ctx, id)
		if err != nil {
			return primitive.NilObjectID, err
		}
		return area.CreatedBy, nil
	}
	return primitive.NilObjectID, mongo.ErrNoDocuments
}

func (s *PermissionService) observe(span trace.Span, claims *core.Claims, resource core.Resource, action core.Action, target, source string, allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	s.trace.ApplyTraceAttributes(span, core.TracePermissionMeta{
		UserID:   claims.UserID,
		Resource: string(resource),
		Action:   string(action),
		Target:   target,
		Source:   source,
		Allowed:  allowed,
	})
	if s.metric != nil && s.metric.PermissionDecisionTotal != nil {
		s.metric.PermissionDecisionTotal.
			WithLabelValues(string(resource), string(action), source, outcome).Inc()
	}
}

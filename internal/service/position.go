package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meridian/internal/core"
	client "meridian/internal/database/client"
	fluentdRepo "meridian/internal/database/fluentd/repository"
	"meridian/internal/database/mongodb/model"
	"meridian/internal/database/mongodb/repository"
	"meridian/internal/dto"
	"meridian/internal/hierarchy"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type PositionService struct {
	trace        *telemetry.Trace
	logger       *zap.Logger
	mongoClient  *client.MongoClient
	positionRepo *repository.PositionRepository
	historyRepo  *repository.PositionHistoryRepository
	divisionRepo *repository.DivisionRepository
	sink         mutationSink
}

func NewPositionService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	metric *telemetry.Metric,
	mongoClient *client.MongoClient,
	positionRepo *repository.PositionRepository,
	historyRepo *repository.PositionHistoryRepository,
	divisionRepo *repository.DivisionRepository,
	logRepo *fluentdRepo.LogRepository,
) *PositionService {
	return &PositionService{
		trace:        trace,
		logger:       logger,
		mongoClient:  mongoClient,
		positionRepo: positionRepo,
		historyRepo:  historyRepo,
		divisionRepo: divisionRepo,
		sink:         mutationSink{metric: metric, logRepo: logRepo, logger: logger},
	}
}

func (s *PositionService) resolveDivision(ctx context.Context, raw string) (*primitive.ObjectID, error) {
	divisionID, err := parseOptionalObjectID(raw)
	if err != nil {
		return nil, cErr.BadRequestParams("divisionId is not a valid id")
	}
	if divisionID == nil {
		return nil, nil
	}
	if _, err := s.divisionRepo.GetByID(ctx, *divisionID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("division not found")
		}
		return nil, cErr.DatabaseError("database lookup division error")
	}
	return divisionID, nil
}

// 建立職位；匯報鏈（reportingTo）構成職位自己的一棵樹
func (s *PositionService) CreatePosition(ctx context.Context, actorID primitive.ObjectID, in *dto.CreatePositionDto) (*dto.PositionResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	status := in.Status
	if status == "" {
		status = string(core.StatusActive)
	}
	if !validate.IsValidPositionStatus(status) {
		return nil, cErr.BadRequest(fmt.Sprintf("invalid position status %q", status))
	}

	divisionID, err := s.resolveDivision(ctx, in.DivisionID)
	if err != nil {
		return nil, err
	}
	reportingTo, err := parseOptionalObjectID(in.ReportingTo)
	if err != nil {
		return nil, cErr.InvalidParent("reportingTo is not a valid id")
	}

	id := primitive.NewObjectID()
	path, level, err := hierarchy.Compute(ctx, id, reportingTo, s.positionRepo.GetNode)
	if err != nil {
		if errors.Is(err, hierarchy.ErrParentNotFound) {
			return nil, cErr.ParentNotFound("reporting position not found")
		}
		return nil, cErr.DatabaseError("database CreatePosition error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
		EntityID: id.Hex(), ParentID: in.ReportingTo, Level: level, Op: "create",
	})

	position := &model.Position{
		ID:          id,
		Code:        in.Code,
		Title:       in.Title,
		DivisionID:  divisionID,
		ReportingTo: reportingTo,
		Path:        path,
		Level:       level,
		Grade:       in.Grade,
		Status:      status,
		StatusHistory: []model.StatusChange{{
			Status:    status,
			ChangedBy: actorID,
			ChangedAt: time.Now().UTC(),
		}},
		CreatedBy: actorID,
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, err := s.positionRepo.Create(sessionCtx, position); err != nil {
			return err
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: position.ID,
			Action:   string(core.AuditActionCreate),
			NewValue: position,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		if repository.IsDuplicateKey(txnErr) {
			return nil, cErr.DuplicateCode(fmt.Sprintf("position code %q already exists", in.Code))
		}
		return nil, cErr.DatabaseError("database CreatePosition error")
	}

	s.sink.emit(ctx, core.ResourcePosition, position.ID.Hex(), core.AuditActionCreate, "", actorID.Hex(), "")
	return modelToPositionResponseDto(position), nil
}

func (s *PositionService) GetPositionByID(ctx context.Context, id primitive.ObjectID) (*dto.PositionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	position, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("position not found")
		}
		return nil, cErr.DatabaseError("database GetPositionByID error")
	}
	return modelToPositionResponseDto(position), nil
}

func (s *PositionService) ListPositions(ctx context.Context, status, search, divisionID string, page, size int64) ([]*dto.PositionResponseDto, int64, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter := bson.M{}
	if status != "" {
		if !validate.IsValidPositionStatus(status) {
			return nil, 0, cErr.BadRequest(fmt.Sprintf("invalid position status %q", status))
		}
		filter["status"] = status
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"code": pattern}}
	}
	if divisionID != "" {
		did, err := primitive.ObjectIDFromHex(divisionID)
		if err != nil {
			return nil, 0, cErr.BadRequestParams("divisionId is not a valid id")
		}
		filter["divisionId"] = did
	}

	positions, total, err := s.positionRepo.List(ctx, core.ListOptions{Filter: filter, Page: page, Size: size})
	if err != nil {
		return nil, 0, cErr.DatabaseError("database ListPositions error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceListMeta{
		Page: page, Size: size, Status: status, ResultCount: len(positions), Total: total,
	})

	resp := make([]*dto.PositionResponseDto, len(positions))
	for i, p := range positions {
		resp[i] = modelToPositionResponseDto(p)
	}
	return resp, total, nil
}

func (s *PositionService) UpdatePosition(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdatePositionDto) (*dto.PositionResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("position not found")
		}
		return nil, cErr.DatabaseError("database UpdatePosition error")
	}

	update := bson.M{}
	var histories []*model.AuditHistory
	appendField := func(field string, oldValue, newValue any) {
		histories = append(histories, &model.AuditHistory{
			EntityID: id,
			Action:   string(core.AuditActionUpdate),
			Field:    field,
			OldValue: oldValue,
			NewValue: newValue,
			ActorID:  actorID,
		})
	}

	if in.Title != nil && *in.Title != existing.Title {
		update["title"] = *in.Title
		appendField("title", existing.Title, *in.Title)
	}
	if in.Grade != nil && *in.Grade != existing.Grade {
		if *in.Grade < 1 {
			return nil, cErr.BadRequest("grade must be at least 1")
		}
		update["grade"] = *in.Grade
		appendField("grade", existing.Grade, *in.Grade)
	}
	if in.DivisionID != nil {
		divisionID, resolveErr := s.resolveDivision(ctx, *in.DivisionID)
		if resolveErr != nil {
			return nil, resolveErr
		}
		if !sameParent(existing.DivisionID, divisionID) {
			update["divisionId"] = divisionID
			appendField("divisionId", dto.HexOrEmpty(existing.DivisionID), dto.HexOrEmpty(divisionID))
		}
	}

	var descendants []*model.Position
	var oldPath, newPath string
	var levelDelta int
	if in.ReportingTo != nil {
		newReporting, parseErr := parseOptionalObjectID(*in.ReportingTo)
		if parseErr != nil {
			return nil, cErr.InvalidParent("reportingTo is not a valid id")
		}
		if !sameParent(existing.ReportingTo, newReporting) {
			descendants, err = s.positionRepo.ListDescendants(ctx, existing.Path)
			if err != nil {
				return nil, cErr.DatabaseError("database UpdatePosition error")
			}
			if newReporting != nil {
				descendantIDs := make([]primitive.ObjectID, len(descendants))
				for i, d := range descendants {
					descendantIDs[i] = d.ID
				}
				if vErr := hierarchy.ValidateReparent(id, *newReporting, descendantIDs); vErr != nil {
					return nil, cErr.CircularReference("cannot report to a position in its own subtree")
				}
			}

			path, level, computeErr := hierarchy.Compute(ctx, id, newReporting, s.positionRepo.GetNode)
			if computeErr != nil {
				if errors.Is(computeErr, hierarchy.ErrParentNotFound) {
					return nil, cErr.ParentNotFound("reporting position not found")
				}
				return nil, cErr.DatabaseError("database UpdatePosition error")
			}
			oldPath, newPath = existing.Path, path
			levelDelta = level - existing.Level
			update["reportingTo"] = newReporting
			update["path"] = path
			update["level"] = level
			appendField("reportingTo", dto.HexOrEmpty(existing.ReportingTo), dto.HexOrEmpty(newReporting))

			s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
				EntityID:    id.Hex(),
				ParentID:    dto.HexOrEmpty(newReporting),
				Level:       level,
				Descendants: len(descendants),
				Op:          "reparent",
			})
		}
	}

	if len(update) == 0 {
		return modelToPositionResponseDto(existing), nil
	}
	update["updatedBy"] = actorID

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		matched, updateErr := s.positionRepo.UpdateByID(sessionCtx, id, update)
		if updateErr != nil {
			return updateErr
		}
		if matched == 0 {
			return mongo.ErrNoDocuments
		}
		if newPath != "" {
			if rebaseErr := s.positionRepo.RebasePaths(sessionCtx, descendants, oldPath, newPath, levelDelta); rebaseErr != nil {
				return rebaseErr
			}
		}
		for _, h := range histories {
			if appendErr := s.historyRepo.Append(sessionCtx, h); appendErr != nil {
				return appendErr
			}
		}
		return nil
	})
	if txnErr != nil {
		if errors.Is(txnErr, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("position not found")
		}
		return nil, cErr.DatabaseError("database UpdatePosition error")
	}

	s.sink.emit(ctx, core.ResourcePosition, id.Hex(), core.AuditActionUpdate, "", actorID.Hex(), "")
	return s.GetPositionByID(ctx, id)
}

func (s *PositionService) UpdatePositionStatus(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateStatusDto) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !validate.IsValidPositionStatus(in.Status) {
		return cErr.BadRequest(fmt.Sprintf("invalid position status %q", in.Status))
	}

	existing, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("position not found")
		}
		return cErr.DatabaseError("database UpdatePositionStatus error")
	}

	change := model.StatusChange{
		Status:    in.Status,
		Reason:    in.Reason,
		ChangedBy: actorID,
		ChangedAt: time.Now().UTC(),
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, updateErr := s.positionRepo.UpdateStatus(sessionCtx, id, change); updateErr != nil {
			return updateErr
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: id,
			Action:   string(core.AuditActionStatusChange),
			Field:    "status",
			OldValue: existing.Status,
			NewValue: in.Status,
			ActorID:  actorID,
			Reason:   in.Reason,
		})
	})
	if txnErr != nil {
		return cErr.DatabaseError("database UpdatePositionStatus error")
	}

	s.sink.emit(ctx, core.ResourcePosition, id.Hex(), core.AuditActionStatusChange, "status", actorID.Hex(), in.Reason)
	return nil
}

// 刪除；有下屬職位時拒絕
func (s *PositionService) DeletePosition(ctx context.Context, id, actorID primitive.ObjectID) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("position not found")
		}
		return cErr.DatabaseError("database DeletePosition error")
	}

	childCount, err := s.positionRepo.CountChildren(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeletePosition error")
	}
	if childCount > 0 {
		return cErr.DependencyHeld(fmt.Sprintf("position has %d direct reports", childCount))
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if deleteErr := s.positionRepo.DeleteByID(sessionCtx, id); deleteErr != nil {
			return deleteErr
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: id,
			Action:   string(core.AuditActionDelete),
			OldValue: existing,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		return cErr.DatabaseError("database DeletePosition error")
	}

	s.sink.emit(ctx, core.ResourcePosition, id.Hex(), core.AuditActionDelete, "", actorID.Hex(), "")
	return nil
}

func (s *PositionService) GetPositionChildren(ctx context.Context, id primitive.ObjectID) ([]*dto.PositionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetPositionByID(ctx, id); err != nil {
		return nil, err
	}
	children, err := s.positionRepo.ListChildren(ctx, id)
	if err != nil {
		return nil, cErr.DatabaseError("database GetPositionChildren error")
	}
	resp := make([]*dto.PositionResponseDto, len(children))
	for i, c := range children {
		resp[i] = modelToPositionResponseDto(c)
	}
	return resp, nil
}

func (s *PositionService) GetPositionDescendants(ctx context.Context, id primitive.ObjectID) ([]*dto.PositionTreeDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	root, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("position not found")
		}
		return nil, cErr.DatabaseError("database GetPositionDescendants error")
	}
	descendants, err := s.positionRepo.ListDescendants(ctx, root.Path)
	if err != nil {
		return nil, cErr.DatabaseError("database GetPositionDescendants error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
		EntityID: id.Hex(), Level: root.Level, Descendants: len(descendants), Op: "descendants",
	})

	nodes := make(map[primitive.ObjectID]*dto.PositionTreeDto, len(descendants))
	for _, d := range descendants {
		nodes[d.ID] = &dto.PositionTreeDto{PositionResponseDto: *modelToPositionResponseDto(d)}
	}
	var roots []*dto.PositionTreeDto
	for _, d := range descendants {
		node := nodes[d.ID]
		if d.ReportingTo != nil && *d.ReportingTo != id {
			if parent, ok := nodes[*d.ReportingTo]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *PositionService) GetPositionAncestors(ctx context.Context, id primitive.ObjectID) ([]*dto.PositionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	position, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("position not found")
		}
		return nil, cErr.DatabaseError("database GetPositionAncestors error")
	}
	ancestors, err := s.positionRepo.GetManyByIDs(ctx, hierarchy.AncestorIDs(position.Path))
	if err != nil {
		return nil, cErr.DatabaseError("database GetPositionAncestors error")
	}
	resp := make([]*dto.PositionResponseDto, len(ancestors))
	for i, a := range ancestors {
		resp[i] = modelToPositionResponseDto(a)
	}
	return resp, nil
}

func (s *PositionService) GetPositionHistory(ctx context.Context, id primitive.ObjectID, in *dto.HistoryQueryDto) ([]*dto.HistoryResponseDto, int64, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetPositionByID(ctx, id); err != nil {
		return nil, 0, err
	}
	query, err := parseHistoryQuery(in)
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.historyRepo.Query(ctx, id, query)
	if err != nil {
		return nil, 0, cErr.DatabaseError("database GetPositionHistory error")
	}
	resp := make([]*dto.HistoryResponseDto, len(records))
	for i, r := range records {
		resp[i] = modelToHistoryResponseDto(r)
	}
	return resp, total, nil
}

func modelToPositionResponseDto(m *model.Position) *dto.PositionResponseDto {
	return &dto.PositionResponseDto{
		ID:            m.ID.Hex(),
		Code:          m.Code,
		Title:         m.Title,
		DivisionID:    dto.HexOrEmpty(m.DivisionID),
		ReportingTo:   dto.HexOrEmpty(m.ReportingTo),
		Path:          m.Path,
		Level:         m.Level,
		Grade:         m.Grade,
		Status:        m.Status,
		StatusHistory: modelToStatusChangeDtos(m.StatusHistory),
		CreatedBy:     m.CreatedBy.Hex(),
		UpdatedBy:     hexOrEmptyValue(m.UpdatedBy),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

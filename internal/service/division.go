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

type DivisionService struct {
	trace        *telemetry.Trace
	logger       *zap.Logger
	mongoClient  *client.MongoClient
	divisionRepo *repository.DivisionRepository
	historyRepo  *repository.DivisionHistoryRepository
	branchRepo   *repository.BranchRepository
	positionRepo *repository.PositionRepository
	sink         mutationSink
}

func NewDivisionService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	metric *telemetry.Metric,
	mongoClient *client.MongoClient,
	divisionRepo *repository.DivisionRepository,
	historyRepo *repository.DivisionHistoryRepository,
	branchRepo *repository.BranchRepository,
	positionRepo *repository.PositionRepository,
	logRepo *fluentdRepo.LogRepository,
) *DivisionService {
	return &DivisionService{
		trace:        trace,
		logger:       logger,
		mongoClient:  mongoClient,
		divisionRepo: divisionRepo,
		historyRepo:  historyRepo,
		branchRepo:   branchRepo,
		positionRepo: positionRepo,
		sink:         mutationSink{metric: metric, logRepo: logRepo, logger: logger},
	}
}

// 驗證隸屬據點存在
func (s *DivisionService) resolveBranch(ctx context.Context, raw string) (*primitive.ObjectID, error) {
	branchID, err := parseOptionalObjectID(raw)
	if err != nil {
		return nil, cErr.BadRequestParams("branchId is not a valid id")
	}
	if branchID == nil {
		return nil, nil
	}
	if _, err := s.branchRepo.GetByID(ctx, *branchID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("branch not found")
		}
		return nil, cErr.DatabaseError("database lookup branch error")
	}
	return branchID, nil
}

// 建立部門
func (s *DivisionService) CreateDivision(ctx context.Context, actorID primitive.ObjectID, in *dto.CreateDivisionDto) (*dto.DivisionResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	status := in.Status
	if status == "" {
		status = string(core.StatusActive)
	}
	if !validate.IsValidDivisionStatus(status) {
		return nil, cErr.BadRequest(fmt.Sprintf("invalid division status %q", status))
	}

	branchID, err := s.resolveBranch(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	parentID, err := parseOptionalObjectID(in.ParentID)
	if err != nil {
		return nil, cErr.InvalidParent("parentId is not a valid id")
	}

	id := primitive.NewObjectID()
	path, level, err := hierarchy.Compute(ctx, id, parentID, s.divisionRepo.GetNode)
	if err != nil {
		if errors.Is(err, hierarchy.ErrParentNotFound) {
			return nil, cErr.ParentNotFound("parent division not found")
		}
		return nil, cErr.DatabaseError("database CreateDivision error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
		EntityID: id.Hex(), ParentID: in.ParentID, Level: level, Op: "create",
	})

	division := &model.Division{
		ID:          id,
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		BranchID:    branchID,
		ParentID:    parentID,
		Path:        path,
		Level:       level,
		Status:      status,
		StatusHistory: []model.StatusChange{{
			Status:    status,
			ChangedBy: actorID,
			ChangedAt: time.Now().UTC(),
		}},
		CreatedBy: actorID,
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, err := s.divisionRepo.Create(sessionCtx, division); err != nil {
			return err
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: division.ID,
			Action:   string(core.AuditActionCreate),
			NewValue: division,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		if repository.IsDuplicateKey(txnErr) {
			return nil, cErr.DuplicateCode(fmt.Sprintf("division code %q already exists", in.Code))
		}
		return nil, cErr.DatabaseError("database CreateDivision error")
	}

	s.sink.emit(ctx, core.ResourceDivision, division.ID.Hex(), core.AuditActionCreate, "", actorID.Hex(), "")
	return modelToDivisionResponseDto(division), nil
}

func (s *DivisionService) GetDivisionByID(ctx context.Context, id primitive.ObjectID) (*dto.DivisionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	division, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("division not found")
		}
		return nil, cErr.DatabaseError("database GetDivisionByID error")
	}
	return modelToDivisionResponseDto(division), nil
}

func (s *DivisionService) ListDivisions(ctx context.Context, status, search, branchID string, page, size int64) ([]*dto.DivisionResponseDto, int64, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter := bson.M{}
	if status != "" {
		if !validate.IsValidDivisionStatus(status) {
			return nil, 0, cErr.BadRequest(fmt.Sprintf("invalid division status %q", status))
		}
		filter["status"] = status
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"code": pattern}}
	}
	if branchID != "" {
		bid, err := primitive.ObjectIDFromHex(branchID)
		if err != nil {
			return nil, 0, cErr.BadRequestParams("branchId is not a valid id")
		}
		filter["branchId"] = bid
	}

	divisions, total, err := s.divisionRepo.List(ctx, core.ListOptions{Filter: filter, Page: page, Size: size})
	if err != nil {
		return nil, 0, cErr.DatabaseError("database ListDivisions error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceListMeta{
		Page: page, Size: size, Status: status, ResultCount: len(divisions), Total: total,
	})

	resp := make([]*dto.DivisionResponseDto, len(divisions))
	for i, d := range divisions {
		resp[i] = modelToDivisionResponseDto(d)
	}
	return resp, total, nil
}

func (s *DivisionService) UpdateDivision(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateDivisionDto) (*dto.DivisionResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("division not found")
		}
		return nil, cErr.DatabaseError("database UpdateDivision error")
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

	if in.Name != nil && *in.Name != existing.Name {
		update["name"] = *in.Name
		appendField("name", existing.Name, *in.Name)
	}
	if in.Description != nil && *in.Description != existing.Description {
		update["description"] = *in.Description
		appendField("description", existing.Description, *in.Description)
	}
	if in.BranchID != nil {
		branchID, resolveErr := s.resolveBranch(ctx, *in.BranchID)
		if resolveErr != nil {
			return nil, resolveErr
		}
		if !sameParent(existing.BranchID, branchID) {
			update["branchId"] = branchID
			appendField("branchId", dto.HexOrEmpty(existing.BranchID), dto.HexOrEmpty(branchID))
		}
	}

	var descendants []*model.Division
	var oldPath, newPath string
	var levelDelta int
	if in.ParentID != nil {
		newParentID, parseErr := parseOptionalObjectID(*in.ParentID)
		if parseErr != nil {
			return nil, cErr.InvalidParent("parentId is not a valid id")
		}
		if !sameParent(existing.ParentID, newParentID) {
			descendants, err = s.divisionRepo.ListDescendants(ctx, existing.Path)
			if err != nil {
				return nil, cErr.DatabaseError("database UpdateDivision error")
			}
			if newParentID != nil {
				descendantIDs := make([]primitive.ObjectID, len(descendants))
				for i, d := range descendants {
					descendantIDs[i] = d.ID
				}
				if vErr := hierarchy.ValidateReparent(id, *newParentID, descendantIDs); vErr != nil {
					return nil, cErr.CircularReference("cannot move a division under its own subtree")
				}
			}

			path, level, computeErr := hierarchy.Compute(ctx, id, newParentID, s.divisionRepo.GetNode)
			if computeErr != nil {
				if errors.Is(computeErr, hierarchy.ErrParentNotFound) {
					return nil, cErr.ParentNotFound("parent division not found")
				}
				return nil, cErr.DatabaseError("database UpdateDivision error")
			}
			oldPath, newPath = existing.Path, path
			levelDelta = level - existing.Level
			update["parentId"] = newParentID
			update["path"] = path
			update["level"] = level
			appendField("parentId", dto.HexOrEmpty(existing.ParentID), dto.HexOrEmpty(newParentID))

			s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
				EntityID:    id.Hex(),
				ParentID:    dto.HexOrEmpty(newParentID),
				Level:       level,
				Descendants: len(descendants),
				Op:          "reparent",
			})
		}
	}

	if len(update) == 0 {
		return modelToDivisionResponseDto(existing), nil
	}
	update["updatedBy"] = actorID

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		matched, updateErr := s.divisionRepo.UpdateByID(sessionCtx, id, update)
		if updateErr != nil {
			return updateErr
		}
		if matched == 0 {
			return mongo.ErrNoDocuments
		}
		if newPath != "" {
			if rebaseErr := s.divisionRepo.RebasePaths(sessionCtx, descendants, oldPath, newPath, levelDelta); rebaseErr != nil {
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
			return nil, cErr.NotFound("division not found")
		}
		return nil, cErr.DatabaseError("database UpdateDivision error")
	}

	s.sink.emit(ctx, core.ResourceDivision, id.Hex(), core.AuditActionUpdate, "", actorID.Hex(), "")
	return s.GetDivisionByID(ctx, id)
}

func (s *DivisionService) UpdateDivisionStatus(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateStatusDto) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !validate.IsValidDivisionStatus(in.Status) {
		return cErr.BadRequest(fmt.Sprintf("invalid division status %q", in.Status))
	}

	existing, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("division not found")
		}
		return cErr.DatabaseError("database UpdateDivisionStatus error")
	}

	change := model.StatusChange{
		Status:    in.Status,
		Reason:    in.Reason,
		ChangedBy: actorID,
		ChangedAt: time.Now().UTC(),
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, updateErr := s.divisionRepo.UpdateStatus(sessionCtx, id, change); updateErr != nil {
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
		return cErr.DatabaseError("database UpdateDivisionStatus error")
	}

	s.sink.emit(ctx, core.ResourceDivision, id.Hex(), core.AuditActionStatusChange, "status", actorID.Hex(), in.Reason)
	return nil
}

// 刪除；有下層部門或掛在此部門下的職位時拒絕
func (s *DivisionService) DeleteDivision(ctx context.Context, id, actorID primitive.ObjectID) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("division not found")
		}
		return cErr.DatabaseError("database DeleteDivision error")
	}

	childCount, err := s.divisionRepo.CountChildren(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeleteDivision error")
	}
	if childCount > 0 {
		return cErr.DependencyHeld(fmt.Sprintf("division has %d child divisions", childCount))
	}
	positionCount, err := s.positionRepo.CountByDivision(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeleteDivision error")
	}
	if positionCount > 0 {
		return cErr.DependencyHeld(fmt.Sprintf("division has %d positions", positionCount))
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if deleteErr := s.divisionRepo.DeleteByID(sessionCtx, id); deleteErr != nil {
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
		return cErr.DatabaseError("database DeleteDivision error")
	}

	s.sink.emit(ctx, core.ResourceDivision, id.Hex(), core.AuditActionDelete, "", actorID.Hex(), "")
	return nil
}

func (s *DivisionService) GetDivisionChildren(ctx context.Context, id primitive.ObjectID) ([]*dto.DivisionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetDivisionByID(ctx, id); err != nil {
		return nil, err
	}
	children, err := s.divisionRepo.ListChildren(ctx, id)
	if err != nil {
		return nil, cErr.DatabaseError("database GetDivisionChildren error")
	}
	resp := make([]*dto.DivisionResponseDto, len(children))
	for i, c := range children {
		resp[i] = modelToDivisionResponseDto(c)
	}
	return resp, nil
}

func (s *DivisionService) GetDivisionDescendants(ctx context.Context, id primitive.ObjectID) ([]*dto.DivisionTreeDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	root, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("division not found")
		}
		return nil, cErr.DatabaseError("database GetDivisionDescendants error")
	}
	descendants, err := s.divisionRepo.ListDescendants(ctx, root.Path)
	if err != nil {
		return nil, cErr.DatabaseError("database GetDivisionDescendants error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
		EntityID: id.Hex(), Level: root.Level, Descendants: len(descendants), Op: "descendants",
	})

	nodes := make(map[primitive.ObjectID]*dto.DivisionTreeDto, len(descendants))
	for _, d := range descendants {
		nodes[d.ID] = &dto.DivisionTreeDto{DivisionResponseDto: *modelToDivisionResponseDto(d)}
	}
	var roots []*dto.DivisionTreeDto
	for _, d := range descendants {
		node := nodes[d.ID]
		if d.ParentID != nil && *d.ParentID != id {
			if parent, ok := nodes[*d.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *DivisionService) GetDivisionAncestors(ctx context.Context, id primitive.ObjectID) ([]*dto.DivisionResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	division, err := s.divisionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("division not found")
		}
		return nil, cErr.DatabaseError("database GetDivisionAncestors error")
	}
	ancestors, err := s.divisionRepo.GetManyByIDs(ctx, hierarchy.AncestorIDs(division.Path))
	if err != nil {
		return nil, cErr.DatabaseError("database GetDivisionAncestors error")
	}
	resp := make([]*dto.DivisionResponseDto, len(ancestors))
	for i, a := range ancestors {
		resp[i] = modelToDivisionResponseDto(a)
	}
	return resp, nil
}

func (s *DivisionService) GetDivisionHistory(ctx context.Context, id primitive.ObjectID, in *dto.HistoryQueryDto) ([]*dto.HistoryResponseDto, int64, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetDivisionByID(ctx, id); err != nil {
		return nil, 0, err
	}
	query, err := parseHistoryQuery(in)
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.historyRepo.Query(ctx, id, query)
	if err != nil {
		return nil, 0, cErr.DatabaseError("database GetDivisionHistory error")
	}
	resp := make([]*dto.HistoryResponseDto, len(records))
	for i, r := range records {
		resp[i] = modelToHistoryResponseDto(r)
	}
	return resp, total, nil
}

func modelToDivisionResponseDto(m *model.Division) *dto.DivisionResponseDto {
	return &dto.DivisionResponseDto{
		ID:            m.ID.Hex(),
		Code:          m.Code,
		Name:          m.Name,
		Description:   m.Description,
		BranchID:      dto.HexOrEmpty(m.BranchID),
		ParentID:      dto.HexOrEmpty(m.ParentID),
		Path:          m.Path,
		Level:         m.Level,
		Status:        m.Status,
		StatusHistory: modelToStatusChangeDtos(m.StatusHistory),
		CreatedBy:     m.CreatedBy.Hex(),
		UpdatedBy:     hexOrEmptyValue(m.UpdatedBy),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

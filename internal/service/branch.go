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

type BranchService struct {
	trace           *telemetry.Trace
	logger          *zap.Logger
	mongoClient     *client.MongoClient
	branchRepo      *repository.BranchRepository
	historyRepo     *repository.BranchHistoryRepository
	divisionRepo    *repository.DivisionRepository
	serviceAreaRepo *repository.ServiceAreaRepository
	sink            mutationSink
}

func NewBranchService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	metric *telemetry.Metric,
	mongoClient *client.MongoClient,
	branchRepo *repository.BranchRepository,
	historyRepo *repository.BranchHistoryRepository,
	divisionRepo *repository.DivisionRepository,
	serviceAreaRepo *repository.ServiceAreaRepository,
	logRepo *fluentdRepo.LogRepository,
) *BranchService {
	return &BranchService{
		trace:           trace,
		logger:          logger,
		mongoClient:     mongoClient,
		branchRepo:      branchRepo,
		historyRepo:     historyRepo,
		divisionRepo:    divisionRepo,
		serviceAreaRepo: serviceAreaRepo,
		sink:            mutationSink{metric: metric, logRepo: logRepo, logger: logger},
	}
}

// 建立分支據點；path/level 由上層節點推導
func (s *BranchService) CreateBranch(ctx context.Context, actorID primitive.ObjectID, in *dto.CreateBranchDto) (*dto.BranchResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	status := in.Status
	if status == "" {
		status = string(core.StatusActive)
	}
	if !validate.IsValidBranchStatus(status) {
		return nil, cErr.BadRequest(fmt.Sprintf("invalid branch status %q", status))
	}

	parentID, err := parseOptionalObjectID(in.ParentID)
	if err != nil {
		return nil, cErr.InvalidParent("parentId is not a valid id")
	}

	id := primitive.NewObjectID()
	path, level, err := hierarchy.Compute(ctx, id, parentID, s.branchRepo.GetNode)
	if err != nil {
		if errors.Is(err, hierarchy.ErrParentNotFound) {
			return nil, cErr.ParentNotFound("parent branch not found")
		}
		return nil, cErr.DatabaseError("database CreateBranch error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
		EntityID: id.Hex(),
		ParentID: in.ParentID,
		Level:    level,
		Op:       "create",
	})

	branch := &model.Branch{
		ID:       id,
		Code:     in.Code,
		Name:     in.Name,
		ParentID: parentID,
		Path:     path,
		Level:    level,
		Address:  in.Address,
		Phone:    in.Phone,
		Status:   status,
		StatusHistory: []model.StatusChange{{
			Status:    status,
			ChangedBy: actorID,
			ChangedAt: time.Now().UTC(),
		}},
		CreatedBy: actorID,
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, err := s.branchRepo.Create(sessionCtx, branch); err != nil {
			return err
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: branch.ID,
			Action:   string(core.AuditActionCreate),
			NewValue: branch,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		if repository.IsDuplicateKey(txnErr) {
			return nil, cErr.DuplicateCode(fmt.Sprintf("branch code %q already exists", in.Code))
		}
		return nil, cErr.DatabaseError("database CreateBranch error")
	}

	s.sink.emit(ctx, core.ResourceBranch, branch.ID.Hex(), core.AuditActionCreate, "", actorID.Hex(), "")
	return modelToBranchResponseDto(branch), nil
}

// 依 id 查詢
func (s *BranchService) GetBranchByID(ctx context.Context, id primitive.ObjectID) (*dto.BranchResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("branch not found")
		}
		return nil, cErr.DatabaseError("database GetBranchByID error")
	}
	return modelToBranchResponseDto(branch), nil
}

// 分頁列舉（支援 status 與 name/code 關鍵字）
func (s *BranchService) ListBranches(ctx context.Context, status, search string, page, size int64) ([]*dto.BranchResponseDto, int64, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter := bson.M{}
	if status != "" {
		if !validate.IsValidBranchStatus(status) {
			return nil, 0, cErr.BadRequest(fmt.Sprintf("invalid branch status %q", status))
		}
		filter["status"] = status
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"code": pattern}}
	}

	branches, total, err := s.branchRepo.List(ctx, core.ListOptions{Filter: filter, Page: page, Size: size})
	if err != nil {
		return nil, 0, cErr.DatabaseError("database ListBranches error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceListMeta{
		Page: page, Size: size, Status: status, ResultCount: len(branches), Total: total,
	})

	resp := make([]*dto.BranchResponseDto, len(branches))
	for i, b := range branches {
		resp[i] = modelToBranchResponseDto(b)
	}
	return resp, total, nil
}

// 更新基本資訊；帶 parentId 時觸發搬移（連同整棵子樹換 path）
func (s *BranchService) UpdateBranch(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateBranchDto) (*dto.BranchResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("branch not found")
		}
		return nil, cErr.DatabaseError("database UpdateBranch error")
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
	if in.Address != nil && *in.Address != existing.Address {
		update["address"] = *in.Address
		appendField("address", existing.Address, *in.Address)
	}
	if in.Phone != nil && *in.Phone != existing.Phone {
		update["phone"] = *in.Phone
		appendField("phone", existing.Phone, *in.Phone)
	}

	// 搬移子樹
	var descendants []*model.Branch
	var oldPath, newPath string
	var levelDelta int
	if in.ParentID != nil {
		newParentID, parseErr := parseOptionalObjectID(*in.ParentID)
		if parseErr != nil {
			return nil, cErr.InvalidParent("parentId is not a valid id")
		}
		if !sameParent(existing.ParentID, newParentID) {
			descendants, err = s.branchRepo.ListDescendants(ctx, existing.Path)
			if err != nil {
				return nil, cErr.DatabaseError("database UpdateBranch error")
			}
			if newParentID != nil {
				descendantIDs := make([]primitive.ObjectID, len(descendants))
				for i, d := range descendants {
					descendantIDs[i] = d.ID
				}
				if vErr := hierarchy.ValidateReparent(id, *newParentID, descendantIDs); vErr != nil {
					return nil, cErr.CircularReference("cannot move a branch under its own subtree")
				}
			}

			path, level, computeErr := hierarchy.Compute(ctx, id, newParentID, s.branchRepo.GetNode)
			if computeErr != nil {
				if errors.Is(computeErr, hierarchy.ErrParentNotFound) {
					return nil, cErr.ParentNotFound("parent branch not found")
				}
				return nil, cErr.DatabaseError("database UpdateBranch error")
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
		return modelToBranchResponseDto(existing), nil
	}
	update["updatedBy"] = actorID

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		matched, updateErr := s.branchRepo.UpdateByID(sessionCtx, id, update)
		if updateErr != nil {
			return updateErr
		}
		if matched == 0 {
			return mongo.ErrNoDocuments
		}
		if newPath != "" {
			if rebaseErr := s.branchRepo.RebasePaths(sessionCtx, descendants, oldPath, newPath, levelDelta); rebaseErr != nil {
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
			return nil, cErr.NotFound("branch not found")
		}
		return nil, cErr.DatabaseError("database UpdateBranch error")
	}

	s.sink.emit(ctx, core.ResourceBranch, id.Hex(), core.AuditActionUpdate, "", actorID.Hex(), "")
	return s.GetBranchByID(ctx, id)
}

// 狀態變更（含 statusHistory 與異動紀錄）
func (s *BranchService) UpdateBranchStatus(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateStatusDto) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !validate.IsValidBranchStatus(in.Status) {
		return cErr.BadRequest(fmt.Sprintf("invalid branch status %q", in.Status))
	}

	existing, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("branch not found")
		}
		return cErr.DatabaseError("database UpdateBranchStatus error")
	}

	change := model.StatusChange{
		Status:    in.Status,
		Reason:    in.Reason,
		ChangedBy: actorID,
		ChangedAt: time.Now().UTC(),
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, updateErr := s.branchRepo.UpdateStatus(sessionCtx, id, change); updateErr != nil {
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
		return cErr.DatabaseError("database UpdateBranchStatus error")
	}

	s.sink.emit(ctx, core.ResourceBranch, id.Hex(), core.AuditActionStatusChange, "status", actorID.Hex(), in.Reason)
	return nil
}

// 刪除；有下層據點、部門或服務區域指派時拒絕
func (s *BranchService) DeleteBranch(ctx context.Context, id, actorID primitive.ObjectID) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("branch not found")
		}
		return cErr.DatabaseError("database DeleteBranch error")
	}

	childCount, err := s.branchRepo.CountChildren(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeleteBranch error")
	}
	if childCount > 0 {
		return cErr.DependencyHeld(fmt.Sprintf("branch has %d child branches", childCount))
	}
	divisionCount, err := s.divisionRepo.CountByBranch(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeleteBranch error")
	}
	if divisionCount > 0 {
		return cErr.DependencyHeld(fmt.Sprintf("branch has %d divisions", divisionCount))
	}
	areaCount, err := s.serviceAreaRepo.CountByBranch(ctx, id)
	if err != nil {
		return cErr.DatabaseError("database DeleteBranch error")
	}
	if areaCount > 0 {
		return cErr.DependencyHeld(fmt.Sprintf("branch is assigned to %d service areas", areaCount))
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if deleteErr := s.branchRepo.DeleteByID(sessionCtx, id); deleteErr != nil {
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
		return cErr.DatabaseError("database DeleteBranch error")
	}

	s.sink.emit(ctx, core.ResourceBranch, id.Hex(), core.AuditActionDelete, "", actorID.Hex(), "")
	return nil
}

// 直接下層
func (s *BranchService) GetBranchChildren(ctx context.Context, id primitive.ObjectID) ([]*dto.BranchResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetBranchByID(ctx, id); err != nil {
		return nil, err
	}
	children, err := s.branchRepo.ListChildren(ctx, id)
	if err != nil {
		return nil, cErr.DatabaseError("database GetBranchChildren error")
	}
	resp := make([]*dto.BranchResponseDto, len(children))
	for i, c := range children {
		resp[i] = modelToBranchResponseDto(c)
	}
	return resp, nil
}

// 整棵子樹（展開成巢狀結構）
func (s *BranchService) GetBranchDescendants(ctx context.Context, id primitive.ObjectID) ([]*dto.BranchTreeDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	root, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("branch not found")
		}
		return nil, cErr.DatabaseError("database GetBranchDescendants error")
	}
	descendants, err := s.branchRepo.ListDescendants(ctx, root.Path)
	if err != nil {
		return nil, cErr.DatabaseError("database GetBranchDescendants error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceHierarchyMeta{
		EntityID: id.Hex(), Level: root.Level, Descendants: len(descendants), Op: "descendants",
	})

	nodes := make(map[primitive.ObjectID]*dto.BranchTreeDto, len(descendants))
	for _, d := range descendants {
		nodes[d.ID] = &dto.BranchTreeDto{BranchResponseDto: *modelToBranchResponseDto(d)}
	}
	var roots []*dto.BranchTreeDto
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

// 祖先鏈（root → 直屬上層）
func (s *BranchService) GetBranchAncestors(ctx context.Context, id primitive.ObjectID) ([]*dto.BranchResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("branch not found")
		}
		return nil, cErr.DatabaseError("database GetBranchAncestors error")
	}
	ancestors, err := s.branchRepo.GetManyByIDs(ctx, hierarchy.AncestorIDs(branch.Path))
	if err != nil {
		return nil, cErr.DatabaseError("database GetBranchAncestors error")
	}
	resp := make([]*dto.BranchResponseDto, len(ancestors))
	for i, a := range ancestors {
		resp[i] = modelToBranchResponseDto(a)
	}
	return resp, nil
}

// 異動紀錄查詢
func (s *BranchService) GetBranchHistory(ctx context.Context, id primitive.ObjectID, in *dto.HistoryQueryDto) ([]*dto.HistoryResponseDto, int64, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetBranchByID(ctx, id); err != nil {
		return nil, 0, err
	}
	query, err := parseHistoryQuery(in)
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.historyRepo.Query(ctx, id, query)
	if err != nil {
		return nil, 0, cErr.DatabaseError("database GetBranchHistory error")
	}
	resp := make([]*dto.HistoryResponseDto, len(records))
	for i, r := range records {
		resp[i] = modelToHistoryResponseDto(r)
	}
	return resp, total, nil
}

func modelToBranchResponseDto(m *model.Branch) *dto.BranchResponseDto {
	return &dto.BranchResponseDto{
		ID:            m.ID.Hex(),
		Code:          m.Code,
		Name:          m.Name,
		ParentID:      dto.HexOrEmpty(m.ParentID),
		Path:          m.Path,
		Level:         m.Level,
		Address:       m.Address,
		Phone:         m.Phone,
		Status:        m.Status,
		StatusHistory: modelToStatusChangeDtos(m.StatusHistory),
		CreatedBy:     m.CreatedBy.Hex(),
		UpdatedBy:     hexOrEmptyValue(m.UpdatedBy),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ==== 共用小工具 ====

func parseOptionalObjectID(raw string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func hexOrEmptyValue(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func parseHistoryQuery(in *dto.HistoryQueryDto) (repository.HistoryQuery, error) {
	query := repository.HistoryQuery{Page: in.Page, Limit: in.Limit}
	if in.Action != "" {
		if !validate.IsValidAuditAction(in.Action) {
			return query, cErr.BadRequestParams(fmt.Sprintf("invalid history action %q", in.Action))
		}
		query.Action = in.Action
	}
	if in.From != "" {
		from, err := time.Parse(time.RFC3339, in.From)
		if err != nil {
			return query, cErr.BadRequestParams("from must be RFC3339")
		}
		query.From = &from
	}
	if in.To != "" {
		to, err := time.Parse(time.RFC3339, in.To)
		if err != nil {
			return query, cErr.BadRequestParams("to must be RFC3339")
		}
		query.To = &to
	}
	return query, nil
}

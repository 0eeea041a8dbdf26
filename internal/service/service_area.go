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
	"meridian/internal/geo"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// 圓近似多邊形的頂點數
const circlePolygonPoints = 32

type ServiceAreaService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	metric      *telemetry.Metric
	mongoClient *client.MongoClient
	areaRepo    *repository.ServiceAreaRepository
	historyRepo *repository.ServiceAreaHistoryRepository
	branchRepo  *repository.BranchRepository
	sink        mutationSink
}

func NewServiceAreaService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	metric *telemetry.Metric,
	mongoClient *client.MongoClient,
	areaRepo *repository.ServiceAreaRepository,
	historyRepo *repository.ServiceAreaHistoryRepository,
	branchRepo *repository.BranchRepository,
	logRepo *fluentdRepo.LogRepository,
) *ServiceAreaService {
	return &ServiceAreaService{
		trace:       trace,
		logger:      logger,
		metric:      metric,
		mongoClient: mongoClient,
		areaRepo:    areaRepo,
		historyRepo: historyRepo,
		branchRepo:  branchRepo,
		sink:        mutationSink{metric: metric, logRepo: logRepo, logger: logger},
	}
}

// resolveGeometry 整理輸入幾何：
//   - 有 boundaries：驗證封閉環與座標範圍，center 沒給就取形心
//   - 只有 center + coverageRadius：生成近似圓多邊形
func resolveGeometry(boundaries [][]float64, center []float64, radiusKm float64) (model.GeoPolygon, model.GeoPoint, error) {
	var polygon model.GeoPolygon
	var point model.GeoPoint

	if len(boundaries) > 0 {
		if !geo.RingClosed(boundaries) {
			return polygon, point, cErr.InvalidGeometry("boundaries must be a closed ring with at least 4 vertices")
		}
		for _, vertex := range boundaries {
			if len(vertex) != 2 || !geo.ValidLonLat(vertex[0], vertex[1]) {
				return polygon, point, cErr.InvalidGeometry("boundary vertices must be [lon, lat] pairs")
			}
		}
		polygon = model.NewGeoPolygon(boundaries)
		if len(center) == 2 {
			if !geo.ValidLonLat(center[0], center[1]) {
				return polygon, point, cErr.InvalidGeometry("center must be a [lon, lat] pair")
			}
			point = model.NewGeoPoint(center[0], center[1])
		} else {
			lon, lat := geo.Centroid(boundaries)
			point = model.NewGeoPoint(lon, lat)
		}
		return polygon, point, nil
	}

	if len(center) == 2 && radiusKm > 0 {
		if !geo.ValidLonLat(center[0], center[1]) {
			return polygon, point, cErr.InvalidGeometry("center must be a [lon, lat] pair")
		}
		ring := geo.CirclePolygon(center[1], center[0], radiusKm, circlePolygonPoints)
		return model.NewGeoPolygon(ring), model.NewGeoPoint(center[0], center[1]), nil
	}

	return polygon, point, cErr.InvalidGeometry("either boundaries or center with coverageRadius is required")
}

// geometryUpdatePlan 一次部分更新要套用的幾何變動
type geometryUpdatePlan struct {
	setBoundaries bool
	boundaries    model.GeoPolygon
	setCenter     bool
	center        model.GeoPoint
}

// planGeometryUpdate 規劃部分更新的幾何寫入。
// 半徑是提示用欄位，單改半徑/中心不得動到既有的明確邊界；
// 只有在請求沒帶邊界、而且區域本來就沒有邊界可保留時才重新生成圓形多邊形。
func planGeometryUpdate(
	inBoundaries [][]float64,
	inCenter []float64,
	radiusSupplied bool,
	radius float64,
	existingRing [][]float64,
	existingCenter []float64,
) (geometryUpdatePlan, error) {
	var plan geometryUpdatePlan

	switch {
	case len(inBoundaries) > 0:
		polygon, center, err := resolveGeometry(inBoundaries, inCenter, radius)
		if err != nil {
			return plan, err
		}
		plan.setBoundaries, plan.boundaries = true, polygon
		plan.setCenter, plan.center = true, center

	case len(inCenter) == 2:
		if !geo.ValidLonLat(inCenter[0], inCenter[1]) {
			return plan, cErr.InvalidGeometry("center must be a [lon, lat] pair")
		}
		plan.setCenter, plan.center = true, model.NewGeoPoint(inCenter[0], inCenter[1])
		if len(existingRing) == 0 && radius > 0 {
			polygon, center, err := resolveGeometry(nil, inCenter, radius)
			if err != nil {
				return plan, err
			}
			plan.setBoundaries, plan.boundaries = true, polygon
			plan.setCenter, plan.center = true, center
		}

	case radiusSupplied:
		if len(existingRing) == 0 && radius > 0 && len(existingCenter) == 2 {
			polygon, center, err := resolveGeometry(nil, existingCenter, radius)
			if err != nil {
				return plan, err
			}
			plan.setBoundaries, plan.boundaries = true, polygon
			plan.setCenter, plan.center = true, center
		}
	}
	return plan, nil
}

// advisoryOverlaps 查出與指定幾何重疊的其他啟用區域。
// 重疊只做提示，不會擋下寫入。
func (s *ServiceAreaService) advisoryOverlaps(ctx context.Context, boundaries model.GeoPolygon, excludeID primitive.ObjectID) []dto.OverlapDto {
	overlapping, err := s.areaRepo.FindOverlapping(ctx, boundaries, excludeID)
	if err != nil {
		s.logger.Warn("overlap advisory query failed", zap.Error(err))
		return nil
	}
	if len(overlapping) == 0 {
		return nil
	}
	overlaps := make([]dto.OverlapDto, len(overlapping))
	for i, area := range overlapping {
		overlaps[i] = dto.OverlapDto{AreaID: area.ID.Hex(), AreaCode: area.Code, AreaName: area.Name}
		s.logger.Warn("service area boundaries overlap",
			zap.String("area", excludeID.Hex()),
			zap.String("overlapsWith", area.Code),
		)
	}
	if s.metric != nil && s.metric.OverlapAdvisoryTotal != nil {
		s.metric.OverlapAdvisoryTotal.WithLabelValues("write").Add(float64(len(overlaps)))
	}
	return overlaps
}

// 建立服務區域
func (s *ServiceAreaService) CreateServiceArea(ctx context.Context, actorID primitive.ObjectID, in *dto.CreateServiceAreaDto) (*dto.ServiceAreaResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	status := in.Status
	if status == "" {
		status = string(core.StatusActive)
	}
	if !validate.IsValidServiceAreaStatus(status) {
		return nil, cErr.BadRequest(fmt.Sprintf("invalid service area status %q", status))
	}
	if !validate.IsValidAreaType(in.AreaType) {
		return nil, cErr.BadRequest(fmt.Sprintf("invalid area type %q", in.AreaType))
	}

	polygon, center, err := resolveGeometry(in.Boundaries, in.Center, in.CoverageRadius)
	if err != nil {
		return nil, err
	}

	pricing, err := dtoToPricing(in.Pricing)
	if err != nil {
		return nil, err
	}

	area := &model.ServiceArea{
		ID:             primitive.NewObjectID(),
		Code:           in.Code,
		Name:           in.Name,
		Description:    in.Description,
		Boundaries:     polygon,
		Center:         center,
		CoverageRadius: in.CoverageRadius,
		AreaType:       in.AreaType,
		Pricing:        pricing,
		Status:         status,
		StatusHistory: []model.StatusChange{{
			Status:    status,
			ChangedBy: actorID,
			ChangedAt: time.Now().UTC(),
		}},
		CreatedBy: actorID,
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, err := s.areaRepo.Create(sessionCtx, area); err != nil {
			return err
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: area.ID,
			Action:   string(core.AuditActionCreate),
			NewValue: area,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		if repository.IsDuplicateKey(txnErr) {
			return nil, cErr.DuplicateCode(fmt.Sprintf("service area code %q already exists", in.Code))
		}
		return nil, cErr.DatabaseError("database CreateServiceArea error")
	}

	resp := modelToServiceAreaResponseDto(area)
	resp.Overlaps = s.advisoryOverlaps(ctx, area.Boundaries, area.ID)

	centerLon, centerLat := centerLonLat(area.Center)
	s.trace.ApplyTraceAttributes(span, core.TraceGeoMeta{
		Lon: centerLon, Lat: centerLat, Op: "create", AreaCode: area.Code, OverlapsN: len(resp.Overlaps),
	})

	s.sink.emit(ctx, core.ResourceServiceArea, area.ID.Hex(), core.AuditActionCreate, "", actorID.Hex(), "")
	return resp, nil
}

func (s *ServiceAreaService) GetServiceAreaByID(ctx context.Context, id primitive.ObjectID) (*dto.ServiceAreaResponseDto, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("service area not found")
		}
		return nil, cErr.DatabaseError("database GetServiceAreaByID error")
	}
	return modelToServiceAreaResponseDto(area), nil
}

func (s *ServiceAreaService) ListServiceAreas(ctx context.Context, status, search, areaType string, page, size int64) ([]*dto.ServiceAreaResponseDto, int64, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter := bson.M{}
	if status != "" {
		if !validate.IsValidServiceAreaStatus(status) {
			return nil, 0, cErr.BadRequest(fmt.Sprintf("invalid service area status %q", status))
		}
		filter["status"] = status
	}
	if areaType != "" {
		if !validate.IsValidAreaType(areaType) {
			return nil, 0, cErr.BadRequest(fmt.Sprintf("invalid area type %q", areaType))
		}
		filter["areaType"] = areaType
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"code": pattern}}
	}

	areas, total, err := s.areaRepo.List(ctx, core.ListOptions{Filter: filter, Page: page, Size: size})
	if err != nil {
		return nil, 0, cErr.DatabaseError("database ListServiceAreas error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceListMeta{
		Page: page, Size: size, Status: status, ResultCount: len(areas), Total: total,
	})

	resp := make([]*dto.ServiceAreaResponseDto, len(areas))
	for i, a := range areas {
		resp[i] = modelToServiceAreaResponseDto(a)
	}
	return resp, total, nil
}

func (s *ServiceAreaService) UpdateServiceArea(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateServiceAreaDto) (*dto.ServiceAreaResponseDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("service area not found")
		}
		return nil, cErr.DatabaseError("database UpdateServiceArea error")
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
	if in.AreaType != nil && *in.AreaType != existing.AreaType {
		if !validate.IsValidAreaType(*in.AreaType) {
			return nil, cErr.BadRequest(fmt.Sprintf("invalid area type %q", *in.AreaType))
		}
		update["areaType"] = *in.AreaType
		appendField("areaType", existing.AreaType, *in.AreaType)
	}

	radius := existing.CoverageRadius
	if in.CoverageRadius != nil {
		if *in.CoverageRadius < 0 {
			return nil, cErr.BadRequest("coverageRadius must be non-negative")
		}
		radius = *in.CoverageRadius
		update["coverageRadius"] = radius
		appendField("coverageRadius", existing.CoverageRadius, radius)
	}

	plan, planErr := planGeometryUpdate(in.Boundaries, in.Center, in.CoverageRadius != nil, radius,
		existing.Boundaries.OuterRing(), existing.Center.Coordinates)
	if planErr != nil {
		return nil, planErr
	}
	geometryChanged := plan.setBoundaries
	var newBoundaries model.GeoPolygon
	if plan.setBoundaries {
		newBoundaries = plan.boundaries
		update["boundaries"] = plan.boundaries
		appendField("boundaries", existing.Boundaries, plan.boundaries)
	}
	if plan.setCenter {
		update["center"] = plan.center
		if !plan.setBoundaries {
			appendField("center", existing.Center.Coordinates, plan.center.Coordinates)
		}
	}

	if len(update) == 0 {
		return modelToServiceAreaResponseDto(existing), nil
	}
	update["updatedBy"] = actorID

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		matched, updateErr := s.areaRepo.UpdateByID(sessionCtx, id, update)
		if updateErr != nil {
			return updateErr
		}
		if matched == 0 {
			return mongo.ErrNoDocuments
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
			return nil, cErr.NotFound("service area not found")
		}
		return nil, cErr.DatabaseError("database UpdateServiceArea error")
	}

	resp, err := s.GetServiceAreaByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if geometryChanged {
		resp.Overlaps = s.advisoryOverlaps(ctx, newBoundaries, id)
		s.trace.ApplyTraceAttributes(span, core.TraceGeoMeta{
			Op: "update", AreaCode: existing.Code, OverlapsN: len(resp.Overlaps),
		})
	}

	s.sink.emit(ctx, core.ResourceServiceArea, id.Hex(), core.AuditActionUpdate, "", actorID.Hex(), "")
	return resp, nil
}

func (s *ServiceAreaService) UpdateServiceAreaStatus(ctx context.Context, id, actorID primitive.ObjectID, in *dto.UpdateStatusDto) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !validate.IsValidServiceAreaStatus(in.Status) {
		return cErr.BadRequest(fmt.Sprintf("invalid service area status %q", in.Status))
	}

	existing, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("service area not found")
		}
		return cErr.DatabaseError("database UpdateServiceAreaStatus error")
	}

	change := model.StatusChange{
		Status:    in.Status,
		Reason:    in.Reason,
		ChangedBy: actorID,
		ChangedAt: time.Now().UTC(),
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, updateErr := s.areaRepo.UpdateStatus(sessionCtx, id, change); updateErr != nil {
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
		return cErr.DatabaseError("database UpdateServiceAreaStatus error")
	}

	s.sink.emit(ctx, core.ResourceServiceArea, id.Hex(), core.AuditActionStatusChange, "status", actorID.Hex(), in.Reason)
	return nil
}

func (s *ServiceAreaService) DeleteServiceArea(ctx context.Context, id, actorID primitive.ObjectID) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("service area not found")
		}
		return cErr.DatabaseError("database DeleteServiceArea error")
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if deleteErr := s.areaRepo.DeleteByID(sessionCtx, id); deleteErr != nil {
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
		return cErr.DatabaseError("database DeleteServiceArea error")
	}

	s.sink.emit(ctx, core.ResourceServiceArea, id.Hex(), core.AuditActionDelete, "", actorID.Hex(), "")
	return nil
}

// 指派分支據點；isPrimary=true 時先取消原本的主要指派
func (s *ServiceAreaService) AssignBranch(ctx context.Context, id, actorID primitive.ObjectID, in *dto.AssignBranchDto) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	branchID, err := primitive.ObjectIDFromHex(in.BranchID)
	if err != nil {
		return cErr.BadRequestParams("branchId is not a valid id")
	}
	if _, err := s.branchRepo.GetByID(ctx, branchID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("branch not found")
		}
		return cErr.DatabaseError("database AssignBranch error")
	}
	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("service area not found")
		}
		return cErr.DatabaseError("database AssignBranch error")
	}
	for _, assignment := range area.Branches {
		if assignment.BranchID == branchID {
			return cErr.Conflict("branch already assigned to this service area")
		}
	}

	assignment := model.BranchAssignment{
		BranchID:   branchID,
		IsPrimary:  in.IsPrimary,
		AssignedBy: actorID,
		AssignedAt: time.Now().UTC(),
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if in.IsPrimary {
			if clearErr := s.areaRepo.ClearPrimaryBranches(sessionCtx, id); clearErr != nil {
				return clearErr
			}
		}
		if _, pushErr := s.areaRepo.PushBranchAssignment(sessionCtx, id, assignment); pushErr != nil {
			return pushErr
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: id,
			Action:   string(core.AuditActionBranchAssignment),
			Field:    "branches",
			NewValue: assignment,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		return cErr.DatabaseError("database AssignBranch error")
	}

	s.sink.emit(ctx, core.ResourceServiceArea, id.Hex(), core.AuditActionBranchAssignment, "branches", actorID.Hex(), "")
	return nil
}

// 移除分支據點指派
func (s *ServiceAreaService) RemoveBranch(ctx context.Context, id, branchID, actorID primitive.ObjectID) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		modified, pullErr := s.areaRepo.PullBranchAssignment(sessionCtx, id, branchID)
		if pullErr != nil {
			return pullErr
		}
		if modified == 0 {
			return mongo.ErrNoDocuments
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: id,
			Action:   string(core.AuditActionBranchAssignment),
			Field:    "branches",
			OldValue: branchID.Hex(),
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		if errors.Is(txnErr, mongo.ErrNoDocuments) {
			return cErr.NotFound("branch assignment not found")
		}
		return cErr.DatabaseError("database RemoveBranch error")
	}

	s.sink.emit(ctx, core.ResourceServiceArea, id.Hex(), core.AuditActionBranchAssignment, "branches", actorID.Hex(), "")
	return nil
}

// 整塊更新計價設定
func (s *ServiceAreaService) UpdatePricing(ctx context.Context, id, actorID primitive.ObjectID, in *dto.PricingDto) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("service area not found")
		}
		return cErr.DatabaseError("database UpdatePricing error")
	}

	pricing, err := dtoToPricing(in)
	if err != nil {
		return err
	}

	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, updateErr := s.areaRepo.UpdatePricing(sessionCtx, id, pricing, actorID); updateErr != nil {
			return updateErr
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: id,
			Action:   string(core.AuditActionPricingUpdate),
			Field:    "pricing",
			OldValue: existing.Pricing,
			NewValue: pricing,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		return cErr.DatabaseError("database UpdatePricing error")
	}

	s.sink.emit(ctx, core.ResourceServiceArea, id.Hex(), core.AuditActionPricingUpdate, "pricing", actorID.Hex(), "")
	return nil
}

// FindByLocation 邊界包含指定座標的啟用區域
func (s *ServiceAreaService) FindByLocation(ctx context.Context, lon, lat float64) ([]*dto.ContainingAreaDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !geo.ValidLonLat(lon, lat) {
		return nil, cErr.InvalidGeometry("lon/lat out of range")
	}
	areas, err := s.areaRepo.FindContaining(ctx, lon, lat)
	if err != nil {
		return nil, cErr.DatabaseError("database FindByLocation error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceGeoMeta{
		Lon: lon, Lat: lat, Matches: len(areas), Op: "contains",
	})

	resp := make([]*dto.ContainingAreaDto, len(areas))
	for i, a := range areas {
		resp[i] = containingAreaDto(a, lon, lat)
	}
	return resp, nil
}

// containingAreaDto 附上查詢點到區域中心的距離，並用 coverageRadius 標記是否在正常服務距離內
func containingAreaDto(area *model.ServiceArea, lon, lat float64) *dto.ContainingAreaDto {
	out := &dto.ContainingAreaDto{ServiceAreaResponseDto: *modelToServiceAreaResponseDto(area)}
	if len(area.Center.Coordinates) == 2 {
		out.DistanceKm = geo.Haversine(lon, lat, area.Center.Coordinates[0], area.Center.Coordinates[1])
		out.WithinCoverage = area.CoverageRadius > 0 && out.DistanceKm <= area.CoverageRadius
	}
	return out
}

// FindNearby 距中心點 maxKm 內的啟用區域，近到遠排序並附上距離
func (s *ServiceAreaService) FindNearby(ctx context.Context, lon, lat, maxKm float64) ([]*dto.NearbyAreaDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !geo.ValidLonLat(lon, lat) {
		return nil, cErr.InvalidGeometry("lon/lat out of range")
	}
	areas, err := s.areaRepo.FindNearby(ctx, lon, lat, maxKm*1000)
	if err != nil {
		return nil, cErr.DatabaseError("database FindNearby error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceGeoMeta{
		Lon: lon, Lat: lat, MaxKm: maxKm, Matches: len(areas), Op: "nearby",
	})

	resp := make([]*dto.NearbyAreaDto, len(areas))
	for i, a := range areas {
		centerLon, centerLat := centerLonLat(a.Center)
		resp[i] = &dto.NearbyAreaDto{
			ServiceAreaResponseDto: *modelToServiceAreaResponseDto(a),
			DistanceKm:             geo.Haversine(lon, lat, centerLon, centerLat),
		}
	}
	return resp, nil
}

// GetOverlaps 指定區域目前與哪些啟用區域重疊
func (s *ServiceAreaService) GetOverlaps(ctx context.Context, id primitive.ObjectID) ([]dto.OverlapDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("service area not found")
		}
		return nil, cErr.DatabaseError("database GetOverlaps error")
	}
	overlapping, err := s.areaRepo.FindOverlapping(ctx, area.Boundaries, id)
	if err != nil {
		return nil, cErr.DatabaseError("database GetOverlaps error")
	}
	overlaps := make([]dto.OverlapDto, len(overlapping))
	for i, o := range overlapping {
		overlaps[i] = dto.OverlapDto{AreaID: o.ID.Hex(), AreaCode: o.Code, AreaName: o.Name}
	}

	s.trace.ApplyTraceAttributes(span, core.TraceGeoMeta{
		Op: "overlaps", AreaCode: area.Code, OverlapsN: len(overlaps),
	})
	return overlaps, nil
}

// ScanOverlaps 全量重疊掃描（夜間排程用），回傳發現的重疊對數
func (s *ServiceAreaService) ScanOverlaps(ctx context.Context) (int, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	areas, err := s.areaRepo.ListActive(ctx)
	if err != nil {
		return 0, cErr.DatabaseError("database ScanOverlaps error")
	}

	found := 0
	for i := range areas {
		for j := i + 1; j < len(areas); j++ {
			// bounding box 粗篩省掉絕大多數配對
			if !geo.BBoxOverlap(areas[i].Boundaries.OuterRing(), areas[j].Boundaries.OuterRing()) {
				continue
			}
			if ringsOverlap(areas[i].Boundaries.OuterRing(), areas[j].Boundaries.OuterRing()) {
				found++
				s.logger.Warn("service area boundaries overlap",
					zap.String("area", areas[i].Code),
					zap.String("overlapsWith", areas[j].Code),
				)
			}
		}
	}
	if found > 0 && s.metric != nil && s.metric.OverlapAdvisoryTotal != nil {
		s.metric.OverlapAdvisoryTotal.WithLabelValues("scan").Add(float64(found))
	}
	return found, nil
}

func (s *ServiceAreaService) GetServiceAreaHistory(ctx context.Context, id primitive.ObjectID, in *dto.HistoryQueryDto) ([]*dto.HistoryResponseDto, int64, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if _, err := s.GetServiceAreaByID(ctx, id); err != nil {
		return nil, 0, err
	}
	query, err := parseHistoryQuery(in)
	if err != nil {
		return nil, 0, err
	}
	records, total, err := s.historyRepo.Query(ctx, id, query)
	if err != nil {
		return nil, 0, cErr.DatabaseError("database GetServiceAreaHistory error")
	}
	resp := make([]*dto.HistoryResponseDto, len(records))
	for i, r := range records {
		resp[i] = modelToHistoryResponseDto(r)
	}
	return resp, total, nil
}

// ringsOverlap 頂點互含檢查；bounding box 粗篩之後的細篩
func ringsOverlap(a, b [][]float64) bool {
	for _, v := range a {
		if geo.ContainsPoint(b, v[0], v[1]) {
			return true
		}
	}
	for _, v := range b {
		if geo.ContainsPoint(a, v[0], v[1]) {
			return true
		}
	}
	return false
}

func centerLonLat(p model.GeoPoint) (float64, float64) {
	if len(p.Coordinates) != 2 {
		return 0, 0
	}
	return p.Coordinates[0], p.Coordinates[1]
}

func dtoToPricing(in *dto.PricingDto) (model.Pricing, error) {
	var pricing model.Pricing
	if in == nil {
		return pricing, nil
	}
	if in.BasePrice < 0 || in.PerKmRate < 0 || in.MinDistance < 0 || in.MaxDistance < 0 {
		return pricing, cErr.BadRequest("pricing values must be non-negative")
	}
	if in.MaxDistance > 0 && in.MaxDistance < in.MinDistance {
		return pricing, cErr.BadRequest("maxDistance must be >= minDistance")
	}
	pricing = model.Pricing{
		BasePrice:   in.BasePrice,
		PerKmRate:   in.PerKmRate,
		MinDistance: in.MinDistance,
		MaxDistance: in.MaxDistance,
	}
	for _, rate := range in.SpecialRates {
		if rate.Rate <= 0 {
			return pricing, cErr.BadRequest("special rate must be positive")
		}
		pricing.SpecialRates = append(pricing.SpecialRates, model.SpecialRate{
			Label:     rate.Label,
			Rate:      rate.Rate,
			StartHour: rate.StartHour,
			EndHour:   rate.EndHour,
		})
	}
	return pricing, nil
}

func pricingToDto(p model.Pricing) dto.PricingDto {
	out := dto.PricingDto{
		BasePrice:   p.BasePrice,
		PerKmRate:   p.PerKmRate,
		MinDistance: p.MinDistance,
		MaxDistance: p.MaxDistance,
	}
	for _, rate := range p.SpecialRates {
		out.SpecialRates = append(out.SpecialRates, dto.SpecialRateDto{
			Label:     rate.Label,
			Rate:      rate.Rate,
			StartHour: rate.StartHour,
			EndHour:   rate.EndHour,
		})
	}
	return out
}

func modelToServiceAreaResponseDto(m *model.ServiceArea) *dto.ServiceAreaResponseDto {
	resp := &dto.ServiceAreaResponseDto{
		ID:             m.ID.Hex(),
		Code:           m.Code,
		Name:           m.Name,
		Description:    m.Description,
		Boundaries:     m.Boundaries.OuterRing(),
		Center:         m.Center.Coordinates,
		CoverageRadius: m.CoverageRadius,
		AreaType:       m.AreaType,
		Pricing:        pricingToDto(m.Pricing),
		Status:         m.Status,
		StatusHistory:  modelToStatusChangeDtos(m.StatusHistory),
		CreatedBy:      m.CreatedBy.Hex(),
		UpdatedBy:      hexOrEmptyValue(m.UpdatedBy),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for _, assignment := range m.Branches {
		resp.Branches = append(resp.Branches, dto.BranchAssignmentDto{
			BranchID:   assignment.BranchID.Hex(),
			IsPrimary:  assignment.IsPrimary,
			AssignedBy: assignment.AssignedBy.Hex(),
			AssignedAt: assignment.AssignedAt,
		})
	}
	return resp
}

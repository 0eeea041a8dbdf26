package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"meridian/internal/core"
	client "meridian/internal/database/client"
	fluentdRepo "meridian/internal/database/fluentd/repository"
	"meridian/internal/database/mongodb/model"
	"meridian/internal/database/mongodb/repository"
	"meridian/internal/dto"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/service/areafile"
	"meridian/internal/telemetry"
	"meridian/utils/validate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ImportExportService struct {
	trace       *telemetry.Trace
	logger      *zap.Logger
	metric      *telemetry.Metric
	mongoClient *client.MongoClient
	areaRepo    *repository.ServiceAreaRepository
	historyRepo *repository.ServiceAreaHistoryRepository
	codecs      *areafile.CodecRegistry
	sink        mutationSink
}

func NewImportExportService(
	trace *telemetry.Trace,
	logger *zap.Logger,
	metric *telemetry.Metric,
	mongoClient *client.MongoClient,
	areaRepo *repository.ServiceAreaRepository,
	historyRepo *repository.ServiceAreaHistoryRepository,
	codecs *areafile.CodecRegistry,
	logRepo *fluentdRepo.LogRepository,
) *ImportExportService {
	return &ImportExportService{
		trace:       trace,
		logger:      logger,
		metric:      metric,
		mongoClient: mongoClient,
		areaRepo:    areaRepo,
		historyRepo: historyRepo,
		codecs:      codecs,
		sink:        mutationSink{metric: metric, logRepo: logRepo, logger: logger},
	}
}

// ImportServiceAreas 以 code 為鍵逐列 upsert；單列失敗不中斷整批，
// 收進結果的 errors 繼續處理下一列。
func (s *ImportExportService) ImportServiceAreas(ctx context.Context, actorID primitive.ObjectID, filename, contentEncoding string, body io.Reader) (*dto.ImportResultDto, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	payload, err := areafile.DecodeBody(body, contentEncoding)
	if err != nil {
		return nil, err
	}
	format, ok := areafile.DetectFormat(filename)
	if !ok {
		return nil, cErr.UnsupportedFormat(fmt.Sprintf("cannot detect format from filename %q", filename))
	}
	if strings.HasSuffix(strings.ToLower(filename), ".kmz") {
		if payload, err = areafile.ExtractKMZ(payload); err != nil {
			return nil, err
		}
	}
	codec, err := s.codecs.ByFormat(format)
	if err != nil {
		return nil, err
	}
	records, err := codec.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResultDto{Total: len(records)}
	countRow := func(outcome string) {
		if s.metric != nil && s.metric.ImportRowsTotal != nil {
			s.metric.ImportRowsTotal.WithLabelValues(format, outcome).Inc()
		}
	}
	for rowNumber, record := range records {
		outcome, rowErr := s.upsertRecord(ctx, actorID, record)
		if rowErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %s", rowNumber+1, record.Code, rowErr.Error()))
			countRow("failed")
			continue
		}
		if outcome == core.AuditActionCreate {
			result.Imported++
			countRow("imported")
		} else {
			result.Updated++
			countRow("updated")
		}
	}

	s.trace.ApplyTraceAttributes(span, core.TraceImportMeta{
		Format:   format,
		Encoding: contentEncoding,
		Rows:     result.Total,
		Imported: result.Imported + result.Updated,
		Failed:   result.Failed,
	})
	s.logger.Info("service area import finished",
		zap.String("format", format),
		zap.Int("rows", result.Total),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *ImportExportService) upsertRecord(ctx context.Context, actorID primitive.ObjectID, record areafile.Record) (core.AuditAction, error) {
	if record.Code == "" {
		return "", cErr.BadRequest("code is required")
	}
	if record.Name == "" {
		return "", cErr.BadRequest("name is required")
	}
	areaType := record.AreaType
	if areaType == "" {
		areaType = string(core.AreaTypeBoth)
	}
	if !validate.IsValidAreaType(areaType) {
		return "", cErr.BadRequest(fmt.Sprintf("invalid area type %q", areaType))
	}
	polygon, center, err := resolveGeometry(record.Boundaries, record.Center, record.CoverageRadius)
	if err != nil {
		return "", err
	}

	existing, err := s.areaRepo.GetByCode(ctx, record.Code)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", cErr.DatabaseError("database ImportServiceAreas error")
	}

	if existing == nil {
		area := &model.ServiceArea{
			ID:             primitive.NewObjectID(),
			Code:           record.Code,
			Name:           record.Name,
			Description:    record.Description,
			Boundaries:     polygon,
			Center:         center,
			CoverageRadius: record.CoverageRadius,
			AreaType:       areaType,
			Status:         string(core.StatusActive),
			StatusHistory: []model.StatusChange{{
				Status:    string(core.StatusActive),
				ChangedBy: actorID,
				ChangedAt: time.Now().UTC(),
			}},
			CreatedBy: actorID,
		}
		txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
			if _, createErr := s.areaRepo.Create(sessionCtx, area); createErr != nil {
				return createErr
			}
			return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
				EntityID: area.ID,
				Action:   string(core.AuditActionImport),
				NewValue: area,
				ActorID:  actorID,
			})
		})
		if txnErr != nil {
			return "", cErr.DatabaseError("database ImportServiceAreas error")
		}
		s.sink.emit(ctx, core.ResourceServiceArea, area.ID.Hex(), core.AuditActionImport, "", actorID.Hex(), "")
		return core.AuditActionCreate, nil
	}

	update := bson.M{
		"name":           record.Name,
		"description":    record.Description,
		"areaType":       areaType,
		"boundaries":     polygon,
		"center":         center,
		"coverageRadius": record.CoverageRadius,
		"updatedBy":      actorID,
	}
	txnErr := s.mongoClient.WithTransaction(ctx, func(sessionCtx context.Context) error {
		if _, updateErr := s.areaRepo.UpdateByID(sessionCtx, existing.ID, update); updateErr != nil {
			return updateErr
		}
		return s.historyRepo.Append(sessionCtx, &model.AuditHistory{
			EntityID: existing.ID,
			Action:   string(core.AuditActionImport),
			OldValue: existing,
			NewValue: update,
			ActorID:  actorID,
		})
	})
	if txnErr != nil {
		return "", cErr.DatabaseError("database ImportServiceAreas error")
	}
	s.sink.emit(ctx, core.ResourceServiceArea, existing.ID.Hex(), core.AuditActionImport, "", actorID.Hex(), "")
	return core.AuditActionUpdate, nil
}

// ExportServiceAreas 將全部區域以指定格式編碼，回傳內容與建議檔名。
func (s *ImportExportService) ExportServiceAreas(ctx context.Context, format string) ([]byte, string, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	codec, err := s.codecs.ByFormat(format)
	if err != nil {
		return nil, "", err
	}
	records, err := s.exportRecords(ctx)
	if err != nil {
		return nil, "", err
	}

	var buffer bytes.Buffer
	if err := codec.Encode(&buffer, records); err != nil {
		return nil, "", cErr.InternalServer("encode export error: " + err.Error())
	}

	s.trace.ApplyTraceAttributes(span, core.TraceImportMeta{Format: format, Rows: len(records)})
	return buffer.Bytes(), exportFilename(codec.Format()), nil
}

// ExportBundle 打包三種格式為單一 zip
func (s *ImportExportService) ExportBundle(ctx context.Context) ([]byte, string, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	records, err := s.exportRecords(ctx)
	if err != nil {
		return nil, "", err
	}

	entries := make([]areafile.BundleEntry, 0, 3)
	for _, format := range []areafile.Format{areafile.FormatGeoJSON, areafile.FormatCSV, areafile.FormatKML} {
		codec, codecErr := s.codecs.ByFormat(string(format))
		if codecErr != nil {
			return nil, "", codecErr
		}
		var buffer bytes.Buffer
		if encodeErr := codec.Encode(&buffer, records); encodeErr != nil {
			return nil, "", cErr.InternalServer("encode export error: " + encodeErr.Error())
		}
		entries = append(entries, areafile.BundleEntry{Name: exportFilename(format), Body: buffer.Bytes()})
	}

	var bundle bytes.Buffer
	if err := areafile.WriteBundle(&bundle, entries); err != nil {
		return nil, "", cErr.InternalServer("bundle export error: " + err.Error())
	}

	s.trace.ApplyTraceAttributes(span, core.TraceImportMeta{Format: "zip", Rows: len(records)})
	return bundle.Bytes(), "service-areas.zip", nil
}

func (s *ImportExportService) exportRecords(ctx context.Context) ([]areafile.Record, error) {
	areas, err := s.areaRepo.ListAll(ctx)
	if err != nil {
		return nil, cErr.DatabaseError("database ExportServiceAreas error")
	}
	records := make([]areafile.Record, len(areas))
	for i, area := range areas {
		records[i] = areafile.Record{
			Code:           area.Code,
			Name:           area.Name,
			Description:    area.Description,
			AreaType:       area.AreaType,
			Boundaries:     area.Boundaries.OuterRing(),
			Center:         area.Center.Coordinates,
			CoverageRadius: area.CoverageRadius,
		}
	}
	return records, nil
}

func exportFilename(format areafile.Format) string {
	switch format {
	case areafile.FormatGeoJSON:
		return "service-areas.geojson"
	case areafile.FormatCSV:
		return "service-areas.csv"
	default:
		return "service-areas.kml"
	}
}

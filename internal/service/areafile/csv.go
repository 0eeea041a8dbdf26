package areafile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	cErr "meridian/internal/pkg/error"
)

type CSVCodec struct{}

func (c *CSVCodec) Format() Format { return FormatCSV }

var csvHeader = []string{
	"code", "name", "description", "area_type",
	"center_lon", "center_lat", "coverage_radius_km", "boundaries",
}

// boundaries 欄位格式："lon lat;lon lat;..."（封閉環）
func (c *CSVCodec) Decode(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, cErr.InvalidGeometry("invalid CSV: " + err.Error())
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// 欄位順序以表頭為準
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["code"]; !ok {
		return nil, cErr.InvalidGeometry("CSV is missing a code column")
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]Record, 0, len(rows)-1)
	for rowNumber, row := range rows[1:] {
		record := Record{
			Code:        cell(row, "code"),
			Name:        cell(row, "name"),
			Description: cell(row, "description"),
			AreaType:    cell(row, "area_type"),
		}
		if raw := cell(row, "coverage_radius_km"); raw != "" {
			radius, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil {
				return nil, cErr.InvalidGeometry(fmt.Sprintf("row %d: invalid coverage_radius_km", rowNumber+2))
			}
			record.CoverageRadius = radius
		}
		lonRaw, latRaw := cell(row, "center_lon"), cell(row, "center_lat")
		if lonRaw != "" && latRaw != "" {
			lon, lonErr := strconv.ParseFloat(lonRaw, 64)
			lat, latErr := strconv.ParseFloat(latRaw, 64)
			if lonErr != nil || latErr != nil {
				return nil, cErr.InvalidGeometry(fmt.Sprintf("row %d: invalid center coordinates", rowNumber+2))
			}
			record.Center = []float64{lon, lat}
		}
		if raw := cell(row, "boundaries"); raw != "" {
			ring, parseErr := parseBoundaryCell(raw)
			if parseErr != nil {
				return nil, cErr.InvalidGeometry(fmt.Sprintf("row %d: %s", rowNumber+2, parseErr.Error()))
			}
			record.Boundaries = ring
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *CSVCodec) Encode(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, record := range records {
		var centerLon, centerLat string
		if len(record.Center) == 2 {
			centerLon = strconv.FormatFloat(record.Center[0], 'f', -1, 64)
			centerLat = strconv.FormatFloat(record.Center[1], 'f', -1, 64)
		}
		var radius string
		if record.CoverageRadius > 0 {
			radius = strconv.FormatFloat(record.CoverageRadius, 'f', -1, 64)
		}
		row := []string{
			record.Code, record.Name, record.Description, record.AreaType,
			centerLon, centerLat, radius, formatBoundaryCell(record.Boundaries),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseBoundaryCell(raw string) ([][]float64, error) {
	pairs := strings.Split(raw, ";")
	ring := make([][]float64, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) != 2 {
			return nil, fmt.Errorf("boundary vertex %q is not \"lon lat\"", pair)
		}
		lon, lonErr := strconv.ParseFloat(fields[0], 64)
		lat, latErr := strconv.ParseFloat(fields[1], 64)
		if lonErr != nil || latErr != nil {
			return nil, fmt.Errorf("boundary vertex %q is not numeric", pair)
		}
		ring = append(ring, []float64{lon, lat})
	}
	return ring, nil
}

func formatBoundaryCell(ring [][]float64) string {
	if len(ring) == 0 {
		return ""
	}
	parts := make([]string, len(ring))
	for i, vertex := range ring {
		parts[i] = strconv.FormatFloat(vertex[0], 'f', -1, 64) + " " + strconv.FormatFloat(vertex[1], 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

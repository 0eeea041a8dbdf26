package areafile

import (
	"encoding/json"
	"io"

	cErr "meridian/internal/pkg/error"
)

type GeoJSONCodec struct{}

func (c *GeoJSONCodec) Format() Format { return FormatGeoJSON }

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string           `json:"type"`
	Geometry   *geoJSONGeometry `json:"geometry"`
	Properties map[string]any   `json:"properties"`
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

// Decode 接受 FeatureCollection；Polygon 取外環，
// Point 搭配 properties.coverageRadius 視為圓形區域
func (c *GeoJSONCodec) Decode(r io.Reader) ([]Record, error) {
	var collection geoJSONCollection
	if err := json.NewDecoder(r).Decode(&collection); err != nil {
		return nil, cErr.InvalidGeometry("invalid GeoJSON: " + err.Error())
	}
	if collection.Type != "FeatureCollection" {
		return nil, cErr.InvalidGeometry("expected a GeoJSON FeatureCollection")
	}

	records := make([]Record, 0, len(collection.Features))
	for _, feature := range collection.Features {
		record := Record{
			Code:        stringProp(feature.Properties, "code"),
			Name:        stringProp(feature.Properties, "name"),
			Description: stringProp(feature.Properties, "description"),
			AreaType:    stringProp(feature.Properties, "areaType"),
		}
		record.CoverageRadius = floatProp(feature.Properties, "coverageRadius")

		if feature.Geometry != nil {
			switch feature.Geometry.Type {
			case "Polygon":
				var rings [][][]float64
				if err := json.Unmarshal(feature.Geometry.Coordinates, &rings); err != nil {
					return nil, cErr.InvalidGeometry("invalid Polygon coordinates")
				}
				if len(rings) > 0 {
					record.Boundaries = rings[0]
				}
			case "Point":
				var point []float64
				if err := json.Unmarshal(feature.Geometry.Coordinates, &point); err != nil {
					return nil, cErr.InvalidGeometry("invalid Point coordinates")
				}
				record.Center = point
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *GeoJSONCodec) Encode(w io.Writer, records []Record) error {
	collection := geoJSONCollection{Type: "FeatureCollection", Features: make([]geoJSONFeature, 0, len(records))}
	for _, record := range records {
		properties := map[string]any{
			"code":     record.Code,
			"name":     record.Name,
			"areaType": record.AreaType,
		}
		if record.Description != "" {
			properties["description"] = record.Description
		}
		if record.CoverageRadius > 0 {
			properties["coverageRadius"] = record.CoverageRadius
		}
		if len(record.Center) == 2 {
			properties["center"] = record.Center
		}

		coordinates, err := json.Marshal([][][]float64{record.Boundaries})
		if err != nil {
			return err
		}
		collection.Features = append(collection.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   &geoJSONGeometry{Type: "Polygon", Coordinates: coordinates},
			Properties: properties,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(collection)
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]any, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}

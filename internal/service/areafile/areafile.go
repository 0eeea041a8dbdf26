// Package areafile 服務區域的檔案匯入/匯出編解碼：
// GeoJSON、CSV、KML，外加 KMZ/壓縮傳輸的解包。
package areafile

import (
	"io"
	"strings"

	cErr "meridian/internal/pkg/error"
)

type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatCSV     Format = "csv"
	FormatKML     Format = "kml"
)

// Record 匯入/匯出用的中介資料列，與儲存層的 model 解耦
type Record struct {
	Code           string
	Name           string
	Description    string
	AreaType       string
	Boundaries     [][]float64 // 封閉外環，[lon, lat]
	Center         []float64   // [lon, lat]
	CoverageRadius float64     // 公里
}

// Codec 單一格式的編解碼
type Codec interface {
	Format() Format
	Decode(r io.Reader) ([]Record, error)
	Encode(w io.Writer, records []Record) error
}

// CodecRegistry 依格式名找 codec
type CodecRegistry struct {
	codecs map[Format]Codec
}

func NewCodecRegistry() *CodecRegistry {
	registry := &CodecRegistry{codecs: make(map[Format]Codec)}
	for _, codec := range []Codec{&GeoJSONCodec{}, &CSVCodec{}, &KMLCodec{}} {
		registry.codecs[codec.Format()] = codec
	}
	return registry
}

func (registry *CodecRegistry) ByFormat(format string) (Codec, error) {
	codec, ok := registry.codecs[Format(strings.ToLower(format))]
	if !ok {
		return nil, cErr.UnsupportedFormat("unsupported format " + format)
	}
	return codec, nil
}

// DetectFormat 從副檔名推斷格式；kmz 視為 kml（上層先解 zip）
func DetectFormat(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".geojson"), strings.HasSuffix(lower, ".json"):
		return string(FormatGeoJSON), true
	case strings.HasSuffix(lower, ".csv"):
		return string(FormatCSV), true
	case strings.HasSuffix(lower, ".kml"), strings.HasSuffix(lower, ".kmz"):
		return string(FormatKML), true
	}
	return "", false
}

package areafile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{
			Code:        "north-01",
			Name:        "北區一號",
			Description: "north side",
			AreaType:    "delivery",
			Boundaries:  [][]float64{{121.5, 25.0}, {121.6, 25.0}, {121.6, 25.1}, {121.5, 25.1}, {121.5, 25.0}},
			Center:      []float64{121.55, 25.05},
		},
		{
			Code:           "south-02",
			Name:           "南區二號",
			AreaType:       "pickup",
			Center:         []float64{120.3, 22.6},
			CoverageRadius: 3,
		},
	}
}

func TestCodecRegistry(t *testing.T) {
	registry := NewCodecRegistry()

	for _, format := range []string{"geojson", "csv", "kml", "GeoJSON"} {
		codec, err := registry.ByFormat(format)
		require.NoError(t, err)
		assert.NotNil(t, codec)
	}

	_, err := registry.ByFormat("shapefile")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]string{
		"areas.geojson": "geojson",
		"areas.json":    "geojson",
		"AREAS.CSV":     "csv",
		"areas.kml":     "kml",
		"areas.kmz":     "kml",
	}
	for filename, want := range cases {
		got, ok := DetectFormat(filename)
		require.True(t, ok, filename)
		assert.Equal(t, want, got, filename)
	}

	_, ok := DetectFormat("areas.shp")
	assert.False(t, ok)
}

func TestGeoJSONRoundTrip(t *testing.T) {
	codec := &GeoJSONCodec{}
	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, sampleRecords()))

	decoded, err := codec.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "north-01", decoded[0].Code)
	assert.Equal(t, "北區一號", decoded[0].Name)
	assert.Equal(t, "delivery", decoded[0].AreaType)
	assert.Len(t, decoded[0].Boundaries, 5)
	assert.Equal(t, []float64{121.5, 25.0}, decoded[0].Boundaries[0])

	assert.Equal(t, "south-02", decoded[1].Code)
	assert.Equal(t, float64(3), decoded[1].CoverageRadius)
}

func TestGeoJSONDecode_point(t *testing.T) {
	payload := `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [121.5, 25.0]},
			"properties": {"code": "p-1", "name": "point", "coverageRadius": 2.5}
		}]
	}`

	decoded, err := (&GeoJSONCodec{}).Decode(bytes.NewReader([]byte(payload)))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, []float64{121.5, 25.0}, decoded[0].Center)
	assert.Equal(t, 2.5, decoded[0].CoverageRadius)
}

func TestGeoJSONDecode_notACollection(t *testing.T) {
	_, err := (&GeoJSONCodec{}).Decode(bytes.NewReader([]byte(`{"type": "Feature"}`)))
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	codec := &CSVCodec{}
	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, sampleRecords()))

	decoded, err := codec.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "north-01", decoded[0].Code)
	assert.Equal(t, sampleRecords()[0].Boundaries, decoded[0].Boundaries)
	assert.Equal(t, []float64{121.55, 25.05}, decoded[0].Center)

	assert.Empty(t, decoded[1].Boundaries)
	assert.Equal(t, float64(3), decoded[1].CoverageRadius)
}

func TestCSVDecode_headerOrderIndependent(t *testing.T) {
	payload := "name,code,boundaries\nzone,z-1,121.5 25.0;121.6 25.0;121.6 25.1;121.5 25.0\n"

	decoded, err := (&CSVCodec{}).Decode(bytes.NewReader([]byte(payload)))
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "z-1", decoded[0].Code)
	assert.Equal(t, "zone", decoded[0].Name)
	assert.Len(t, decoded[0].Boundaries, 4)
}

func TestCSVDecode_missingCodeColumn(t *testing.T) {
	_, err := (&CSVCodec{}).Decode(bytes.NewReader([]byte("name,boundaries\nzone,\n")))
	assert.Error(t, err)
}

func TestCSVDecode_badBoundary(t *testing.T) {
	payload := "code,boundaries\nz-1,121.5\n"
	_, err := (&CSVCodec{}).Decode(bytes.NewReader([]byte(payload)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestKMLRoundTrip(t *testing.T) {
	codec := &KMLCodec{}
	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, sampleRecords()))
	assert.Contains(t, buf.String(), kmlNamespace)

	decoded, err := codec.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "north-01", decoded[0].Code)
	assert.Equal(t, "delivery", decoded[0].AreaType)
	assert.Equal(t, sampleRecords()[0].Boundaries, decoded[0].Boundaries)

	// 第二筆只有中心點 + 半徑
	assert.Equal(t, []float64{120.3, 22.6}, decoded[1].Center)
	assert.Equal(t, float64(3), decoded[1].CoverageRadius)
}

func TestKMLDecode_badCoordinates(t *testing.T) {
	payload := `<?xml version="1.0"?>
<kml><Document><Placemark>
  <name>bad</name>
  <Polygon><outerBoundaryIs><LinearRing><coordinates>not-a-coordinate</coordinates></LinearRing></outerBoundaryIs></Polygon>
</Placemark></Document></kml>`

	_, err := (&KMLCodec{}).Decode(bytes.NewReader([]byte(payload)))
	assert.Error(t, err)
}

func TestBundleAndKMZ(t *testing.T) {
	var kmlBuf bytes.Buffer
	require.NoError(t, (&KMLCodec{}).Encode(&kmlBuf, sampleRecords()))

	var archive bytes.Buffer
	require.NoError(t, WriteBundle(&archive, []BundleEntry{
		{Name: "readme.txt", Body: []byte("not kml")},
		{Name: "areas.kml", Body: kmlBuf.Bytes()},
	}))

	// KMZ 解包會跳過非 .kml 檔
	extracted, err := ExtractKMZ(archive.Bytes())
	require.NoError(t, err)
	assert.Equal(t, kmlBuf.Bytes(), extracted)

	decoded, err := (&KMLCodec{}).Decode(bytes.NewReader(extracted))
	require.NoError(t, err)
	assert.Len(t, decoded, 2)
}

func TestExtractKMZ_noKMLEntry(t *testing.T) {
	var archive bytes.Buffer
	require.NoError(t, WriteBundle(&archive, []BundleEntry{
		{Name: "readme.txt", Body: []byte("nothing here")},
	}))

	_, err := ExtractKMZ(archive.Bytes())
	assert.Error(t, err)
}

func TestExtractKMZ_notAnArchive(t *testing.T) {
	_, err := ExtractKMZ([]byte("plain text"))
	assert.Error(t, err)
}

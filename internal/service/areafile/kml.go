package areafile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	cErr "meridian/internal/pkg/error"
)

type KMLCodec struct{}

func (c *KMLCodec) Format() Format { return FormatKML }

const kmlNamespace = "http://www.opengis.net/kml/2.2"

// Decode 讀取每個 Placemark：Polygon 外環為邊界，Point + radius 為圓形範圍。
func (c *KMLCodec) Decode(r io.Reader) ([]Record, error) {
	document := etree.NewDocument()
	if _, err := document.ReadFrom(r); err != nil {
		return nil, cErr.InvalidGeometry("invalid KML: " + err.Error())
	}

	placemarks := document.FindElements("//Placemark")
	records := make([]Record, 0, len(placemarks))
	for i, placemark := range placemarks {
		record := Record{
			Name: elementText(placemark, "name"),
		}
		if description := elementText(placemark, "description"); description != "" {
			record.Description = description
		}
		for _, data := range placemark.FindElements("ExtendedData/Data") {
			value := elementText(data, "value")
			switch data.SelectAttrValue("name", "") {
			case "code":
				record.Code = value
			case "areaType":
				record.AreaType = value
			case "coverageRadius":
				if value != "" {
					radius, err := strconv.ParseFloat(value, 64)
					if err != nil {
						return nil, cErr.InvalidGeometry(fmt.Sprintf("placemark %d: invalid coverageRadius", i+1))
					}
					record.CoverageRadius = radius
				}
			}
		}

		if coordinates := placemark.FindElement("Polygon/outerBoundaryIs/LinearRing/coordinates"); coordinates != nil {
			ring, err := parseKMLCoordinates(coordinates.Text())
			if err != nil {
				return nil, cErr.InvalidGeometry(fmt.Sprintf("placemark %d: %s", i+1, err.Error()))
			}
			record.Boundaries = ring
		} else if coordinates := placemark.FindElement("Point/coordinates"); coordinates != nil {
			points, err := parseKMLCoordinates(coordinates.Text())
			if err != nil || len(points) != 1 {
				return nil, cErr.InvalidGeometry(fmt.Sprintf("placemark %d: invalid point coordinates", i+1))
			}
			record.Center = points[0]
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *KMLCodec) Encode(w io.Writer, records []Record) error {
	document := etree.NewDocument()
	document.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	kml := document.CreateElement("kml")
	kml.CreateAttr("xmlns", kmlNamespace)
	root := kml.CreateElement("Document")

	for _, record := range records {
		placemark := root.CreateElement("Placemark")
		placemark.CreateElement("name").SetText(record.Name)
		if record.Description != "" {
			placemark.CreateElement("description").SetText(record.Description)
		}

		extended := placemark.CreateElement("ExtendedData")
		appendKMLData(extended, "code", record.Code)
		appendKMLData(extended, "areaType", record.AreaType)
		if record.CoverageRadius > 0 {
			appendKMLData(extended, "coverageRadius", strconv.FormatFloat(record.CoverageRadius, 'f', -1, 64))
		}

		if len(record.Boundaries) > 0 {
			polygon := placemark.CreateElement("Polygon")
			ring := polygon.CreateElement("outerBoundaryIs").CreateElement("LinearRing")
			ring.CreateElement("coordinates").SetText(formatKMLCoordinates(record.Boundaries))
		} else if len(record.Center) == 2 {
			point := placemark.CreateElement("Point")
			point.CreateElement("coordinates").SetText(formatKMLCoordinates([][]float64{record.Center}))
		}
	}

	document.Indent(2)
	_, err := document.WriteTo(w)
	return err
}

func elementText(parent *etree.Element, tag string) string {
	if element := parent.FindElement(tag); element != nil {
		return strings.TrimSpace(element.Text())
	}
	return ""
}

func appendKMLData(extended *etree.Element, name, value string) {
	data := extended.CreateElement("Data")
	data.CreateAttr("name", name)
	data.CreateElement("value").SetText(value)
}

// KML 座標格式："lon,lat[,alt]"，以空白分隔
func parseKMLCoordinates(raw string) ([][]float64, error) {
	points := make([][]float64, 0)
	for _, token := range strings.Fields(raw) {
		parts := strings.Split(token, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("coordinate %q is not \"lon,lat\"", token)
		}
		lon, lonErr := strconv.ParseFloat(parts[0], 64)
		lat, latErr := strconv.ParseFloat(parts[1], 64)
		if lonErr != nil || latErr != nil {
			return nil, fmt.Errorf("coordinate %q is not numeric", token)
		}
		points = append(points, []float64{lon, lat})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("empty coordinates")
	}
	return points, nil
}

func formatKMLCoordinates(points [][]float64) string {
	parts := make([]string, len(points))
	for i, point := range points {
		parts[i] = strconv.FormatFloat(point[0], 'f', -1, 64) + "," + strconv.FormatFloat(point[1], 'f', -1, 64) + ",0"
	}
	return strings.Join(parts, " ")
}

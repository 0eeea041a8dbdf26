package areafile

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	cErr "meridian/internal/pkg/error"
)

// BundleEntry 為匯出壓縮檔內的一個檔案。
type BundleEntry struct {
	Name string
	Body []byte
}

// WriteBundle 將多個匯出檔打包為單一 zip。
func WriteBundle(w io.Writer, entries []BundleEntry) error {
	writer := zip.NewWriter(w)
	for _, entry := range entries {
		file, err := writer.Create(entry.Name)
		if err != nil {
			return err
		}
		if _, err := file.Write(entry.Body); err != nil {
			return err
		}
	}
	return writer.Close()
}

// ExtractKMZ 讀取 KMZ（zip 包裝的 KML），取出第一個 .kml 檔。
func ExtractKMZ(payload []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, cErr.InvalidGeometry("invalid KMZ archive: " + err.Error())
	}
	for _, file := range reader.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".kml") {
			continue
		}
		opened, openErr := file.Open()
		if openErr != nil {
			return nil, cErr.InvalidGeometry("invalid KMZ entry: " + openErr.Error())
		}
		defer opened.Close()
		return io.ReadAll(opened)
	}
	return nil, cErr.InvalidGeometry("KMZ archive contains no .kml entry")
}

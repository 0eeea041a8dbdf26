package areafile

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	cErr "meridian/internal/pkg/error"
)

// DecodeBody 依 Content-Encoding 還原上傳內容，空字串與 identity 原樣讀取。
func DecodeBody(body io.Reader, contentEncoding string) ([]byte, error) {
	switch contentEncoding {
	case "", "identity":
		return io.ReadAll(body)
	case "gzip":
		reader, err := gzip.NewReader(body)
		if err != nil {
			return nil, cErr.BadRequest("invalid gzip payload: " + err.Error())
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case "zstd":
		reader, err := zstd.NewReader(body)
		if err != nil {
			return nil, cErr.BadRequest("invalid zstd payload: " + err.Error())
		}
		defer reader.Close()
		return io.ReadAll(reader.IOReadCloser())
	case "br":
		return io.ReadAll(brotli.NewReader(body))
	default:
		return nil, cErr.BadRequestHeaders("unsupported Content-Encoding: " + contentEncoding)
	}
}

package http

import (
	"fmt"
	"net/http"

	"github.com/vadim/ghostwrite/internal/domain/post/policy"
	"github.com/vadim/ghostwrite/internal/httpx/response"
)

// DefaultMaxUploadSize is the upload limit used when none is configured (10MB)
const DefaultMaxUploadSize = 10 << 20

// readImageUpload extracts the "file" part of a multipart request.
// It writes the error response itself and reports ok=false when the request is unusable.
func readImageUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (policy.UploadInput, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		response.BadRequest(w, "file too large or invalid multipart form")
		return policy.UploadInput{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file in request")
		return policy.UploadInput{}, nil, false
	}

	contentType := header.Header.Get("Content-Type")
	if !policy.IsAllowedImageType(contentType) {
		file.Close()
		response.Error(w, http.StatusUnsupportedMediaType, fmt.Sprintf("unsupported image type: %s", contentType))
		return policy.UploadInput{}, nil, false
	}

	return policy.UploadInput{
		Reader:      file,
		ContentType: contentType,
		Size:        header.Size,
		Filename:    header.Filename,
	}, func() { file.Close() }, true
}

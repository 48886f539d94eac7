package api

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
)

// serveImage writes image bytes with a content-hash ETag. A ?thumb=N query
// renders a bounded thumbnail instead of the stored bytes.
func serveImage(w http.ResponseWriter, r *http.Request, blob *model.Blob) {
	data, mimeType := blob.Data, blob.MIME

	if thumb := r.URL.Query().Get("thumb"); thumb != "" {
		n, err := strconv.Atoi(thumb)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid thumb size")
			return
		}
		result, err := imaging.Thumbnail(data, n)
		if err != nil {
			// Formats without a decoder are served as stored.
			w.Header().Set("X-Thumbnail", "unavailable")
		} else {
			data, mimeType = result.Data, result.MIME
		}
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	etag := imageETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func imageETag(data []byte) string {
	sum := blake2b.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

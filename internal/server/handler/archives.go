package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/noor961/Meme-coin--7/internal/domain"
)

// ArchiveHandler serves the cold-storage archive listing and download API.
// It is only registered when the blob backend is configured.
type ArchiveHandler struct {
	blobs  domain.BlobReader
	logger *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler backed by the given reader.
func NewArchiveHandler(blobs domain.BlobReader, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		blobs:  blobs,
		logger: logHandler(logger, "archives"),
	}
}

// archiveResponse is the wire form of one archived object.
type archiveResponse struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// listArchivesResponse wraps the list archives response.
type listArchivesResponse struct {
	Archives []archiveResponse `json:"archives"`
}

// ListArchives returns the exported archive objects, optionally narrowed to
// one export kind. The returned paths are the exact keys accepted by
// DownloadArchive.
// GET /api/archives?kind=trades
func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	prefix := "archive/"
	switch kind := r.URL.Query().Get("kind"); kind {
	case "":
	case "trades", "audit":
		prefix += kind + "/"
	default:
		writeError(w, http.StatusBadRequest, "kind must be trades or audit")
		return
	}

	infos, err := h.blobs.List(r.Context(), prefix)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list archives failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}

	out := make([]archiveResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, archiveResponse{
			Path:         info.Path,
			Size:         info.Size,
			LastModified: info.LastModified.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, listArchivesResponse{Archives: out})
}

// DownloadArchive streams one archived JSONL file by its listed path.
// GET /api/archives/{key...}
func (h *ArchiveHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	// Only keys under archive/ are served; the bucket may hold other objects.
	if !strings.HasPrefix(key, "archive/") {
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}

	body, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "archive not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: archive download failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to fetch archive")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "handler: archive stream interrupted",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

package storage

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/favorite-movies-api/internal/httputil"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
)

// FileServer streams stored posters for GET /uploads/{name}.
func FileServer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())
		name := chi.URLParam(r, "name")

		obj, err := store.Open(r.Context(), name)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidKey) {
				httputil.RespondErrorWithCode(w, "file not found", httputil.CodeNotFound, http.StatusNotFound)
				return
			}
			logger.Error("failed to open upload", "key", name, "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to read file", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		defer obj.Body.Close()

		w.Header().Set("Content-Type", obj.ContentType)
		if obj.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		// keys are never reused, so the bytes behind a name never change
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, obj.Body); err != nil {
			logger.Warn("failed to stream upload", "key", name, "error", err.Error())
		}
	}
}

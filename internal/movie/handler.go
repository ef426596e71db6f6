package movie

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/favorite-movies-api/internal/auth"
	"github.com/redmonkez12/favorite-movies-api/internal/httputil"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/storage"
)

const (
	DeletedMessage = "Movie deleted successfully"

	DefaultMaxImageSize int64 = 5 << 20
	multipartMemory     int64 = 1 << 20
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var (
	errImageTooLarge = errors.New("image exceeds the upload size limit")
	errInvalidImage  = errors.New("only image files are allowed (jpeg, png, webp, gif)")
)

// Handler contains HTTP handlers for the movie catalog
type Handler struct {
	service      *Service
	images       storage.Store
	maxImageSize int64
}

// NewHandler builds the movie handlers. images may be nil, which rejects
// poster uploads.
func NewHandler(service *Service, images storage.Store, maxImageSize int64) *Handler {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &Handler{
		service:      service,
		images:       images,
		maxImageSize: maxImageSize,
	}
}

// List returns one page of the catalog
// @Summary      List movies
// @Description  Filter, sort and paginate the catalog
// @Tags         movies
// @Produce      json
// @Param        page      query int    false "Page number" minimum(1) default(1)
// @Param        limit     query int    false "Page size" minimum(1) maximum(100) default(10)
// @Param        search    query string false "Case-insensitive title substring"
// @Param        sortBy    query string false "Sort column" Enums(title, year, genres, director, rating, createdAt)
// @Param        sortOrder query string false "Sort direction" Enums(ASC, DESC)
// @Param        yearFrom  query int    false "Earliest year, inclusive"
// @Param        yearTo    query int    false "Latest year, inclusive"
// @Param        genres    query string false "Comma separated genres, any may match"
// @Param        ratingMin query number false "Lowest rating, inclusive"
// @Param        ratingMax query number false "Highest rating, inclusive"
// @Param        haveCats  query bool   false "Cat flag"
// @Success      200 {object} Page
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /movies [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		httputil.RespondValidationError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		logger.Error("failed to list movies", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list movies", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, page, http.StatusOK)
}

// Get returns a single movie
// @Summary      Get movie
// @Tags         movies
// @Produce      json
// @Param        id path string true "Movie ID" format(uuid)
// @Success      200 {object} Movie
// @Failure      400 {object} httputil.ErrorResponse "Invalid ID"
// @Failure      404 {object} httputil.ErrorResponse "Movie not found"
// @Router       /movies/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "failed to get movie")
		return
	}

	httputil.RespondJSON(w, m, http.StatusOK)
}

// Create adds a movie owned by the caller
// @Summary      Create movie
// @Description  Accepts JSON, or multipart form data with an optional "image" poster (jpeg, png, webp, gif; 5 MB max)
// @Tags         movies
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request body Patch true "Movie fields"
// @Success      201 {object} Movie
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      413 {object} httputil.ErrorResponse "Image too large"
// @Router       /movies [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	p, ok := h.readPatch(w, r)
	if !ok {
		return
	}

	m, err := h.service.Create(r.Context(), identity.UserID, p)
	if err != nil {
		h.discardUpload(r, p.Image)
		respondError(w, r, err, "failed to create movie")
		return
	}

	logger.Info("movie created", "movie_id", m.ID)
	httputil.RespondJSON(w, m, http.StatusCreated)
}

// Update changes a movie the caller owns
// @Summary      Update movie
// @Description  Partial update. Only the owner may change a movie.
// @Tags         movies
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string true "Movie ID" format(uuid)
// @Param        request body Patch  true "Fields to change"
// @Success      200 {object} Movie
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      403 {object} httputil.ErrorResponse "Not the owner"
// @Failure      404 {object} httputil.ErrorResponse "Movie not found"
// @Router       /movies/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Authorize(r.Context(), identity.UserID, id); err != nil {
		respondError(w, r, err, "failed to update movie")
		return
	}

	p, ok := h.readPatch(w, r)
	if !ok {
		return
	}

	m, err := h.service.Update(r.Context(), identity.UserID, id, p)
	if err != nil {
		h.discardUpload(r, p.Image)
		respondError(w, r, err, "failed to update movie")
		return
	}

	logger.Info("movie updated", "movie_id", m.ID)
	httputil.RespondJSON(w, m, http.StatusOK)
}

// Delete removes a movie the caller owns
// @Summary      Delete movie
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Movie ID" format(uuid)
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      403 {object} httputil.ErrorResponse "Not the owner"
// @Failure      404 {object} httputil.ErrorResponse "Movie not found"
// @Router       /movies/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		respondError(w, r, err, "failed to delete movie")
		return
	}

	logger.Info("movie deleted", "movie_id", id)
	httputil.RespondMessage(w, DeletedMessage, http.StatusOK)
}

// readPatch decodes a JSON or multipart body. A poster in the multipart
// "image" field is stored right away and its key put on the patch.
func (h *Handler) readPatch(w http.ResponseWriter, r *http.Request) (Patch, bool) {
	logger := logging.GetLoggerFromContext(r.Context())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
	default:
		var p Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			logger.Warn("invalid request body", "error", err.Error())
			httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
			return Patch{}, false
		}
		return p, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+multipartMemory)
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.RespondErrorWithCode(w, errImageTooLarge.Error(), httputil.CodeImageTooLarge, http.StatusRequestEntityTooLarge)
			return Patch{}, false
		}
		logger.Warn("invalid form body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return Patch{}, false
	}

	p, err := ParseForm(r.PostForm)
	if err != nil {
		httputil.RespondValidationError(w, err)
		return Patch{}, false
	}

	if r.MultipartForm == nil {
		return p, true
	}

	key, err := h.storeUpload(r)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return p, true
	case errors.Is(err, errImageTooLarge):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeImageTooLarge, http.StatusRequestEntityTooLarge)
		return Patch{}, false
	case errors.Is(err, errInvalidImage):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidImage, http.StatusBadRequest)
		return Patch{}, false
	case err != nil:
		logger.Error("failed to store poster image", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to store image", httputil.CodeInternalError, http.StatusInternalServerError)
		return Patch{}, false
	}

	p.Image = &key
	return p, true
}

// storeUpload saves the "image" part under a fresh key. The type is taken
// from the bytes, not from the client's claim.
func (h *Handler) storeUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if header.Size > h.maxImageSize {
		return "", errImageTooLarge
	}
	if h.images == nil {
		return "", errInvalidImage
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", errInvalidImage
	}

	key := storage.NewKey(ext)
	body := io.MultiReader(bytes.NewReader(head), file)
	if err := h.images.Save(r.Context(), key, body, header.Size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// discardUpload removes a poster stored for a request that then failed.
func (h *Handler) discardUpload(r *http.Request, key *string) {
	if key == nil || h.images == nil {
		return
	}
	if err := h.images.Delete(r.Context(), *key); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("failed to discard upload", "key", *key, "error", err.Error())
	}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.UserID == uuid.Nil {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return auth.Identity{}, false
	}
	return identity, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid movie id", httputil.CodeInvalidID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func respondError(w http.ResponseWriter, r *http.Request, err error, action string) {
	logger := logging.GetLoggerFromContext(r.Context())

	if httputil.RespondValidationError(w, err) {
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "Movie not found", httputil.CodeMovieNotFound, http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		logger.Warn("forbidden movie change", "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeForbidden, http.StatusForbidden)
	case errors.Is(err, ErrUnauthenticated):
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
	default:
		logger.Error(action, "error", err.Error())
		httputil.RespondErrorWithCode(w, action, httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Package client is a typed HTTP client for the favorite movies API, plus a
// page cache for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Client talks to one API deployment. The session token is held on the
// client and sent as a bearer token once set.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Register creates an account and keeps the returned session token.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	return c.authenticate(ctx, "/auth/register", body)
}

// Login signs in and keeps the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/google", map[string]string{"credential": credential})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return &resp, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ForgotPassword requests a reset link. The returned message is the same
// whether or not the account exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	var resp messageResponse
	body := map[string]string{"token": token, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/reset-password", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ListMovies(ctx context.Context, q Query) (*Page, error) {
	path := "/movies"
	if enc := q.Values().Encode(); enc != "" {
		path += "?" + enc
	}
	var page Page
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetMovie(ctx context.Context, id uuid.UUID) (*Movie, error) {
	var m Movie
	if err := c.doJSON(ctx, http.MethodGet, "/movies/"+id.String(), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) CreateMovie(ctx context.Context, in MovieInput) (*Movie, error) {
	var m Movie
	if err := c.doJSON(ctx, http.MethodPost, "/movies", in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMovieWithImage sends in as a multipart form with the poster attached
// under the "image" field.
func (c *Client) CreateMovieWithImage(ctx context.Context, in MovieInput, filename string, image io.Reader) (*Movie, error) {
	body, contentType, err := encodeMultipart(in, filename, image)
	if err != nil {
		return nil, err
	}
	var m Movie
	if err := c.do(ctx, http.MethodPost, "/movies", body, contentType, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) UpdateMovie(ctx context.Context, id uuid.UUID, in MovieInput) (*Movie, error) {
	var m Movie
	if err := c.doJSON(ctx, http.MethodPatch, "/movies/"+id.String(), in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMovie(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/movies/"+id.String(), nil, nil)
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		}
		apiErr.Code = body.Code
		apiErr.Fields = body.Fields
	}
	return apiErr
}

func encodeMultipart(in MovieInput, filename string, image io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Year != nil {
		fields["year"] = strconv.Itoa(*in.Year)
	}
	if in.Genres != nil {
		genres, err := json.Marshal(*in.Genres)
		if err != nil {
			return nil, "", fmt.Errorf("encode genres: %w", err)
		}
		fields["genres"] = string(genres)
	}
	if in.Director != nil {
		fields["director"] = *in.Director
	}
	if in.Rating != nil {
		fields["rating"] = strconv.FormatFloat(*in.Rating, 'f', -1, 64)
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.HaveCats != nil {
		fields["haveCats"] = strconv.FormatBool(*in.HaveCats)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, "", fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

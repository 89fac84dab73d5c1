package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/moonbound/moonbound/pkg/domain"
)

// DefaultBaseURL is the production MoonBound API endpoint. Overridable via
// config or the MOONBOUND_API_URL environment variable.
const DefaultBaseURL = "https://traductordesue-osai.onrender.com"

// DefaultImageStyle is applied when an image is requested without a style.
const DefaultImageStyle = "arte digital vibrante"

const (
	requestTimeout      = 30 * time.Second
	minPasswordLen      = 6
	defaultSessionLimit = 5
	maxBodySize         = 8 << 20 // inline base64 images can be large
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterRequest is the payload for POST /register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Nombre   string `json:"nombre"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Client is the MoonBound API client. The bearer token may be swapped by the
// auth store while view commands are in flight, so access goes through a
// lock.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	mu    sync.RWMutex
	token string
}

// New creates a new API client. An empty baseURL selects the production
// endpoint; a nil logger disables logging.
func New(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// BaseURL returns the endpoint this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken installs the bearer token attached to subsequent requests.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// ClearToken removes the bearer token; subsequent requests go out anonymous.
func (c *Client) ClearToken() { c.SetToken("") }

// Token returns the currently installed bearer token, or "".
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register creates an account and returns the access token. Nombre is
// optional and may be empty.
func (c *Client) Register(ctx context.Context, email, password, nombre string) (string, error) {
	req := RegisterRequest{Email: email, Password: password, Nombre: nombre}
	if err := validate.Struct(req); err != nil {
		return "", credentialsError(err)
	}
	var tok tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/register", req, &tok); err != nil {
		return "", fmt.Errorf("api.Register: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("api.Register: response missing access_token")
	}
	return tok.AccessToken, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := validate.Struct(req); err != nil {
		return "", credentialsError(err)
	}
	var tok tokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", req, &tok); err != nil {
		return "", fmt.Errorf("api.Login: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("api.Login: response missing access_token")
	}
	return tok.AccessToken, nil
}

// Me returns the account behind the installed bearer token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &u); err != nil {
		return nil, fmt.Errorf("api.Me: %w", err)
	}
	return &u, nil
}

// Health performs the liveness check. Only the 2xx status matters; the body
// is discarded.
func (c *Client) Health(ctx context.Context) error {
	if _, _, err := c.do(ctx, http.MethodGet, "/health", nil); err != nil {
		return fmt.Errorf("api.Health: %w", err)
	}
	return nil
}

// Interpret submits a dream for interpretation, creating a session
// server-side.
func (c *Client) Interpret(ctx context.Context, req domain.InterpretationRequest) (*domain.InterpretationResult, error) {
	if strings.TrimSpace(req.DreamText) == "" {
		return nil, &ValidationError{Message: "dream text is required"}
	}
	var result domain.InterpretationResult
	if err := c.doJSON(ctx, http.MethodPost, "/interpret-text", req, &result); err != nil {
		return nil, fmt.Errorf("api.Interpret: %w", err)
	}
	return &result, nil
}

// ListSessions fetches up to limit session summaries, normalized across the
// backend's wire shapes. A non-positive limit selects the server default.
func (c *Client) ListSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	raw, _, err := c.do(ctx, http.MethodGet, "/sessions?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("api.ListSessions: %w", err)
	}
	return NormalizeSessions(raw), nil
}

// GetSession fetches one full session record, follow-ups included.
func (c *Client) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, &ValidationError{Message: "session id is required"}
	}
	raw, _, err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("api.GetSession: %w", err)
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("api.GetSession: unexpected session payload")
	}
	s := sessionFromJSON(parsed, id)
	return &s, nil
}

// SendFollowup posts a follow-up question to a session and returns the
// answer text. The new pair is appended server-side; callers reload the
// session for the authoritative transcript.
func (c *Client) SendFollowup(ctx context.Context, id, question string) (string, error) {
	if id == "" {
		return "", &ValidationError{Message: "session id is required"}
	}
	if strings.TrimSpace(question) == "" {
		return "", &ValidationError{Message: "question is required"}
	}
	body := map[string]string{"pregunta": strings.TrimSpace(question)}
	raw, _, err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(id)+"/followup", body)
	if err != nil {
		return "", fmt.Errorf("api.SendFollowup: %w", err)
	}
	return firstString(gjson.ParseBytes(raw), "respuesta", "answer", "response"), nil
}

// DeleteSession removes a session server-side.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return &ValidationError{Message: "session id is required"}
	}
	if _, _, err := c.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("api.DeleteSession: %w", err)
	}
	return nil
}

// GenerateImage requests an illustration for a dream description. An empty
// style selects DefaultImageStyle.
func (c *Client) GenerateImage(ctx context.Context, description, style string) (*domain.GeneratedImage, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ValidationError{Message: "dream description is required"}
	}
	if style == "" {
		style = DefaultImageStyle
	}
	body := map[string]string{"descripcion_sueno": description, "estilo": style}
	raw, _, err := c.do(ctx, http.MethodPost, "/generate-image", body)
	if err != nil {
		return nil, fmt.Errorf("api.GenerateImage: %w", err)
	}
	parsed := gjson.ParseBytes(raw)
	return &domain.GeneratedImage{
		ImageURL:    firstString(parsed, "imagen_url", "image_url"),
		Description: parsed.Get("descripcion").String(),
		Prompt:      parsed.Get("prompt").String(),
	}, nil
}

// do issues one request and returns the raw success body plus its declared
// content type. Transport failures come back as *NetworkError, non-2xx
// statuses as *APIError with the message already resolved.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, string, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, "", c.networkError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if readErr != nil {
		return nil, "", c.networkError(readErr)
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiMessage(resp.StatusCode, contentType, data),
		}
	}
	return data, contentType, nil
}

// doJSON runs do and decodes a JSON success body into out. Bodies that do
// not declare a JSON content type, or that fail to parse, leave out zeroed
// instead of failing the operation.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, contentType, err := c.do(ctx, method, path, body)
	if err != nil || out == nil {
		return err
	}
	if len(data) == 0 || !strings.Contains(contentType, "application/json") {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Warn("undecodable response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
	}
	return nil
}

func (c *Client) networkError(err error) error {
	var uerr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
		return &NetworkError{
			Message: fmt.Sprintf("request to %s timed out after %s; the API may be overloaded or unreachable", c.baseURL, requestTimeout),
			Err:     err,
		}
	}
	return &NetworkError{
		Message: fmt.Sprintf("cannot reach the MoonBound API at %s; check the base URL and your network connection", c.baseURL),
		Err:     err,
	}
}

// credentialsError maps validator failures on login/register payloads to the
// messages shown inline in the auth form.
func credentialsError(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			if fe.Field() == "Password" && fe.Tag() == "min" {
				return &ValidationError{Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
			}
		}
		return &ValidationError{Message: "email and password are required"}
	}
	return &ValidationError{Message: "invalid credentials"}
}

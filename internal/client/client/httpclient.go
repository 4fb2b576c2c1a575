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
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/common"
	"github.com/dmitrijs2005/quizera/internal/logging"
	"github.com/google/uuid"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 8 << 20

// envelope is the union of the JSON bodies the backend answers with.
type envelope struct {
	Success          *bool        `json:"success"`
	Error            string       `json:"error"`
	Message          string       `json:"message"`
	Token            string       `json:"token"`
	User             *models.User `json:"user"`
	Credits          *int         `json:"credits"`
	Quiz             *models.Quiz `json:"quiz"`
	CreditsRemaining *int         `json:"creditsRemaining"`
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewHTTPClient returns a client for the backend rooted at baseURL (for
// example "http://localhost:5000/api"). timeout caps every request; zero
// means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "http_client"),
	}
}

// BaseURL returns the backend root this client was built for.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*http.Request, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, "", err
	}

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, reqID, nil
}

// do sends the request and decodes the envelope. See the package doc for
// the error mapping.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (*envelope, error) {
	req, reqID, err := c.newRequest(ctx, method, path, token, body, contentType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", method, "path", path, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &BackendError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("%w: decode %s %s (status %d): %v", ErrUnavailable, method, path, resp.StatusCode, err)
	}

	failed := env.Success != nil && !*env.Success
	if failed || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &BackendError{Status: resp.StatusCode, Message: msg}
	}

	return &env, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, payload any) (*envelope, error) {
	if payload == nil {
		return c.do(ctx, method, path, token, nil, "")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, token, bytes.NewReader(b), "application/json")
}

func authResponse(env *envelope) (*AuthResponse, error) {
	if env.Token == "" || env.User == nil {
		return nil, fmt.Errorf("%w: missing token or user", ErrMalformedResponse)
	}
	return &AuthResponse{Token: env.Token, User: env.User, Message: env.Message}, nil
}

// Ping calls GET /test and reports ErrUnavailable unless the backend answers
// {"success": true}.
func (c *HTTPClient) Ping(ctx context.Context) error {
	env, err := c.do(ctx, http.MethodGet, "/test", "", nil, "")
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) {
			return fmt.Errorf("%w: %s", ErrUnavailable, be.Message)
		}
		return err
	}
	if env.Success == nil || !*env.Success {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return authResponse(env)
}

// SendOTP asks the backend to mail a one-time code and returns its message.
func (c *HTTPClient) SendOTP(ctx context.Context, name, email, password string) (string, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/send-otp", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) (*AuthResponse, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/verify-otp", "", map[string]string{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return nil, err
	}
	return authResponse(env)
}

func (c *HTTPClient) Signup(ctx context.Context, name, email, password, otp string) (*AuthResponse, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"otp":      otp,
	})
	if err != nil {
		return nil, err
	}
	return authResponse(env)
}

// Profile fetches the current user for token. A response without a user is
// reported as a *BackendError.
func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, "")
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		msg := env.Error
		if msg == "" {
			msg = "no user in response"
		}
		return nil, &BackendError{Status: http.StatusOK, Message: msg}
	}
	return env.User, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, token string, patch models.ProfilePatch) (*models.User, error) {
	env, err := c.doJSON(ctx, http.MethodPut, "/auth/profile", token, patch)
	if err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrMalformedResponse)
	}
	return env.User, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/auth/account", token, nil, "")
	return err
}

// UpdateCredits sets the balance and returns the value the backend
// confirmed.
func (c *HTTPClient) UpdateCredits(ctx context.Context, token string, credits int) (int, error) {
	env, err := c.doJSON(ctx, http.MethodPut, "/auth/credits", token, map[string]int{"credits": credits})
	if err != nil {
		return 0, err
	}
	if env.Credits == nil {
		return 0, fmt.Errorf("%w: missing credits", ErrMalformedResponse)
	}
	return *env.Credits, nil
}

func generateResult(env *envelope) (*models.GenerateResult, error) {
	if env.Quiz == nil || env.CreditsRemaining == nil {
		return nil, fmt.Errorf("%w: missing quiz or creditsRemaining", ErrMalformedResponse)
	}
	return &models.GenerateResult{Quiz: env.Quiz, CreditsRemaining: *env.CreditsRemaining}, nil
}

// GenerateFromFile uploads req.FilePath as multipart form data to
// POST /quiz/generate. The file part is named after the source type ("pdf"
// or "image").
func (c *HTTPClient) GenerateFromFile(ctx context.Context, token string, req models.GenerateRequest) (*models.GenerateResult, error) {
	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.FilePath, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, string(req.Source), filepath.Base(req.FilePath)))
	h.Set("Content-Type", http.DetectContentType(content))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}

	fields := [][2]string{
		{"numQuestions", strconv.Itoa(req.NumQuestions)},
		{"language", req.Language},
		{"difficulty", req.Difficulty},
		{"outputType", req.OutputType},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodPost, "/quiz/generate", token, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return generateResult(env)
}

// GenerateFromText posts typed text to POST /quiz/generate-text.
func (c *HTTPClient) GenerateFromText(ctx context.Context, token string, req models.GenerateRequest) (*models.GenerateResult, error) {
	env, err := c.doJSON(ctx, http.MethodPost, "/quiz/generate-text", token, map[string]any{
		"text":         req.Text,
		"numQuestions": req.NumQuestions,
		"language":     req.Language,
		"difficulty":   req.Difficulty,
		"outputType":   req.OutputType,
	})
	if err != nil {
		return nil, err
	}
	return generateResult(env)
}

// IsTransportError reports whether err means no usable answer was received.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrMalformedResponse)
}

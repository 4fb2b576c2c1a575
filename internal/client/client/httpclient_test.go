package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/quizera/internal/client/backendtest"
	"github.com/dmitrijs2005/quizera/internal/client/models"
	"github.com/dmitrijs2005/quizera/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*HTTPClient, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.BaseURL(), 5*time.Second, logging.Nop()), srv
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	c := NewHTTPClient("http://localhost:5000/api/", 0, logging.Nop())
	assert.Equal(t, "http://localhost:5000/api", c.BaseURL())
}

func TestPing(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	srv.Lock()
	srv.Healthy = false
	srv.Unlock()
	require.ErrorIs(t, c.Ping(ctx), ErrUnavailable)
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url+"/api", time.Second, logging.Nop())
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsTransportError(err))
}

func TestLogin(t *testing.T) {
	c, srv := newTestClient(t)
	srv.AddAccount(backendtest.Account{Name: "Ann", Email: "ann@example.com", Password: "secret1", Credits: 7, Plan: "pro"})
	ctx := context.Background()

	resp, err := c.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ann", resp.User.Name)
	assert.Equal(t, 7, resp.User.Credits)
	assert.NotEmpty(t, resp.User.ID)
	assert.Contains(t, resp.User.Extra, "plan")

	_, err = c.Login(ctx, "ann@example.com", "wrong")
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Invalid email or password", be.Message)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, IsTransportError(err))
}

func TestLogin_NumericUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"token":"tok","user":{"id":42,"name":"A","email":"a@x.com","credits":3}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, logging.Nop())
	resp, err := c.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "42", resp.User.ID)
	assert.Equal(t, 3, resp.User.Credits)
}

func TestSignupFlow_SendThenVerify(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	msg, err := c.SendOTP(ctx, "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent to your email", msg)

	_, err = c.VerifyOTP(ctx, "bob@example.com", "000000")
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Invalid or expired OTP", be.Message)

	resp, err := c.VerifyOTP(ctx, "bob@example.com", backendtest.OTP)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", resp.User.Email)
	assert.Equal(t, "Account created successfully", resp.Message)

	_, err = c.SendOTP(ctx, "Bob", "bob@example.com", "secret1")
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "User already exists with this email", be.Message)
}

func TestSignup_WithOTP(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.SendOTP(ctx, "Cy", "cy@example.com", "secret1")
	require.NoError(t, err)

	resp, err := c.Signup(ctx, "Cy", "cy@example.com", "secret1", backendtest.OTP)
	require.NoError(t, err)
	assert.Equal(t, "Cy", resp.User.Name)
}

func TestProfile(t *testing.T) {
	c, srv := newTestClient(t)
	token := srv.AddAccount(backendtest.Account{Name: "Ann", Email: "ann@example.com", Credits: 3, Role: models.RoleAdmin})
	ctx := context.Background()

	u, err := c.Profile(ctx, token)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, 3, u.Credits)

	_, err = c.Profile(ctx, "bogus")
	require.ErrorIs(t, err, ErrUnauthorized)

	srv.Lock()
	srv.MalformedProfile = true
	srv.Unlock()
	_, err = c.Profile(ctx, token)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestProfile_NoUserIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, logging.Nop())
	_, err := c.Profile(context.Background(), "t")
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.False(t, IsTransportError(err))
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"user":{"id":"1","name":"A","email":"a@x","credits":1}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, logging.Nop())
	_, err := c.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestTimeoutIsUnavailable(t *testing.T) {
	c, srv := newTestClient(t)
	c.http.Timeout = 50 * time.Millisecond
	srv.Lock()
	srv.Delay = 300 * time.Millisecond
	srv.Unlock()

	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUpdateProfileAndDelete(t *testing.T) {
	c, srv := newTestClient(t)
	token := srv.AddAccount(backendtest.Account{Name: "Ann", Email: "ann@example.com"})
	ctx := context.Background()

	name := "Annie"
	u, err := c.UpdateProfile(ctx, token, models.ProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.Name)

	require.NoError(t, c.DeleteAccount(ctx, token))
	_, ok := srv.Account("ann@example.com")
	assert.False(t, ok)

	_, err = c.Profile(ctx, token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateCredits(t *testing.T) {
	c, srv := newTestClient(t)
	token := srv.AddAccount(backendtest.Account{Email: "ann@example.com", Credits: 5})
	ctx := context.Background()

	n, err := c.UpdateCredits(ctx, token, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	a, _ := srv.Account("ann@example.com")
	assert.Equal(t, 2, a.Credits)

	srv.Lock()
	srv.FailCredits = true
	srv.Unlock()
	_, err = c.UpdateCredits(ctx, token, 1)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "Failed to update credits", be.Message)
}

func TestGenerateFromText(t *testing.T) {
	c, srv := newTestClient(t)
	token := srv.AddAccount(backendtest.Account{Email: "ann@example.com", Credits: 2})
	ctx := context.Background()

	res, err := c.GenerateFromText(ctx, token, models.GenerateRequest{
		Source:       models.SourceText,
		Text:         "photosynthesis",
		OutputType:   models.OutputQuiz,
		Language:     "English",
		Difficulty:   "medium",
		NumQuestions: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CreditsRemaining)
	require.Len(t, res.Quiz.Questions, 3)
	assert.Equal(t, models.FlexID("1"), res.Quiz.Questions[0].ID)
	assert.Equal(t, "English", res.Quiz.Language)
}

func TestGenerateFromFile(t *testing.T) {
	c, srv := newTestClient(t)
	token := srv.AddAccount(backendtest.Account{Email: "ann@example.com", Credits: 1})
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600))

	req := models.GenerateRequest{
		Source:       models.SourcePDF,
		FilePath:     path,
		OutputType:   models.OutputTestPaper,
		Language:     "English",
		Difficulty:   "easy",
		NumQuestions: 2,
	}
	res, err := c.GenerateFromFile(ctx, token, req)
	require.NoError(t, err)
	assert.Equal(t, 0, res.CreditsRemaining)
	assert.Equal(t, models.OutputTestPaper, res.Quiz.OutputType)

	_, err = c.GenerateFromFile(ctx, token, req)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusPaymentRequired, be.Status)
	assert.Equal(t, "Insufficient credits", be.Message)
}

func TestGenerateFromFile_MissingFile(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.GenerateFromFile(context.Background(), "t", models.GenerateRequest{
		Source:   models.SourceImage,
		FilePath: filepath.Join(t.TempDir(), "nope.png"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

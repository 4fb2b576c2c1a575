// Package backendtest runs an in-memory imitation of the QuizEra REST backend
// for tests. It implements the auth, credits, connectivity and quiz
// generation endpoints with just enough behaviour to exercise the client:
// users, OTP codes and tokens live in maps guarded by a mutex.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// OTP is the code every send-otp call "mails".
const OTP = "123456"

// Secret signs issued tokens.
var Secret = []byte("backendtest-secret")

// Account is a registered user.
type Account struct {
	ID       string
	Name     string
	Email    string
	Password string
	Credits  int
	Role     string
	Plan     string
}

type pending struct {
	name     string
	password string
}

// Server is the fake backend. Exported fields may be changed between
// requests; guard concurrent changes with Lock/Unlock.
type Server struct {
	sync.Mutex

	*httptest.Server

	accounts map[string]*Account // by email
	tokens   map[string]string   // token -> email
	otps     map[string]pending  // email -> staged signup

	// Hits counts requests per "METHOD /path".
	Hits map[string]int
	// TokenTTL is the lifetime of issued JWTs.
	TokenTTL time.Duration
	// Delay is slept before each handler runs.
	Delay time.Duration
	// Healthy is what GET /test reports.
	Healthy bool
	// FailCredits makes PUT /auth/credits answer success:false.
	FailCredits bool
	// MalformedProfile makes GET /auth/profile answer a non-JSON body.
	MalformedProfile bool
}

// New starts a fake backend. Close it when done.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*Account),
		tokens:   make(map[string]string),
		otps:     make(map[string]pending),
		Hits:     make(map[string]int),
		TokenTTL: time.Hour,
		Healthy:  true,
	}

	r := mux.NewRouter()
	r.Use(s.middleware)
	r.HandleFunc("/api/test", s.handleTest).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/send-otp", s.handleSendOTP).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/verify-otp", s.handleVerifyOTP).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/profile", s.withAuth(s.handleGetProfile)).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/profile", s.withAuth(s.handleUpdateProfile)).Methods(http.MethodPut)
	r.HandleFunc("/api/auth/account", s.withAuth(s.handleDeleteAccount)).Methods(http.MethodDelete)
	r.HandleFunc("/api/auth/credits", s.withAuth(s.handleCredits)).Methods(http.MethodPut)
	r.HandleFunc("/api/quiz/generate", s.withAuth(s.handleGenerateFile)).Methods(http.MethodPost)
	r.HandleFunc("/api/quiz/generate-text", s.withAuth(s.handleGenerateText)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the root to hand to client.NewHTTPClient.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// AddAccount registers a user directly and returns a valid token for it.
func (s *Server) AddAccount(a Account) string {
	s.Lock()
	defer s.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	acc := a
	s.accounts[strings.ToLower(a.Email)] = &acc
	return s.issueTokenLocked(acc.Email)
}

// Account returns a copy of the stored account.
func (s *Server) Account(email string) (Account, bool) {
	s.Lock()
	defer s.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// SetCredits changes a balance behind the client's back.
func (s *Server) SetCredits(email string, credits int) {
	s.Lock()
	defer s.Unlock()
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		a.Credits = credits
	}
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.Lock()
	defer s.Unlock()
	s.tokens = make(map[string]string)
}

// HitCount returns how many times "METHOD /path" was requested.
func (s *Server) HitCount(key string) int {
	s.Lock()
	defer s.Unlock()
	return s.Hits[key]
}

func (s *Server) issueTokenLocked(email string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.TokenTTL)),
	})
	signed, err := tok.SignedString(Secret)
	if err != nil {
		panic(err)
	}
	s.tokens[signed] = strings.ToLower(email)
	return signed
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		s.Hits[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]++
		delay := s.Delay
		s.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(h func(w http.ResponseWriter, r *http.Request, email string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.Lock()
		email, known := s.tokens[token]
		s.Unlock()
		if !ok || !known {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid or expired token"})
			return
		}
		h(w, r, email)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (a *Account) json() map[string]any {
	m := map[string]any{
		"_id":        a.ID,
		"name":       a.Name,
		"email":      a.Email,
		"credits":    a.Credits,
		"isVerified": true,
	}
	if a.Role != "" {
		m["role"] = a.Role
	}
	if a.Plan != "" {
		m["plan"] = a.Plan
	}
	return m
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	s.Lock()
	healthy := s.Healthy
	s.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": healthy, "message": "Backend is running"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Lock()
	defer s.Unlock()
	a, ok := s.accounts[strings.ToLower(in.Email)]
	if !ok || a.Password != in.Password {
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   s.issueTokenLocked(a.Email),
		"user":    a.json(),
	})
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var in struct{ Name, Email, Password string }
	if err := decode(r, &in); err != nil || in.Email == "" {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Lock()
	defer s.Unlock()
	if _, exists := s.accounts[strings.ToLower(in.Email)]; exists {
		fail(w, http.StatusBadRequest, "User already exists with this email")
		return
	}
	s.otps[strings.ToLower(in.Email)] = pending{name: in.Name, password: in.Password}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP sent to your email"})
}

func (s *Server) createLocked(name, email, password string) *Account {
	a := &Account{ID: uuid.NewString(), Name: name, Email: email, Password: password, Credits: 4, Role: "user"}
	s.accounts[strings.ToLower(email)] = a
	delete(s.otps, strings.ToLower(email))
	return a
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, OTP string }
	if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Lock()
	defer s.Unlock()
	p, ok := s.otps[strings.ToLower(in.Email)]
	if !ok || in.OTP != OTP {
		fail(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	a := s.createLocked(p.name, in.Email, p.password)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   s.issueTokenLocked(a.Email),
		"user":    a.json(),
		"message": "Account created successfully",
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in struct{ Name, Email, Password, OTP string }
	if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Lock()
	defer s.Unlock()
	if _, ok := s.otps[strings.ToLower(in.Email)]; !ok || in.OTP != OTP {
		fail(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	a := s.createLocked(in.Name, in.Email, in.Password)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   s.issueTokenLocked(a.Email),
		"user":    a.json(),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, email string) {
	s.Lock()
	defer s.Unlock()
	if s.MalformedProfile {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>gateway</html>"))
		return
	}
	a, ok := s.accounts[email]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": a.json()})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, email string) {
	var in struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := decode(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Lock()
	defer s.Unlock()
	a := s.accounts[email]
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			fail(w, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		a.Name = *in.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": a.json()})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, email string) {
	s.Lock()
	defer s.Unlock()
	delete(s.accounts, email)
	for tok, e := range s.tokens {
		if e == email {
			delete(s.tokens, tok)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Account deleted"})
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request, email string) {
	var in struct{ Credits *int }
	if err := decode(r, &in); err != nil || in.Credits == nil {
		fail(w, http.StatusBadRequest, "credits required")
		return
	}

	s.Lock()
	defer s.Unlock()
	if s.FailCredits {
		fail(w, http.StatusInternalServerError, "Failed to update credits")
		return
	}
	if *in.Credits < 0 {
		fail(w, http.StatusBadRequest, "credits must be non-negative")
		return
	}
	s.accounts[email].Credits = *in.Credits
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "credits": *in.Credits})
}

func (s *Server) generateLocked(w http.ResponseWriter, email, outputType, language, difficulty string, n int) {
	a := s.accounts[email]
	if a.Credits <= 0 {
		fail(w, http.StatusPaymentRequired, "Insufficient credits")
		return
	}
	a.Credits--

	questions := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, map[string]any{
			"id":       i,
			"question": fmt.Sprintf("Question %d?", i),
			"options":  []string{"A) one", "B) two", "C) three", "D) four"},
			"answer":   "A) one",
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"quiz": map[string]any{
			"outputType":     outputType,
			"language":       language,
			"difficulty":     difficulty,
			"totalQuestions": n,
			"questions":      questions,
		},
		"creditsRemaining": a.Credits,
	})
}

func (s *Server) handleGenerateFile(w http.ResponseWriter, r *http.Request, email string) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		fail(w, http.StatusBadRequest, "Invalid form")
		return
	}
	_, hasPDF := r.MultipartForm.File["pdf"]
	_, hasImage := r.MultipartForm.File["image"]
	if !hasPDF && !hasImage {
		fail(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	n, _ := strconv.Atoi(r.FormValue("numQuestions"))

	s.Lock()
	defer s.Unlock()
	s.generateLocked(w, email, r.FormValue("outputType"), r.FormValue("language"), r.FormValue("difficulty"), n)
}

func (s *Server) handleGenerateText(w http.ResponseWriter, r *http.Request, email string) {
	var in struct {
		Text         string `json:"text"`
		NumQuestions int    `json:"numQuestions"`
		Language     string `json:"language"`
		Difficulty   string `json:"difficulty"`
		OutputType   string `json:"outputType"`
	}
	if err := decode(r, &in); err != nil || strings.TrimSpace(in.Text) == "" {
		fail(w, http.StatusBadRequest, "Text is required")
		return
	}

	s.Lock()
	defer s.Unlock()
	s.generateLocked(w, email, in.OutputType, in.Language, in.Difficulty, in.NumQuestions)
}

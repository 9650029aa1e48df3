package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meetbase/internal/auth"
	"meetbase/internal/config"
	"meetbase/internal/middleware"
	"meetbase/internal/models"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeMailer) all() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMail, len(f.sent))
	copy(out, f.sent)
	return out
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	mail   *fakeMailer
	cfg    *config.Config
}

// newTestEnv builds the full router against an on-disk sqlite database,
// mirroring the route table in cmd/server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := dbConn.AutoMigrate(&models.User{}, &models.Meeting{}, &models.Participant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		JWTTTLHours: 24,
		OTPLength:   6,
	}
	mail := &fakeMailer{}

	authC := NewAuthController(dbConn, mail, nil, zap.NewNop(), cfg)
	usersC := NewUsersController(dbConn, nil)
	meetingsC := NewMeetingsController(dbConn)
	participantsC := NewParticipantsController(dbConn)

	r := gin.New()
	r.POST("/register", authC.Register)
	r.POST("/login", authC.Login)
	r.POST("/verify-otp", authC.VerifyOTP)

	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		protected.GET("/verify-token", authC.VerifyToken)
		protected.GET("/me", authC.Me)
		protected.GET("/users", usersC.List)
		protected.PUT("/users/:id", usersC.Update)
		protected.DELETE("/users/:id", usersC.Delete)
		protected.POST("/meetings", meetingsC.Create)
		protected.PATCH("/meetings/:id/end-date", meetingsC.UpdateEndDate)
		protected.PUT("/meetings/:id", meetingsC.Update)
		protected.DELETE("/meetings/:id", meetingsC.Delete)
		protected.POST("/participants", participantsC.Create)
		protected.PUT("/participants/:id", participantsC.Update)
		protected.DELETE("/participants/:id", participantsC.Delete)
	}

	return &testEnv{db: dbConn, router: r, mail: mail, cfg: cfg}
}

// createUser inserts a verified user directly, bypassing the register
// flow, for tests that only need an identity to act as.
func (e *testEnv) createUser(t *testing.T, name, email, role string) models.User {
	t.Helper()
	hash, err := auth.HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		Name:       name,
		Email:      email,
		Password:   hash,
		Role:       role,
		IsVerified: true,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := auth.GenerateToken(u.ID, u.Email, u.Role, []byte(e.cfg.JWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func (e *testEnv) createMeeting(t *testing.T, createdBy uint) models.Meeting {
	t.Helper()
	meeting := models.Meeting{
		RoomName:  "standup-abc123",
		SDate:     time.Now().Add(time.Hour),
		CreatedBy: createdBy,
	}
	if err := e.db.Create(&meeting).Error; err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return meeting
}

func (e *testEnv) createParticipant(t *testing.T, meetingID, userID uint) models.Participant {
	t.Helper()
	participant := models.Participant{
		MeetingID: meetingID,
		UserID:    userID,
		Role:      "GUEST",
	}
	if err := e.db.Create(&participant).Error; err != nil {
		t.Fatalf("create participant: %v", err)
	}
	return participant
}

// do sends a JSON request; token may be empty for public routes.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// waitForMail polls the fake mailer for an async send.
func (e *testEnv) waitForMail(t *testing.T, n int) []sentMail {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := e.mail.all(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d mails, got %d", n, len(e.mail.all()))
	return nil
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

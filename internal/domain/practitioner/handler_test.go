package practitioner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/mail"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/token"
)

type discardSender struct {
	mu   sync.Mutex
	sent int
}

func (s *discardSender) SendEmail(context.Context, string, string, string) error {
	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	return nil
}

func newTestHandler() (*Handler, *Service, *mockRepo, *stubDirectory) {
	tokens := token.NewService("test-secret", time.Hour)
	repo := newMockRepo()
	dir := &stubDirectory{byNumber: make(map[int64]uuid.UUID)}
	svc := NewService(repo, dir, tokens)
	confirmer := mail.NewConfirmer(&discardSender{}, tokens, zerolog.Nop())
	h := NewHandler(svc, confirmer, "http://localhost:8000/api/practitioner/confirmation")
	return h, svc, repo, dir
}

func TestHandlerRegister(t *testing.T) {
	h, _, _, _ := newTestHandler()

	e := echo.New()
	body := `{"firstName":"Ada","lastName":"Okafor","registrationNumber":"MDCN-44821",
		"specialty":"Cardiology","workAddress":"12 Hospital Road, Lagos",
		"workPhoneNumber":"+2348012345678","email":"ada@example.com","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/api/practitioner", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["message"] != "success" || resp["token"] == "" {
		t.Errorf("body = %v", resp)
	}
}

func TestHandlerAddPatient(t *testing.T) {
	h, svc, repo, dir := newTestHandler()

	p, _, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("seed Register: %v", err)
	}

	patientID := uuid.New()
	dir.byNumber[1234567890] = patientID
	repo.rosterInfo[patientID] = &RosterPatient{
		PatientNumber: 1234567890,
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         "jane@example.com",
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/practitioner/addPatient?patientId=1234567890", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	subject := &auth.Subject{ID: p.ID, Role: auth.RolePractitioner}
	c.SetRequest(req.WithContext(auth.NewContext(req.Context(), subject)))

	if err := h.AddPatient(c); err != nil {
		t.Fatalf("AddPatient handler: %v", err)
	}

	var resp struct {
		Patients []RosterPatient `json:"patients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Patients) != 1 || resp.Patients[0].PatientNumber != 1234567890 {
		t.Errorf("patients = %+v", resp.Patients)
	}
}

func TestHandlerAddPatientBadQuery(t *testing.T) {
	h, _, _, _ := newTestHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/practitioner/addPatient?patientId=abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.AddPatient(c)
	if err == nil {
		t.Fatal("expected error for non-numeric patient id")
	}
	if err.Error() != "provide a valid patient id" {
		t.Errorf("message = %q", err.Error())
	}
}

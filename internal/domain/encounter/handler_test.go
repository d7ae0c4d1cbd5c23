package encounter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
)

func practitionerContext(method, target, body string, practitionerID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	subject := &auth.Subject{ID: practitionerID, Role: auth.RolePractitioner}
	c.SetRequest(req.WithContext(auth.NewContext(req.Context(), subject)))
	return c, rec
}

func TestHandlerAddEncounter(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, rec := practitionerContext(http.MethodPost, "/api/practitioner/addEncounter/1234567890",
		`{"location":"Ward 3","reasonForVisit":"chest pain"}`, f.practitionerID)
	c.SetParamNames("patientId")
	c.SetParamValues("1234567890")

	if err := h.AddEncounter(c); err != nil {
		t.Fatalf("AddEncounter handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var enc Encounter
	if err := json.Unmarshal(rec.Body.Bytes(), &enc); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if enc.Location != "Ward 3" || enc.ReasonForVisit != "chest pain" {
		t.Errorf("encounter = %+v", enc)
	}
	if enc.PractitionerFirstName != "Ada" {
		t.Errorf("practitionerFirstName = %q", enc.PractitionerFirstName)
	}
}

func TestHandlerAddEncounterBadPatientID(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, _ := practitionerContext(http.MethodPost, "/api/practitioner/addEncounter/abc", "", f.practitionerID)
	c.SetParamNames("patientId")
	c.SetParamValues("abc")

	err := h.AddEncounter(c)
	if err == nil {
		t.Fatal("expected error for non-numeric patient id")
	}
	if err.Error() != "provide a valid patient id" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestHandlerAddTask(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	enc := f.addEncounter(t)

	c, rec := practitionerContext(http.MethodPost,
		"/api/practitioner/"+enc.ID.String()+"/addTask/1234567890",
		`{"taskName":"draw blood"}`, f.practitionerID)
	c.SetParamNames("encounterId", "patientId")
	c.SetParamValues(enc.ID.String(), "1234567890")

	if err := h.AddTask(c); err != nil {
		t.Fatalf("AddTask handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var task Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if task.TaskName != "draw blood" {
		t.Errorf("taskName = %q", task.TaskName)
	}
	if task.EncounterID != enc.ID {
		t.Errorf("encounter ref = %s, want %s", task.EncounterID, enc.ID)
	}
}

func TestHandlerGetTasksBadEncounterID(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	c, _ := practitionerContext(http.MethodGet, "/api/practitioner/getTasks/not-a-uuid", "", f.practitionerID)
	c.SetParamNames("encounterId")
	c.SetParamValues("not-a-uuid")

	err := h.GetTasks(c)
	if err == nil {
		t.Fatal("expected error for malformed encounter id")
	}
	if err.Error() != "encounter not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestHandlerEmptyListSerializesAsArray(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	enc := f.addEncounter(t)

	c, rec := practitionerContext(http.MethodGet,
		"/api/practitioner/getAllergies/"+enc.ID.String(), "", f.practitionerID)
	c.SetParamNames("encounterId")
	c.SetParamValues(enc.ID.String())

	if err := h.GetAllergies(c); err != nil {
		t.Fatalf("GetAllergies handler: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestHandlerOwnMedicalHistory(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	f.addEncounter(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patient/medicalHistory", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	subject := &auth.Subject{ID: f.patientID, Role: auth.RolePatient}
	c.SetRequest(req.WithContext(auth.NewContext(req.Context(), subject)))

	if err := h.OwnMedicalHistory(c); err != nil {
		t.Fatalf("OwnMedicalHistory handler: %v", err)
	}

	var encs []Encounter
	if err := json.Unmarshal(rec.Body.Bytes(), &encs); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(encs) != 1 {
		t.Errorf("history has %d encounters, want 1", len(encs))
	}
}

package encounter

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPatientRoutes mounts the read-only clinical routes for an
// authenticated patient. g must already authenticate a patient token.
func (h *Handler) RegisterPatientRoutes(g *echo.Group) {
	g.GET("/medicalHistory", h.OwnMedicalHistory)
	g.GET("/getAllergies/:encounterId", h.GetAllergies)
	g.GET("/getDiagnosis/:encounterId", h.GetDiagnoses)
	g.GET("/getMedications/:encounterId", h.GetMedications)
	g.GET("/getTasks/:encounterId", h.GetTasks)
}

// RegisterPractitionerRoutes mounts the clinical routes for an authenticated
// practitioner. g must already authenticate and role-gate a practitioner.
func (h *Handler) RegisterPractitionerRoutes(g *echo.Group) {
	g.POST("/addEncounter/:patientId", h.AddEncounter)
	g.POST("/:encounterId/addAllergy/:patientId", h.AddAllergy)
	g.POST("/:encounterId/addDiagnosis/:patientId", h.AddDiagnosis)
	g.POST("/:encounterId/addMedication/:patientId", h.AddMedication)
	g.POST("/:encounterId/addTask/:patientId", h.AddTask)
	g.GET("/medicalHistory/:patientId", h.PatientMedicalHistory)
	g.GET("/getAllergies/:encounterId", h.GetAllergies)
	g.GET("/getDiagnosis/:encounterId", h.GetDiagnoses)
	g.GET("/getMedications/:encounterId", h.GetMedications)
	g.GET("/getTasks/:encounterId", h.GetTasks)
}

func (h *Handler) AddEncounter(c echo.Context) error {
	number, err := parsePatientNumber(c.Param("patientId"))
	if err != nil {
		return err
	}

	var in struct {
		Location       string `json:"location"`
		ReasonForVisit string `json:"reasonForVisit"`
	}
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid encounter data")
	}

	subject := auth.FromContext(c.Request().Context())
	enc, err := h.svc.AddEncounter(c.Request().Context(), subject.ID, number, in.Location, in.ReasonForVisit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, enc)
}

func (h *Handler) AddAllergy(c echo.Context) error {
	encID, number, err := subRecordParams(c)
	if err != nil {
		return err
	}

	var in AllergyInput
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid allergy data")
	}

	subject := auth.FromContext(c.Request().Context())
	a, err := h.svc.AddAllergy(c.Request().Context(), subject.ID, encID, number, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) AddDiagnosis(c echo.Context) error {
	encID, number, err := subRecordParams(c)
	if err != nil {
		return err
	}

	var in DiagnosisInput
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid diagnosis data")
	}

	subject := auth.FromContext(c.Request().Context())
	d, err := h.svc.AddDiagnosis(c.Request().Context(), subject.ID, encID, number, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) AddMedication(c echo.Context) error {
	encID, number, err := subRecordParams(c)
	if err != nil {
		return err
	}

	var in MedicationInput
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid medication data")
	}

	subject := auth.FromContext(c.Request().Context())
	m, err := h.svc.AddMedication(c.Request().Context(), subject.ID, encID, number, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) AddTask(c echo.Context) error {
	encID, number, err := subRecordParams(c)
	if err != nil {
		return err
	}

	var in TaskInput
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid task data")
	}

	subject := auth.FromContext(c.Request().Context())
	t, err := h.svc.AddTask(c.Request().Context(), subject.ID, encID, number, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// OwnMedicalHistory returns the authenticated patient's encounters.
func (h *Handler) OwnMedicalHistory(c echo.Context) error {
	subject := auth.FromContext(c.Request().Context())
	encs, err := h.svc.MedicalHistory(c.Request().Context(), subject.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrEmpty(encs))
}

// PatientMedicalHistory returns the encounters of the patient named by the
// public number in the path.
func (h *Handler) PatientMedicalHistory(c echo.Context) error {
	number, err := parsePatientNumber(c.Param("patientId"))
	if err != nil {
		return err
	}

	encs, err := h.svc.MedicalHistoryByNumber(c.Request().Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrEmpty(encs))
}

func (h *Handler) GetAllergies(c echo.Context) error {
	encID, err := parseEncounterID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Allergies(c.Request().Context(), encID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrEmpty(out))
}

func (h *Handler) GetDiagnoses(c echo.Context) error {
	encID, err := parseEncounterID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Diagnoses(c.Request().Context(), encID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrEmpty(out))
}

func (h *Handler) GetMedications(c echo.Context) error {
	encID, err := parseEncounterID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Medications(c.Request().Context(), encID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrEmpty(out))
}

func (h *Handler) GetTasks(c echo.Context) error {
	encID, err := parseEncounterID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Tasks(c.Request().Context(), encID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOrEmpty(out))
}

func subRecordParams(c echo.Context) (uuid.UUID, int64, error) {
	encID, err := parseEncounterID(c)
	if err != nil {
		return uuid.Nil, 0, err
	}
	number, err := parsePatientNumber(c.Param("patientId"))
	if err != nil {
		return uuid.Nil, 0, err
	}
	return encID, number, nil
}

func parseEncounterID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("encounterId"))
	if err != nil {
		return uuid.Nil, httperr.NotFound("encounter not found")
	}
	return id, nil
}

func parsePatientNumber(raw string) (int64, error) {
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, httperr.Validation("provide a valid patient id")
	}
	return number, nil
}

// listOrEmpty keeps empty collections serializing as [] rather than null.
func listOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

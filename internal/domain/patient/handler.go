package patient

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/mail"
)

type Handler struct {
	svc       *Service
	confirmer *mail.Confirmer
	// confirmBase is the external confirmation-link prefix, e.g.
	// https://host/api/patient/confirmation
	confirmBase string
}

func NewHandler(svc *Service, confirmer *mail.Confirmer, confirmBase string) *Handler {
	return &Handler{svc: svc, confirmer: confirmer, confirmBase: confirmBase}
}

// RegisterRoutes mounts the patient-facing routes. authMW authenticates a
// patient bearer token.
func (h *Handler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.POST("", h.Register)
	g.POST("/login", h.Login)
	g.GET("/confirmation/:token", h.ConfirmEmail)

	protected := g.Group("", authMW)
	protected.GET("", h.GetProfile)
	protected.PATCH("/profile", h.UpdateProfile)
}

// RegisterPractitionerRoutes mounts the patient-lookup routes that live under
// the practitioner surface. g must already authenticate a practitioner and
// enforce the role gate.
func (h *Handler) RegisterPractitionerRoutes(g *echo.Group) {
	g.GET("/getPatient", h.GetPatientByNumber)
	g.PATCH("/updateBloodData/:patientId", h.UpdateBloodData)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid patient data")
	}

	p, tok, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, map[string]string{
		"message": "success",
		"token":   tok,
	}); err != nil {
		return err
	}

	// Fire-and-forget; the response above is already on the wire.
	h.confirmer.Dispatch(p.ID, p.Email, h.confirmBase)
	return nil
}

func (h *Handler) Login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid login data")
	}

	p, tok, err := h.svc.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, struct {
		Profile
		Token string `json:"token"`
	}{Profile: p.Profile(), Token: tok})
}

func (h *Handler) ConfirmEmail(c echo.Context) error {
	p, err := h.svc.ConfirmEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "account verified",
		"email":   p.Email,
	})
}

func (h *Handler) GetProfile(c echo.Context) error {
	subject := auth.FromContext(c.Request().Context())
	p, err := h.svc.Get(c.Request().Context(), subject.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Profile())
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	subject := auth.FromContext(c.Request().Context())

	var patch ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return httperr.Validation("invalid profile data")
	}

	p, err := h.svc.UpdateProfile(c.Request().Context(), subject.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*Patient{"updatedPatient": p})
}

func (h *Handler) GetPatientByNumber(c echo.Context) error {
	number, err := parsePatientNumber(c.QueryParam("patientId"))
	if err != nil {
		return err
	}

	p, err := h.svc.GetByNumber(c.Request().Context(), number)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Profile())
}

func (h *Handler) UpdateBloodData(c echo.Context) error {
	number, err := parsePatientNumber(c.Param("patientId"))
	if err != nil {
		return err
	}

	var patch BloodDataPatch
	if err := c.Bind(&patch); err != nil {
		return httperr.Validation("invalid blood data")
	}

	p, err := h.svc.UpdateBloodData(c.Request().Context(), number, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func parsePatientNumber(raw string) (int64, error) {
	if raw == "" {
		return 0, httperr.Validation("provide a valid patient id")
	}
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, httperr.Validation("provide a valid patient id")
	}
	return number, nil
}

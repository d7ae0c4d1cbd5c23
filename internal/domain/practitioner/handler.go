package practitioner

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/auth"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/httperr"
	"github.com/ayeola05/IntegratedCareServer/internal/platform/mail"
)

type Handler struct {
	svc         *Service
	confirmer   *mail.Confirmer
	confirmBase string
}

func NewHandler(svc *Service, confirmer *mail.Confirmer, confirmBase string) *Handler {
	return &Handler{svc: svc, confirmer: confirmer, confirmBase: confirmBase}
}

// RegisterRoutes mounts the practitioner routes. authMW authenticates a
// practitioner bearer token; the role gate sits on top of it for the
// clinical lookups.
func (h *Handler) RegisterRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.POST("", h.Register)
	g.POST("/login", h.Login)
	g.GET("/confirmation/:token", h.ConfirmEmail)

	protected := g.Group("", authMW)
	protected.GET("", h.GetProfile)
	protected.PATCH("/profile", h.UpdateProfile)

	gated := g.Group("", authMW, auth.RequirePractitioner())
	gated.GET("/getPractitioner", h.GetPractitionerByEmail)
	gated.GET("/addPatient", h.AddPatient)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return httperr.Validation("invalid practitioner data")
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
	return c.JSON(http.StatusOK, map[string]*Practitioner{"updatedPractitioner": p})
}

func (h *Handler) GetPractitionerByEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return httperr.Validation("provide a valid email")
	}

	p, err := h.svc.GetByEmail(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.Profile())
}

func (h *Handler) AddPatient(c echo.Context) error {
	raw := c.QueryParam("patientId")
	if raw == "" {
		return httperr.Validation("provide a valid patient id")
	}
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return httperr.Validation("provide a valid patient id")
	}

	subject := auth.FromContext(c.Request().Context())
	roster, err := h.svc.AddPatientToRoster(c.Request().Context(), subject.ID, number)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"patients": roster})
}

package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusBadRequest},
		{Authentication("no token"), http.StatusUnauthorized},
		{Authorization("wrong role"), http.StatusUnauthorized},
		{NotFound("missing"), http.StatusNotFound},
		{&Error{Kind: KindInternal, Message: "boom"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.Status(); got != tc.want {
			t.Errorf("%q: status = %d, want %d", tc.err.Message, got, tc.want)
		}
	}
}

func TestIsKind(t *testing.T) {
	err := NotFound("missing")
	if !IsKind(err, KindNotFound) {
		t.Error("IsKind(NotFound, KindNotFound) = false")
	}
	if IsKind(err, KindValidation) {
		t.Error("IsKind(NotFound, KindValidation) = true")
	}
	if IsKind(errors.New("plain"), KindNotFound) {
		t.Error("IsKind(plain error) = true")
	}
}

func render(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	Handler(zerolog.Nop())(err, c)
	return rec
}

func TestHandlerTypedError(t *testing.T) {
	rec := render(t, NotFound("patient does not exist"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "patient does not exist" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestHandlerEchoError(t *testing.T) {
	rec := render(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandlerUnknownError(t *testing.T) {
	rec := render(t, errors.New("pg: connection reset"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// Internal details never leak to clients.
	if body["message"] != "internal server error" {
		t.Errorf("message = %q", body["message"])
	}
}

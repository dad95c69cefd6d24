package cancel_reservation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/cancel_reservation"
	"github.com/noshow-me/NSP-ReservationService/internal/api/middleware"
	"github.com/noshow-me/NSP-ReservationService/internal/service/reservations"
	"github.com/noshow-me/NSP-ReservationService/internal/service/reservations/models"
)

type fakeService struct {
	cancelErr error
	gotID     int64
	gotReq    *models.CancelReservationRequest
}

func (f *fakeService) Cancel(_ context.Context, reservationID int64, req *models.CancelReservationRequest) error {
	f.gotID = reservationID
	f.gotReq = req
	return f.cancelErr
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func doRequest(t *testing.T, svc *fakeService, path, body string, withUser bool) *httptest.ResponseRecorder {
	t.Helper()

	h := handler.NewHandler(svc, noopLogger{})

	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/api/v1/reservations/{reservationId}/cancel", h.Handle).Methods(http.MethodPut)

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	if withUser {
		req.Header.Set("X-User-ID", "customer-1")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_CancelWithReason(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(t, svc, "/api/v1/reservations/100/cancel", `{"reason":"план поменялся"}`, true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(100), svc.gotID)
	require.NotNil(t, svc.gotReq)
	assert.Equal(t, "customer-1", svc.gotReq.UserID)
	require.NotNil(t, svc.gotReq.Reason)
	assert.Equal(t, "план поменялся", *svc.gotReq.Reason)
}

func TestHandle_EmptyBodyAllowed(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(t, svc, "/api/v1/reservations/100/cancel", "", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, svc.gotReq)
	assert.Nil(t, svc.gotReq.Reason)
}

func TestHandle_InvalidReservationID(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(t, svc, "/api/v1/reservations/abc/cancel", "", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.gotReq)
}

func TestHandle_MissingUserHeader(t *testing.T) {
	svc := &fakeService{}

	rec := doRequest(t, svc, "/api/v1/reservations/100/cancel", "", false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, svc.gotReq)
}

func TestHandle_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", reservations.ErrReservationNotFound, http.StatusNotFound},
		{"access denied", reservations.ErrAccessDenied, http.StatusForbidden},
		{"already finalized", reservations.ErrAlreadyFinalized, http.StatusConflict},
		{"too late", reservations.ErrTooLateToCancel, http.StatusConflict},
		{"user not found", reservations.ErrUserNotFound, http.StatusForbidden},
		{"invalid input", reservations.ErrInvalidInput, http.StatusBadRequest},
		{"internal", reservations.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{cancelErr: tc.err}

			rec := doRequest(t, svc, "/api/v1/reservations/100/cancel", "", true)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

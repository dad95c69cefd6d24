package create_reservation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/noshow-me/NSP-ReservationService/internal/api/handlers/create_reservation"
	"github.com/noshow-me/NSP-ReservationService/internal/api/middleware"
	createReservation "github.com/noshow-me/NSP-ReservationService/internal/usecase/create_reservation"
)

type fakeUseCase struct {
	executeFn func(ctx context.Context, req *createReservation.Request) (*createReservation.Response, error)
	gotReq    *createReservation.Request
}

func (f *fakeUseCase) Execute(ctx context.Context, req *createReservation.Request) (*createReservation.Response, error) {
	f.gotReq = req
	return f.executeFn(ctx, req)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func doRequest(t *testing.T, uc *fakeUseCase, body string, withUser bool) *httptest.ResponseRecorder {
	t.Helper()

	h := handler.NewHandler(uc, noopLogger{})
	protected := middleware.Auth(http.HandlerFunc(h.Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	if withUser {
		req.Header.Set("X-User-ID", "customer-1")
	}

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	start := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	uc := &fakeUseCase{
		executeFn: func(_ context.Context, req *createReservation.Request) (*createReservation.Response, error) {
			return &createReservation.Response{
				ID:             100,
				CustomerUserID: req.CustomerUserID,
				VenueID:        7,
				ServiceID:      req.ServiceID,
				PartySize:      req.PartySize,
				ScheduledStart: req.ScheduledStart,
				ScheduledEnd:   req.ScheduledStart.Add(time.Hour),
				Status:         "BOOKED",
				DepositAmount:  decimal.NewFromInt(4000),
				Currency:       "KRW",
			}, nil
		},
	}

	rec := doRequest(t, uc, `{"serviceId":42,"partySize":2,"scheduledStart":"2026-09-15T10:00:00Z"}`, true)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		Currency string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(100), resp.ID)
	assert.Equal(t, "BOOKED", resp.Status)
	assert.Equal(t, "KRW", resp.Currency)

	// ID клиента берется из заголовка аутентификации, не из тела
	require.NotNil(t, uc.gotReq)
	assert.Equal(t, "customer-1", uc.gotReq.CustomerUserID)
	assert.True(t, uc.gotReq.ScheduledStart.Equal(start))
}

func TestHandle_MissingUserHeader(t *testing.T) {
	uc := &fakeUseCase{}

	rec := doRequest(t, uc, `{"serviceId":42,"partySize":2,"scheduledStart":"2026-09-15T10:00:00Z"}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.gotReq)
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &fakeUseCase{}

	rec := doRequest(t, uc, `{not json`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_InvalidStartFormat(t *testing.T) {
	uc := &fakeUseCase{}

	rec := doRequest(t, uc, `{"serviceId":42,"partySize":2,"scheduledStart":"15.09.2026 10:00"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"slot taken", createReservation.ErrSlotTaken, http.StatusConflict},
		{"service not found", createReservation.ErrServiceNotFound, http.StatusNotFound},
		{"venue not found", createReservation.ErrVenueNotFound, http.StatusNotFound},
		{"customer not found", createReservation.ErrCustomerNotFound, http.StatusNotFound},
		{"past date", createReservation.ErrPastDate, http.StatusBadRequest},
		{"invalid input", createReservation.ErrInvalidInput, http.StatusBadRequest},
		{"internal", createReservation.ErrInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeUseCase{
				executeFn: func(_ context.Context, _ *createReservation.Request) (*createReservation.Response, error) {
					return nil, tc.err
				},
			}

			rec := doRequest(t, uc, `{"serviceId":42,"partySize":2,"scheduledStart":"2026-09-15T10:00:00Z"}`, true)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

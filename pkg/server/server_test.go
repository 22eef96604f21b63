package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhk1105/114-1-DBFinal/pkg/auth"
	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/metrics"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
	"github.com/yhk1105/114-1-DBFinal/pkg/server/handler"
)

type reservationSvc struct {
	memberID int64
	lines    []model.ReservationLine
	err      error
	panics   bool
}

func (s *reservationSvc) Create(_ context.Context, memberID int64, lines []model.ReservationLine) (int64, error) {
	if s.panics {
		panic("boom")
	}
	s.memberID, s.lines = memberID, lines
	return 42, s.err
}

func (s *reservationSvc) Cancel(_ context.Context, memberID, _ int64) error {
	s.memberID = memberID
	return s.err
}

func (s *reservationSvc) AvailablePickupPlaces(context.Context, int64) ([]model.PickupPlace, error) {
	return []model.PickupPlace{{ID: 1, Name: "Library"}}, s.err
}

type itemSvc struct {
	verified int64
	err      error
}

func (s *itemSvc) ChangeCategory(context.Context, int64, int64, int64) error { return s.err }
func (s *itemSvc) Delist(context.Context, int64, int64) error                { return s.err }
func (s *itemSvc) Verify(_ context.Context, itemID int64) error {
	s.verified = itemID
	return s.err
}

type env struct {
	h        http.Handler
	res      *reservationSvc
	items    *itemSvc
	resolver *auth.Resolver
}

func newEnv(t *testing.T) *env {
	t.Helper()

	reg := prometheus.NewRegistry()
	metrics.New(reg).Rejection("banned")

	e := &env{res: &reservationSvc{}, items: &itemSvc{}, resolver: &auth.Resolver{Secret: []byte("secret")}}
	e.h = Handler(e.resolver, e.res, e.items, reg)
	return e
}

func (e *env) do(t *testing.T, method, target, body, role string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if role != "" {
		token, err := e.resolver.Issue(7, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResp {
	t.Helper()

	var resp handler.ErrorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const createBody = `{"lines":[{"item_id":1,"pickup_place_id":2,"est_start_at":"2024-06-01T10:00:00Z","est_due_at":"2024-06-01T12:00:00Z"}]}`

func TestCreateReservation(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/reservations", createBody, model.RoleMember)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"reservation_id":42}`, rec.Body.String())

	assert.Equal(t, int64(7), e.res.memberID)
	require.Len(t, e.res.lines, 1)
	assert.Equal(t, int64(2), e.res.lines[0].PickupPlaceID)
	assert.Equal(t, 2, e.res.lines[0].DueAt.Hour()-e.res.lines[0].StartAt.Hour())
}

func TestCreateReservationErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unavailable", model.Unavailable(1), http.StatusConflict, "unavailable"},
		{"banned", model.Banned("Books"), http.StatusForbidden, "banned"},
		{"quota", model.QuotaNotActive("Tools"), http.StatusPreconditionFailed, "quota_not_active"},
		{"limit", model.ErrLimitExceeded, http.StatusTooManyRequests, "limit_exceeded"},
		{"busy", errors.Join(model.ErrSystemBusy, errors.New("40001")), http.StatusServiceUnavailable, "system_busy"},
		{"not found", database.ErrNotFound, http.StatusNotFound, "not_found"},
		{"validation", model.Validation("bad"), http.StatusBadRequest, "validation"},
		{"unexpected", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.res.err = tt.err

			rec := e.do(t, http.MethodPost, "/reservations", createBody, model.RoleMember)
			assert.Equal(t, tt.status, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.ErrorCode)
			assert.NotContains(t, resp.Message, "relation")
			assert.NotContains(t, resp.Message, "40001")
		})
	}
}

func TestCreateReservationRequiresIdentity(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/reservations", createBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decodeError(t, rec).ErrorCode)

	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(createBody))
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservationBadRequest(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/reservations", `{"lines":`, model.RoleMember)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/reservations", "", model.RoleMember)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCancelReservation(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/reservations/cancel", `{"reservation_id":42}`, model.RoleMember)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	e.res.err = &model.RejectionError{Kind: model.ErrCancelWindow, ItemID: 1}
	rec = e.do(t, http.MethodPost, "/reservations/cancel", `{"reservation_id":42}`, model.RoleMember)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "cancel_window", decodeError(t, rec).ErrorCode)

	rec = e.do(t, http.MethodPost, "/reservations/cancel", `{}`, model.RoleMember)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPickupPlaces(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/pickup-places?item_id=3", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Library"}]`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/pickup-places?item_id=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemEndpoints(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/items/verify", `{"item_id":9}`, model.RoleMember)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, e.items.verified)

	rec = e.do(t, http.MethodPost, "/items/verify", `{"item_id":9}`, model.RoleStaff)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), e.items.verified)

	rec = e.do(t, http.MethodPost, "/items/category", `{"item_id":9}`, model.RoleMember)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/items/category", `{"item_id":9,"category_id":3}`, model.RoleMember)
	assert.Equal(t, http.StatusOK, rec.Code)

	e.items.err = model.ErrForbidden
	rec = e.do(t, http.MethodPost, "/items/delist", `{"item_id":9}`, model.RoleMember)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `reservation_rejections_total{kind="banned"} 1`)
}

func TestRecovery(t *testing.T) {
	e := newEnv(t)
	e.res.panics = true

	rec := e.do(t, http.MethodPost, "/reservations", createBody, model.RoleMember)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

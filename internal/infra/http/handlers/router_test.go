package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/testutil/memstore"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type api struct {
	t     *testing.T
	store *memstore.Store
	blobs *memstore.Blobs
	h     http.Handler
}

func newAPI(t *testing.T, opts ...func(*Router)) *api {
	t.Helper()
	store := memstore.New()
	blobs := memstore.NewBlobs()
	logger := zap.NewNop()
	clock := func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

	roles := usecase.NewRoleUseCase(store.Roles(), logger)
	require.NoError(t, roles.SeedDefaults(context.Background()))

	stats := usecase.NewStatisticsUseCase(store.Statistics(), store.Ads(), logger)
	customers := usecase.NewCustomerUseCase(usecase.CustomerDeps{
		Tx:        store.TxManager(),
		Leads:     store.Leads(),
		Ads:       store.Ads(),
		Services:  store.Services(),
		Contracts: store.Contracts(),
		Customers: store.Customers(),
		Blobs:     blobs,
		Now:       clock,
	}, logger)

	rt := Router{
		Services:       NewServiceHandler(usecase.NewServiceUseCase(store.Services(), logger), logger),
		Advertisements: NewAdvertisingHandler(usecase.NewAdvertisingUseCase(store.Ads(), store.Services(), logger), stats, logger),
		Leads:          NewLeadHandler(usecase.NewLeadUseCase(store.Leads(), store.Ads(), logger), 0, time.Minute, logger),
		Contracts:      NewContractHandler(usecase.NewContractUseCase(store.Contracts(), store.Services(), blobs, clock, logger), logger),
		Customers:      NewCustomerHandler(customers, logger),
		Statistics:     NewStatisticsHandler(stats, logger),
		Health:         NewHealthHandler("test", map[string]Pinger{"database": nil}),
		Permissions:    middleware.NewPermissions(roles, logger),
		CORSOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(&rt)
	}
	return &api{t: t, store: store, blobs: blobs, h: rt.Handler()}
}

func (a *api) do(role string, req *http.Request) *httptest.ResponseRecorder {
	a.t.Helper()
	if role != "" {
		req.Header.Set(middleware.RoleHeader, role)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func (a *api) json(role, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return a.do(role, req)
}

func (a *api) form(role, method, path string, fields map[string]string, doc []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if doc != nil {
		fw, err := mw.CreateFormFile("doc", "signed.pdf")
		require.NoError(a.t, err)
		_, err = fw.Write(doc)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(role, req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// catalog creates a service and a campaign selling it.
func (a *api) catalog() (entity.Service, entity.Advertising) {
	a.t.Helper()
	rec := a.json(entity.RoleMarketers, http.MethodPost, "/services", map[string]any{
		"name": "Consulting", "description": "Hourly", "cost": "100.00",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	svc := decode[entity.Service](a.t, rec)

	rec = a.json(entity.RoleMarketers, http.MethodPost, "/advertisements", map[string]any{
		"name": "Spring", "channel": "search", "budget": "70.00", "product_id": svc.ID,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return svc, decode[entity.Advertising](a.t, rec)
}

func customerFields(productID, adsID string) map[string]string {
	return map[string]string{
		"first_name": "Ivan",
		"last_name":  "Petrov",
		"phone":      "+7 (999) 123 4567",
		"email":      "ivan@example.com",
		"ads_id":     adsID,
		"name":       "C-1",
		"product_id": productID,
		"end_date":   "2027-01-01",
		"cost":       "100.00",
	}
}

func TestRouter_PermissionGate(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name string
		role string
		path string
		want int
	}{
		{"no role", "", "/leads", http.StatusForbidden},
		{"operator reads leads", entity.RoleOperators, "/leads", http.StatusOK},
		{"operator reads statistics", entity.RoleOperators, "/statistics/total", http.StatusForbidden},
		{"marketer reads statistics", entity.RoleMarketers, "/statistics/total", http.StatusOK},
		{"manager reads contracts", entity.RoleManagers, "/contracts", http.StatusOK},
		{"marketer reads customers", entity.RoleMarketers, "/customers", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.json(tt.role, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_HealthIsOpen(t *testing.T) {
	a := newAPI(t)

	rec := a.json("", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "not configured", body.Dependencies["database"])
}

func TestRouter_LeadValidation(t *testing.T) {
	a := newAPI(t)

	lead := map[string]any{
		"first_name": "Ivan", "last_name": "Petrov",
		"phone": "+7 (999) 123 4567", "email": "ivan@example.com",
	}
	rec := a.json(entity.RoleOperators, http.MethodPost, "/leads", lead)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	lead["email"] = "other@example.com"
	rec = a.json(entity.RoleOperators, http.MethodPost, "/leads", lead)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, usecase.CodeValidation, body.Error)
	assert.Contains(t, body.Fields, "phone")

	rec = a.do(entity.RoleOperators, httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CustomerLifecycle(t *testing.T) {
	a := newAPI(t)
	svc, ads := a.catalog()

	rec := a.form(entity.RoleManagers, http.MethodPost, "/customers", customerFields(svc.ID, ads.ID), []byte("%PDF-1.4"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customer := decode[entity.Customer](t, rec)
	assert.Equal(t, 1, a.store.Count("leads"))
	assert.Equal(t, 1, a.blobs.Len())

	rec = a.json(entity.RoleManagers, http.MethodGet, "/contracts/"+customer.ContractID+"/document", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "C-1.pdf")

	rec = a.json(entity.RoleMarketers, http.MethodGet, "/advertisements/"+ads.ID+"/statistics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[entity.AdsStatistics](t, rec)
	assert.Equal(t, int64(1), stats.LeadsCount)
	assert.Equal(t, int64(1), stats.CustomersCount)
	assert.Equal(t, "30", stats.Profit.String())

	rec = a.json(entity.RoleManagers, http.MethodDelete, "/customers/"+customer.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.json(entity.RoleManagers, http.MethodGet, "/customers/"+customer.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CustomerRequiresDocument(t *testing.T) {
	a := newAPI(t)
	svc, ads := a.catalog()

	rec := a.form(entity.RoleManagers, http.MethodPost, "/customers", customerFields(svc.ID, ads.ID), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Contains(t, body.Fields, "doc")
	assert.Zero(t, a.store.Count("customers"))
}

func TestRouter_BadCost(t *testing.T) {
	a := newAPI(t)
	svc, ads := a.catalog()

	fields := customerFields(svc.ID, ads.ID)
	fields["cost"] = "a lot"
	rec := a.form(entity.RoleManagers, http.MethodPost, "/customers", fields, []byte("doc"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "cost")
}

func TestRouter_ConvertLead(t *testing.T) {
	a := newAPI(t)
	svc, ads := a.catalog()

	rec := a.json(entity.RoleOperators, http.MethodPost, "/leads", map[string]any{
		"first_name": "Ivan", "last_name": "Petrov",
		"phone": "+7 (999) 123 4567", "email": "ivan@example.com", "ads_id": ads.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lead := decode[entity.Lead](t, rec)

	path := "/leads/" + lead.ID + "/convert"
	rec = a.form(entity.RoleOperators, http.MethodPost, path, customerFields(svc.ID, ads.ID), []byte("doc"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.form(entity.RoleManagers, http.MethodPost, path, customerFields(svc.ID, ads.ID), []byte("doc"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	customer := decode[entity.Customer](t, rec)
	assert.Equal(t, lead.ID, customer.LeadID)

	fields := customerFields(svc.ID, ads.ID)
	fields["name"] = "C-2"
	rec = a.form(entity.RoleManagers, http.MethodPost, path, fields, []byte("doc"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.form(entity.RoleManagers, http.MethodPost, "/leads/missing/convert", fields, []byte("doc"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_TotalStatistics(t *testing.T) {
	a := newAPI(t)
	a.catalog()

	rec := a.json(entity.RoleManagers, http.MethodGet, "/statistics/total", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[entity.TotalStatistics](t, rec)
	assert.Equal(t, int64(1), totals.ProductsCount)
	assert.Equal(t, int64(1), totals.AdvertisementsCount)
	assert.Zero(t, totals.LeadsCount)
}

func TestRouter_LeadRateLimitByPeer(t *testing.T) {
	withLimit := func(trustProxy bool) func(*Router) {
		return func(rt *Router) {
			rt.TrustProxy = trustProxy
			rt.Leads.rateLimiter = NewRateLimiter(2, time.Minute)
		}
	}
	submit := func(a *api, i int) int {
		data, err := json.Marshal(map[string]any{
			"first_name": "Ivan", "last_name": "Petrov",
			"phone": fmt.Sprintf("+7 (999) 123 456%d", i), "email": fmt.Sprintf("lead%d@example.com", i),
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		return a.do(entity.RoleOperators, req).Code
	}

	t.Run("rotating forwarded headers share the peer budget", func(t *testing.T) {
		a := newAPI(t, withLimit(false))
		var codes []int
		for i := 0; i < 5; i++ {
			codes = append(codes, submit(a, i))
		}
		created, limited := http.StatusCreated, http.StatusTooManyRequests
		assert.Equal(t, []int{created, created, limited, limited, limited}, codes)
		assert.Equal(t, 2, a.store.Count("leads"))
	})

	t.Run("trusted proxy keys on the forwarded address", func(t *testing.T) {
		a := newAPI(t, withLimit(true))
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusCreated, submit(a, i))
		}
	})
}

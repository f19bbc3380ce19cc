package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilebill/internal/core/apperror"
	appctx "mobilebill/internal/core/context"
	"mobilebill/internal/domain/auth"
	"mobilebill/internal/domain/dealer"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/domain/purchase"
	"mobilebill/pkg/logger"
)

type fakePurchases struct {
	created    *purchase.Purchase
	filter     purchase.ListFilter
	receiveErr error
	received   []string
}

func (f *fakePurchases) Create(_ context.Context, p *purchase.Purchase) error {
	if err := p.Validate(context.Background()); err != nil {
		return err
	}
	p.ID = "PUR-1"
	p.Status = purchase.StatusPending
	f.created = p
	return nil
}

func (f *fakePurchases) GetByID(_ context.Context, id string) (*purchase.Purchase, error) {
	if id != "PUR-1" {
		return nil, apperror.NewNotFound("purchase", id)
	}
	return &purchase.Purchase{ID: id, Status: purchase.StatusPending}, nil
}

func (f *fakePurchases) List(_ context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakePurchases) UpdateStatus(_ context.Context, id string, status purchase.Status) (*purchase.Purchase, error) {
	return &purchase.Purchase{ID: id, Status: status}, nil
}

func (f *fakePurchases) Receive(_ context.Context, id string) (*purchase.ReceiveResult, error) {
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if id != "PUR-1" {
		return nil, apperror.NewNotFound("purchase", id)
	}
	f.received = append(f.received, id)
	return &purchase.ReceiveResult{
		Purchase:        &purchase.Purchase{ID: id, Status: purchase.StatusReceived},
		AlreadyReceived: len(f.received) > 1,
	}, nil
}

type fakeInventory struct {
	lookedUp  string
	threshold int
	listed    []inventory.ListFilter
}

func (f *fakeInventory) ListMobiles(_ context.Context, filter inventory.ListFilter) ([]*inventory.Mobile, error) {
	f.listed = append(f.listed, filter)
	return []*inventory.Mobile{{ID: "m-1", MobileName: "Galaxy A14", TotalQuantity: 2}}, nil
}

func (f *fakeInventory) ListAccessories(_ context.Context, filter inventory.ListFilter) ([]*inventory.Accessory, error) {
	f.listed = append(f.listed, filter)
	return nil, nil
}

func (f *fakeInventory) LowStock(_ context.Context, threshold int) (*inventory.LowStock, error) {
	f.threshold = threshold
	return &inventory.LowStock{Threshold: threshold}, nil
}

func (f *fakeInventory) FindByUnitID(_ context.Context, unitID string) (*inventory.UnitLookup, error) {
	f.lookedUp = unitID
	return &inventory.UnitLookup{Kind: inventory.KindMobile, UnitID: unitID}, nil
}

func (f *fakeInventory) UpdateMobileDetails(_ context.Context, id string, _ inventory.MobileDetails) (*inventory.Mobile, error) {
	return &inventory.Mobile{ID: id}, nil
}

func (f *fakeInventory) Counter(context.Context, string) (int64, error) { return 7, nil }

type fakeDealers struct{}

func (fakeDealers) Create(_ context.Context, d *dealer.Dealer) error {
	d.ID = "DLR-1"
	return nil
}

func (fakeDealers) GetByID(_ context.Context, id string) (*dealer.Dealer, error) {
	return nil, apperror.NewNotFound("dealer", id)
}

func (fakeDealers) List(context.Context, dealer.ListFilter) ([]*dealer.Dealer, error) {
	return nil, nil
}

func (fakeDealers) Update(context.Context, *dealer.Dealer) error { return nil }

func (fakeDealers) Delete(context.Context, string) error { return nil }

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, creds auth.Credentials) (*auth.LoginResult, error) {
	if creds.Password != "admin123" {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}
	return &auth.LoginResult{Token: "good"}, nil
}

type fakeValidator struct{}

func (fakeValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &appctx.UserContext{Username: "admin", Role: auth.RoleAdmin}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testEnv struct {
	purchases *fakePurchases
	inventory *fakeInventory
	cfg       RouterConfig
}

func newTestEnv() *testEnv {
	env := &testEnv{purchases: &fakePurchases{}, inventory: &fakeInventory{}}
	env.cfg = RouterConfig{
		Logger:       logger.Nop(),
		DB:           okPinger{},
		Dealers:      fakeDealers{},
		Purchases:    env.purchases,
		Inventory:    env.inventory,
		Auth:         fakeAuth{},
		JWTValidator: fakeValidator{},
		LoginRate:    "100-M",
	}
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	router, err := NewRouter(e.cfg)
	require.NoError(t, err)
	return serve(t, router, method, path, body, headers...)
}

func serve(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestReceive_OKBothMethods(t *testing.T) {
	env := newTestEnv()
	router, err := NewRouter(env.cfg)
	require.NoError(t, err)

	w := serve(t, router, http.MethodPost, "/api/purchases/PUR-1/receive", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, false, body["alreadyReceived"])
	assert.Equal(t, "Received", body["purchase"].(map[string]any)["status"])

	w = serve(t, router, http.MethodGet, "/api/purchases/PUR-1/receive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["alreadyReceived"])
}

func TestReceive_NotFound(t *testing.T) {
	w := newTestEnv().do(t, http.MethodPost, "/api/purchases/PUR-404/receive", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode(t, w)["error"])
}

func TestReceive_InternalErrorCarriesDetails(t *testing.T) {
	env := newTestEnv()
	env.purchases.receiveErr = apperror.NewInternal(errors.New("line 2 (Galaxy A14): connection reset"))

	w := env.do(t, http.MethodPost, "/api/purchases/PUR-1/receive", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Equal(t, "line 2 (Galaxy A14): connection reset", body["details"])
}

func TestReceive_PlainErrorIsInternal(t *testing.T) {
	env := newTestEnv()
	env.purchases.receiveErr = errors.New("boom")

	w := env.do(t, http.MethodGet, "/api/purchases/PUR-1/receive", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", decode(t, w)["details"])
}

func TestCreatePurchase(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodPost, "/api/purchases", map[string]any{
		"dealerId":     "DLR-1",
		"purchaseDate": "2024-03-05",
		"items": []map[string]any{{
			"category":      "Mobile",
			"productName":   "Galaxy A14",
			"model":         "SM-A145F",
			"quantity":      2,
			"purchasePrice": 11000.50,
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "PUR-1", decode(t, w)["id"])

	require.NotNil(t, env.purchases.created)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), env.purchases.created.PurchaseDate)
	require.Len(t, env.purchases.created.Items, 1)
	assert.Equal(t, "mobile", string(env.purchases.created.Items[0].Category))
	assert.Equal(t, "11000.5", env.purchases.created.Items[0].PurchasePrice.String())
}

func TestCreatePurchase_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"bad date", map[string]any{"dealerId": "DLR-1", "purchaseDate": "05/03/2024", "items": []any{}}},
		{"no items", map[string]any{"dealerId": "DLR-1", "purchaseDate": "2024-03-05"}},
		{"not json", "oops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestEnv().do(t, http.MethodPost, "/api/purchases", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestListPurchases_Filters(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/api/purchases?dealerId=DLR-1&from=2024-01-01&to=2024-01-31&status=received", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	f := env.purchases.filter
	assert.Equal(t, "DLR-1", f.DealerID)
	assert.Equal(t, purchase.StatusReceived, f.Status)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.True(t, f.To.After(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)), "to covers the whole day")

	body := decode(t, w)
	assert.Equal(t, []any{}, body["items"])
}

func TestUnitLookupAndStaticRoutes(t *testing.T) {
	env := newTestEnv()
	router, err := NewRouter(env.cfg)
	require.NoError(t, err)

	w := serve(t, router, http.MethodGet, "/api/ACM-MOB-SMA-0003", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ACM-MOB-SMA-0003", env.inventory.lookedUp)

	w = serve(t, router, http.MethodGet, "/api/mobiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = serve(t, router, http.MethodGet, "/api/low-stock?threshold=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, env.inventory.threshold)

	w = serve(t, router, http.MethodGet, "/api/counters/ACM-MOB-SMA", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, decode(t, w)["value"])
}

func TestExport_ServesWorkbook(t *testing.T) {
	env := newTestEnv()
	w := env.do(t, http.MethodGet, "/api/inventory/export?dealerId=DLR-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, []byte("PK"), w.Body.Bytes()[:2])

	require.Len(t, env.inventory.listed, 2)
	for _, f := range env.inventory.listed {
		assert.Equal(t, "DLR-1", f.DealerID)
		assert.Zero(t, f.Limit, "export must not page")
	}
}

func TestDealer_NotFound(t *testing.T) {
	w := newTestEnv().do(t, http.MethodGet, "/api/dealers/DLR-X", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode(t, w)["error"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv()
	env.cfg.AuthRequired = true
	router, err := NewRouter(env.cfg)
	require.NoError(t, err)

	w := serve(t, router, http.MethodGet, "/api/mobiles", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(t, router, http.MethodGet, "/api/mobiles", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(t, router, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	w = serve(t, router, http.MethodGet, "/api/mobiles", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv()
	env.cfg.LoginRate = "2-M"
	router, err := NewRouter(env.cfg)
	require.NoError(t, err)

	creds := map[string]string{"username": "admin", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w := serve(t, router, http.MethodPost, "/api/auth/login", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := serve(t, router, http.MethodPost, "/api/auth/login", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNewRouter_BadRate(t *testing.T) {
	env := newTestEnv()
	env.cfg.LoginRate = "lots"
	_, err := NewRouter(env.cfg)
	assert.Error(t, err)
}

func TestHealthAndRequestID(t *testing.T) {
	w := newTestEnv().do(t, http.MethodGet, "/health/live", nil, "X-Request-ID", "req-42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = newTestEnv().do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

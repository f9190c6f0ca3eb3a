package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tiendita-backend/engine"
	"tiendita-backend/models"
)

func TestGetBusinessPublicView(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedOpenAllWeek(db, business.ID)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/businesses/"+business.Slug, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["name"] != "Bar Paco" {
		t.Errorf("expected business name, got %v", resp["name"])
	}
	if open, ok := resp["open_now"].(bool); !ok || !open {
		t.Errorf("expected open_now true, got %v", resp["open_now"])
	}
}

func TestGetBusinessNotFound(t *testing.T) {
	db := freshDB()
	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/businesses/no-such-place", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetAvailabilityOpenAndAccepting(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedOpenAllWeek(db, business.ID)
	seedOrderSettings(db, business.ID, false, 10, nil)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/businesses/"+business.Slug+"/availability", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if accepting, _ := resp["accepting_orders"].(bool); !accepting {
		t.Errorf("expected accepting_orders true, got %v", resp["accepting_orders"])
	}
}

func TestGetAvailabilityClosedBusiness(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedClosedAllWeek(db, business.ID)
	seedOrderSettings(db, business.ID, false, 10, nil)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/businesses/"+business.Slug+"/availability", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if accepting, _ := resp["accepting_orders"].(bool); accepting {
		t.Error("expected accepting_orders false for a closed business")
	}
	if resp["rejection_reason"] != string(engine.ReasonBusinessClosed) {
		t.Errorf("expected closed rejection reason, got %v", resp["rejection_reason"])
	}
	if resp["today_hours"] != "Cerrado" {
		t.Errorf("expected Cerrado for today, got %v", resp["today_hours"])
	}
}

func TestUpdateMyBusinessPatchesFields(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/me", map[string]string{
		"phone":    "+34 600 000 000",
		"timezone": "Europe/Madrid",
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.Business
	db.First(&updated, business.ID)
	if updated.Phone != "+34 600 000 000" {
		t.Errorf("phone not updated: %q", updated.Phone)
	}
	if updated.Timezone != "Europe/Madrid" {
		t.Errorf("timezone not updated: %q", updated.Timezone)
	}
	// Untouched fields survive the patch
	if updated.Name != "Bar Paco" {
		t.Errorf("name should be unchanged, got %q", updated.Name)
	}
}

func TestUpdateMyBusinessRejectsUnknownTimezone(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/me", map[string]string{
		"timezone": "Mars/Olympus_Mons",
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStoreHoursReplacesSchedule(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedOpenAllWeek(db, business.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	// Sunday (day 0) must be accepted; Tuesday gets a siesta split.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/hours", []map[string]interface{}{
		{"day_of_week": 0, "is_closed": true},
		{"day_of_week": 2, "open_time": "09:00", "close_time": "14:00"},
		{"day_of_week": 2, "open_time": "17:00", "close_time": "21:00"},
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rows []models.StoreHours
	db.Where("business_id = ?", business.ID).Order("day_of_week, open_time").Find(&rows)
	if len(rows) != 3 {
		t.Fatalf("expected the schedule to be replaced with 3 rows, got %d", len(rows))
	}
	if rows[0].DayOfWeek != 0 || !rows[0].IsClosed {
		t.Errorf("expected first row to be closed Sunday, got %+v", rows[0])
	}
	if rows[1].OpenTime != "09:00" || rows[2].OpenTime != "17:00" {
		t.Errorf("expected Tuesday split ranges, got %+v and %+v", rows[1], rows[2])
	}
}

func TestUpdateStoreHoursRejectsBadDay(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/hours", []map[string]interface{}{
		{"day_of_week": 7, "open_time": "09:00", "close_time": "14:00"},
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStoreHoursRejectsOverlap(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	original := seedOpenAllWeek(db, business.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/hours", []map[string]interface{}{
		{"day_of_week": 1, "open_time": "09:00", "close_time": "14:00"},
		{"day_of_week": 1, "open_time": "13:00", "close_time": "18:00"},
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// A rejected update leaves the stored schedule untouched
	var count int64
	db.Model(&models.StoreHours{}).Where("business_id = ?", business.ID).Count(&count)
	if int(count) != len(original) {
		t.Errorf("expected %d original rows to survive, got %d", len(original), count)
	}
}

func TestUpdateStoreHoursRejectsInvertedRange(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/hours", []map[string]interface{}{
		{"day_of_week": 3, "open_time": "18:00", "close_time": "09:00"},
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateOrderSettings(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedOrderSettings(db, business.ID, false, 10, nil)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/settings", map[string]interface{}{
		"auto_accept_orders":  true,
		"max_orders_per_hour": 8,
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var settings models.OrderSettings
	db.Where("business_id = ?", business.ID).First(&settings)
	if !settings.AutoAcceptOrders {
		t.Error("expected auto accept to be enabled")
	}
	if settings.MaxOrdersPerHour == nil || *settings.MaxOrdersPerHour != 8 {
		t.Errorf("expected cap 8, got %v", settings.MaxOrdersPerHour)
	}
}

func TestUpdateOrderSettingsZeroCapMeansUnlimited(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	cap := 5
	seedOrderSettings(db, business.ID, false, 10, &cap)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/settings", map[string]interface{}{
		"max_orders_per_hour": 0,
	}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var settings models.OrderSettings
	db.Where("business_id = ?", business.ID).First(&settings)
	if settings.MaxOrdersPerHour != nil {
		t.Errorf("expected cap cleared, got %v", *settings.MaxOrdersPerHour)
	}
}

func TestUpdateOrderSettingsRejectsNegativeBuffer(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedOrderSettings(db, business.ID, false, 10, nil)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/merchant/settings", map[string]interface{}{
		"prep_time_buffer_minutes": -5,
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestConfirmationFlow(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	_, token := seedOwnerWithToken(db, business)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	// Nothing visible yet
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/merchant/confirmation", nil, token))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with no confirmation, got %d", w.Code)
	}

	presenter.Show(engine.ConfirmationEvent{
		Kind:        engine.ConfirmationReady,
		OrderNumber: "ORD-42",
		CreatedAt:   time.Now(),
	})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/merchant/confirmation", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a visible confirmation, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["kind"] != "ready" || resp["order_number"] != "ORD-42" {
		t.Errorf("unexpected confirmation payload: %v", resp)
	}

	// Dismiss clears the slot
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/merchant/confirmation", nil, token))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on dismiss, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/merchant/confirmation", nil, token))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 after dismiss, got %d", w.Code)
	}
}

func TestAdminDeactivatesBusiness(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	_, token := seedTestUser(db, "admin@test.com", "admin", nil)

	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/businesses/"+business.ID.String()+"/active",
		map[string]bool{"is_active": false}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// A deactivated business disappears from the public storefront
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/businesses/"+business.Slug, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deactivated business, got %d", w.Code)
	}
}

func TestMerchantDashboard(t *testing.T) {
	db := freshDB()
	owner, _ := seedTestUser(db, "owner@test.com", "merchant_owner", nil)
	business := seedBusiness(db, "Bar Paco", owner.ID)
	seedOpenAllWeek(db, business.ID)
	customer, _ := seedTestUser(db, "customer@test.com", "customer", nil)
	seedOrder(db, customer.ID, business.ID, engine.StatusPending)
	seedOrder(db, customer.ID, business.ID, engine.StatusCompleted)
	seedOrder(db, customer.ID, business.ID, engine.StatusCancelled)

	_, token := seedOwnerWithToken(db, business)
	_, presenter := newTestMachine()
	router := setupMerchantRouter(db, presenter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/merchant/dashboard", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if got := resp["total_orders"].(float64); got != 3 {
		t.Errorf("expected 3 total orders, got %v", got)
	}
	// Two non-cancelled orders at 6.50 each
	if got := resp["total_revenue"].(float64); got != 13.0 {
		t.Errorf("expected revenue 13.0, got %v", got)
	}
	if got := resp["open_orders"].(float64); got != 1 {
		t.Errorf("expected 1 open order, got %v", got)
	}
	if open, ok := resp["open_now"].(bool); !ok || !open {
		t.Errorf("expected open_now true, got %v", resp["open_now"])
	}
}

package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"tiendita-backend/engine"
	"tiendita-backend/models"
	"tiendita-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(engine.StatusNotification) {}

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-for-routes")
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY, "email" TEXT NOT NULL UNIQUE, "password" TEXT NOT NULL,
			"name" TEXT, "role" TEXT DEFAULT 'customer', "business_id" TEXT,
			"phone" TEXT, "is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "businesses" (
			"id" TEXT PRIMARY KEY, "name" TEXT NOT NULL, "slug" TEXT NOT NULL UNIQUE,
			"owner_id" TEXT NOT NULL, "address" TEXT, "city" TEXT, "phone" TEXT, "email" TEXT,
			"timezone" TEXT NOT NULL DEFAULT 'Europe/Madrid', "is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "store_hours" (
			"id" TEXT PRIMARY KEY, "business_id" TEXT NOT NULL, "day_of_week" INTEGER NOT NULL,
			"open_time" TEXT NOT NULL DEFAULT '09:00', "close_time" TEXT NOT NULL DEFAULT '21:00',
			"is_closed" INTEGER DEFAULT 0, "created_at" DATETIME, "updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "order_settings" (
			"id" TEXT PRIMARY KEY, "business_id" TEXT NOT NULL UNIQUE,
			"auto_accept_orders" INTEGER DEFAULT 0, "prep_time_buffer_minutes" INTEGER DEFAULT 10,
			"max_orders_per_hour" INTEGER, "allow_scheduled_orders" INTEGER DEFAULT 0,
			"cancellation_policy" TEXT, "created_at" DATETIME, "updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "menu_categories" (
			"id" TEXT PRIMARY KEY, "business_id" TEXT NOT NULL, "name" TEXT NOT NULL,
			"position" INTEGER DEFAULT 0,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "menu_items" (
			"id" TEXT PRIMARY KEY, "business_id" TEXT NOT NULL, "category_id" TEXT NOT NULL,
			"name" TEXT NOT NULL, "description" TEXT, "price" REAL NOT NULL,
			"prep_time_minutes" INTEGER DEFAULT 15, "is_available" INTEGER DEFAULT 1,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "orders" (
			"id" TEXT PRIMARY KEY, "user_id" TEXT NOT NULL, "business_id" TEXT NOT NULL,
			"order_number" TEXT NOT NULL UNIQUE, "status" TEXT DEFAULT 'pending',
			"customer_name" TEXT, "customer_phone" TEXT, "payment_method" TEXT,
			"subtotal" REAL NOT NULL, "total" REAL NOT NULL,
			"estimated_ready_minutes" INTEGER, "special_notes" TEXT,
			"created_at" DATETIME, "updated_at" DATETIME, "deleted_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "order_items" (
			"id" TEXT PRIMARY KEY, "order_id" TEXT NOT NULL, "menu_item_id" TEXT NOT NULL,
			"item_name" TEXT, "quantity" INTEGER NOT NULL, "price" REAL NOT NULL,
			"prep_time_minutes" INTEGER, "created_at" DATETIME, "updated_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := setupTestDB(t)
	r := gin.New()
	SetupRoutes(r, db, nopDispatcher{})
	return r, db
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublicBusinessRoute(t *testing.T) {
	r, db := setupRouter(t)
	owner := models.User{ID: uuid.New(), Email: "owner@test.com", Password: "x", Role: "merchant_owner"}
	db.Create(&owner)
	business := models.Business{
		ID: uuid.New(), Name: "Bar Paco", Slug: "bar-paco",
		OwnerID: owner.ID, Timezone: "UTC", IsActive: true,
	}
	db.Create(&business)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/businesses/bar-paco", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/orders", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRouteBlocksNonAdmin(t *testing.T) {
	r, _ := setupRouter(t)
	token, _ := utils.GenerateToken(uuid.New(), "user@test.com", "customer", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMerchantRouteBlocksCustomer(t *testing.T) {
	r, _ := setupRouter(t)
	token, _ := utils.GenerateToken(uuid.New(), "user@test.com", "customer", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/merchant/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMerchantRouteRequiresBusiness(t *testing.T) {
	r, _ := setupRouter(t)
	// Owner role but no business in the token
	token, _ := utils.GenerateToken(uuid.New(), "owner@test.com", "merchant_owner", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/merchant/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

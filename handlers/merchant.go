package handlers

import (
	"net/http"
	"time"

	"tiendita-backend/engine"
	"tiendita-backend/models"
	"tiendita-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MerchantHandler struct {
	DB        *gorm.DB
	Presenter *engine.ConfirmationPresenter
}

// GetBusiness is the public storefront view: profile, hours and
// whether the business is open right now in its own timezone.
func (h *MerchantHandler) GetBusiness(c *gin.Context) {
	slug := c.Param("slug")

	var business models.Business
	if err := h.DB.Preload("StoreHours").
		Where("slug = ? AND is_active = ?", slug, true).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	response := gin.H{
		"id":          business.ID,
		"name":        business.Name,
		"slug":        business.Slug,
		"address":     business.Address,
		"city":        business.City,
		"phone":       business.Phone,
		"timezone":    business.Timezone,
		"store_hours": business.StoreHours,
	}

	if weekly, err := models.WeeklyFromStoreHours(business.StoreHours); err == nil {
		now := time.Now().In(business.Location())
		response["open_now"] = weekly.IsOpenAt(now)
		response["today_hours"] = weekly.DaySummary(now)
	}

	c.JSON(http.StatusOK, response)
}

// GetAvailability is the public pre-checkout probe: can this business
// take an order right now, and why not if it can't.
func (h *MerchantHandler) GetAvailability(c *gin.Context) {
	slug := c.Param("slug")

	var business models.Business
	if err := h.DB.Preload("StoreHours").Preload("Settings").
		Where("slug = ? AND is_active = ?", slug, true).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	weekly, err := models.WeeklyFromStoreHours(business.StoreHours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Store hours are misconfigured"})
		return
	}

	settings := business.Settings
	if settings == nil {
		settings = &models.OrderSettings{BusinessID: business.ID}
	}
	policy := settings.Policy()

	now := time.Now().In(business.Location())

	var hourCount int64
	h.DB.Model(&models.Order{}).
		Where("business_id = ? AND created_at >= ? AND status <> ?",
			business.ID, now.Add(-time.Hour), engine.StatusCancelled).
		Count(&hourCount)

	decision := policy.CanAcceptNewOrder(int(hourCount), now, weekly.IsOpenAt(now))

	c.JSON(http.StatusOK, gin.H{
		"open_now":          weekly.IsOpenAt(now),
		"today_hours":       weekly.DaySummary(now),
		"accepting_orders":  decision.Accepted,
		"rejection_reason":  decision.Reason,
		"auto_accept":       policy.AutoAccept,
		"prep_buffer_mins":  policy.PrepBufferMinutes,
		"max_orders_hourly": policy.MaxOrdersPerHour,
	})
}

func (h *MerchantHandler) GetMyBusiness(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var business models.Business
	if err := h.DB.Preload("StoreHours").Preload("Settings").
		Where("id = ?", businessID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	c.JSON(http.StatusOK, business)
}

func (h *MerchantHandler) UpdateMyBusiness(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var business models.Business
	if err := h.DB.Where("id = ?", businessID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		City     *string `json:"city"`
		Phone    *string `json:"phone"`
		Email    *string `json:"email"`
		Timezone *string `json:"timezone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown timezone: " + *req.Timezone})
			return
		}
		business.Timezone = *req.Timezone
	}
	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.Address != nil {
		business.Address = *req.Address
	}
	if req.City != nil {
		business.City = *req.City
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Email != nil {
		business.Email = *req.Email
	}

	if err := h.DB.Save(&business).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update business"})
		return
	}

	h.DB.Preload("StoreHours").First(&business, business.ID)
	c.JSON(http.StatusOK, business)
}

func (h *MerchantHandler) GetStoreHours(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var hours []models.StoreHours
	if err := h.DB.Where("business_id = ?", businessID).
		Order("day_of_week, open_time").Find(&hours).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch store hours"})
		return
	}

	c.JSON(http.StatusOK, hours)
}

// UpdateStoreHours replaces the whole weekly schedule at once. The new
// rows are validated as a week before anything is written, so a
// rejected update leaves the stored schedule untouched.
func (h *MerchantHandler) UpdateStoreHours(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req []struct {
		DayOfWeek int    `json:"day_of_week"`
		OpenTime  string `json:"open_time"`
		CloseTime string `json:"close_time"`
		IsClosed  bool   `json:"is_closed"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one store hours row is required"})
		return
	}

	// 0=Sunday is a valid value, so the day range is checked by hand
	rows := make([]models.StoreHours, 0, len(req))
	for _, r := range req {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be between 0 (Sunday) and 6 (Saturday)"})
			return
		}
		row := models.StoreHours{
			BusinessID: bID,
			DayOfWeek:  r.DayOfWeek,
			OpenTime:   r.OpenTime,
			CloseTime:  r.CloseTime,
			IsClosed:   r.IsClosed,
		}
		if row.OpenTime == "" {
			row.OpenTime = "09:00"
		}
		if row.CloseTime == "" {
			row.CloseTime = "21:00"
		}
		rows = append(rows, row)
	}

	if _, err := models.WeeklyFromStoreHours(rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_id = ?", bID).Delete(&models.StoreHours{}).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store hours"})
		return
	}

	var hours []models.StoreHours
	h.DB.Where("business_id = ?", bID).Order("day_of_week, open_time").Find(&hours)
	c.JSON(http.StatusOK, hours)
}

func (h *MerchantHandler) GetOrderSettings(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var settings models.OrderSettings
	if err := h.DB.Where("business_id = ?", businessID).First(&settings).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order settings not found"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *MerchantHandler) UpdateOrderSettings(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var settings models.OrderSettings
	if err := h.DB.Where("business_id = ?", businessID).First(&settings).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order settings not found"})
		return
	}

	var req struct {
		AutoAcceptOrders      *bool   `json:"auto_accept_orders"`
		PrepTimeBufferMinutes *int    `json:"prep_time_buffer_minutes"`
		MaxOrdersPerHour      *int    `json:"max_orders_per_hour"` // 0 clears the cap
		AllowScheduledOrders  *bool   `json:"allow_scheduled_orders"`
		CancellationPolicy    *string `json:"cancellation_policy"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.AutoAcceptOrders != nil {
		settings.AutoAcceptOrders = *req.AutoAcceptOrders
	}
	if req.PrepTimeBufferMinutes != nil {
		settings.PrepTimeBufferMinutes = *req.PrepTimeBufferMinutes
	}
	if req.MaxOrdersPerHour != nil {
		if *req.MaxOrdersPerHour == 0 {
			settings.MaxOrdersPerHour = nil
		} else {
			settings.MaxOrdersPerHour = req.MaxOrdersPerHour
		}
	}
	if req.AllowScheduledOrders != nil {
		settings.AllowScheduledOrders = *req.AllowScheduledOrders
	}
	if req.CancellationPolicy != nil {
		settings.CancellationPolicy = *req.CancellationPolicy
	}

	if err := settings.Policy().Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// GetConfirmation returns the confirmation currently on screen, or 204
// when the slot is empty.
func (h *MerchantHandler) GetConfirmation(c *gin.Context) {
	ev, ok := h.Presenter.Current()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DismissConfirmation clears the confirmation early, before its
// lifetime runs out.
func (h *MerchantHandler) DismissConfirmation(c *gin.Context) {
	h.Presenter.Dismiss()
	c.Status(http.StatusNoContent)
}

// ListBusinesses is the admin view over all registered businesses.
func (h *MerchantHandler) ListBusinesses(c *gin.Context) {
	query := h.DB.Model(&models.Business{})

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(city) LIKE LOWER(?)", "%"+search+"%", "%"+search+"%")
	}

	var businesses []models.Business
	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses"})
		return
	}

	c.JSON(http.StatusOK, businesses)
}

// SetBusinessActive lets an admin activate or deactivate a business. A
// deactivated business disappears from public lookups and stops taking
// orders.
func (h *MerchantHandler) SetBusinessActive(c *gin.Context) {
	id := c.Param("id")

	var business models.Business
	if err := h.DB.Where("id = ?", id).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := h.DB.Model(&business).Update("is_active", *req.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update business"})
		return
	}

	business.IsActive = *req.IsActive
	c.JSON(http.StatusOK, business)
}

func (h *MerchantHandler) GetDashboard(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var totalRevenue float64
	var totalOrders int64
	var todayOrders int64
	today := time.Now().Truncate(24 * time.Hour)

	h.DB.Model(&models.Order{}).Where("business_id = ?", businessID).Count(&totalOrders)
	h.DB.Model(&models.Order{}).
		Where("business_id = ? AND status <> ?", businessID, engine.StatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&totalRevenue)
	h.DB.Model(&models.Order{}).Where("business_id = ? AND created_at >= ?", businessID, today).Count(&todayOrders)

	var openOrders int64
	h.DB.Model(&models.Order{}).Where("business_id = ? AND status IN ?", businessID,
		[]string{"pending", "accepted", "preparing"}).Count(&openOrders)

	var readyOrders int64
	h.DB.Model(&models.Order{}).Where("business_id = ? AND status = ?", businessID, engine.StatusReady).Count(&readyOrders)

	var todayRevenue float64
	h.DB.Model(&models.Order{}).
		Where("business_id = ? AND created_at >= ? AND status <> ?", businessID, today, engine.StatusCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&todayRevenue)

	var recentOrders []models.Order
	h.DB.Preload("Items").Preload("User").
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Limit(10).
		Find(&recentOrders)

	response := gin.H{
		"total_revenue": totalRevenue,
		"total_orders":  totalOrders,
		"today_orders":  todayOrders,
		"today_revenue": todayRevenue,
		"open_orders":   openOrders,
		"ready_orders":  readyOrders,
		"recent_orders": recentOrders,
	}

	var business models.Business
	if err := h.DB.Preload("StoreHours").Where("id = ?", businessID).First(&business).Error; err == nil {
		if weekly, err := models.WeeklyFromStoreHours(business.StoreHours); err == nil {
			now := time.Now().In(business.Location())
			response["open_now"] = weekly.IsOpenAt(now)
			response["today_hours"] = weekly.DaySummary(now)
		}
	}

	c.JSON(http.StatusOK, response)
}

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

type OrderHandler struct {
	DB      *gorm.DB
	Machine *engine.Machine
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		BusinessID    string `json:"business_id" binding:"required"`
		PaymentMethod string `json:"payment_method"`
		SpecialNotes  string `json:"special_notes"`
		Items         []struct {
			MenuItemID string `json:"menu_item_id" binding:"required"`
			Quantity   int    `json:"quantity" binding:"required,min=1"`
		} `json:"items" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid business_id"})
		return
	}

	var business models.Business
	if err := h.DB.Preload("StoreHours").Preload("Settings").
		Where("id = ? AND is_active = ?", businessID, true).First(&business).Error; err != nil {
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

	// Acceptance check runs in the business's local time with a snapshot
	// of the rolling hour's order volume.
	now := time.Now().In(business.Location())

	var hourCount int64
	h.DB.Model(&models.Order{}).
		Where("business_id = ? AND created_at >= ? AND status <> ?",
			business.ID, now.Add(-time.Hour), engine.StatusCancelled).
		Count(&hourCount)

	decision := policy.CanAcceptNewOrder(int(hourCount), now, weekly.IsOpenAt(now))
	if !decision.Accepted {
		msg := "This business is not accepting orders right now"
		if decision.Reason == engine.ReasonBusinessClosed {
			msg = "This business is currently closed"
		}
		c.JSON(http.StatusConflict, gin.H{"error": msg, "reason": decision.Reason})
		return
	}

	// Resolve menu items and build snapshot lines
	itemIDs := make([]uuid.UUID, 0, len(req.Items))
	quantities := make(map[uuid.UUID]int, len(req.Items))
	for _, line := range req.Items {
		itemID, err := uuid.Parse(line.MenuItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu_item_id"})
			return
		}
		itemIDs = append(itemIDs, itemID)
		quantities[itemID] += line.Quantity
	}

	var menuItems []models.MenuItem
	if err := h.DB.Where("id IN ? AND business_id = ?", itemIDs, business.ID).Find(&menuItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu items"})
		return
	}
	if len(menuItems) != len(quantities) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "One or more menu items not found"})
		return
	}

	var subtotal float64
	var orderItems []models.OrderItem
	for _, item := range menuItems {
		if !item.IsAvailable {
			c.JSON(http.StatusBadRequest, gin.H{"error": item.Name + " is currently unavailable"})
			return
		}
		qty := quantities[item.ID]
		subtotal += item.Price * float64(qty)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:      item.ID,
			ItemName:        item.Name,
			Quantity:        qty,
			Price:           item.Price,
			PrepTimeMinutes: item.PrepTimeMinutes,
		})
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	order := models.Order{
		ID:            uuid.New(),
		UserID:        user.ID,
		BusinessID:    business.ID,
		Status:        engine.StatusPending,
		CustomerName:  user.Name,
		CustomerPhone: user.Phone,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      subtotal,
		Total:         subtotal,
		SpecialNotes:  req.SpecialNotes,
		Items:         orderItems,
	}

	// Quote from the slowest line item plus the configured buffer
	base := order.BasePrepMinutes()
	estimate := policy.QuoteReadyMinutes(base)
	order.EstimatedReadyMinutes = &estimate

	tx := h.DB.Begin()
	if err := tx.Omit("Items").Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	if err := tx.Omit("MenuItem", "Order").CreateInBatches(&orderItems, 100).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order items"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete order"})
		return
	}

	// Auto-accept runs through the same state machine as a manual accept
	if policy.AutoAccept {
		if next, err := h.Machine.Transition(order.Ref(), engine.StatusAccepted); err == nil {
			h.DB.Model(&order).Update("status", next)
			order.Status = next
		}
	}

	h.DB.Preload("Items").Preload("User").First(&order, order.ID)

	// Send order received email (non-blocking)
	utils.SendOrderReceived(user.Email, user.Name, order.OrderNumber, order.Total, order.EstimatedReadyMinutes)

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	userRole, _ := c.Get("user_role")

	var orders []models.Order
	query := h.DB.Preload("Items").Preload("User")

	roleStr, _ := userRole.(string)

	switch roleStr {
	case "admin":
		// Admin sees all orders, optionally filtered by business
		if bID := c.Query("business_id"); bID != "" {
			query = query.Where("business_id = ?", bID)
		}
	case "merchant_owner", "merchant_staff":
		// Merchant roles see only their business's orders
		if bID, ok := c.Get("business_id"); ok {
			query = query.Where("business_id = ?", bID)
		}
	default:
		// Regular customer sees their own orders
		if exists {
			query = query.Where("user_id = ?", userID)
		}
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	userID, _ := c.Get("user_id")
	userRole, _ := c.Get("user_role")

	var order models.Order
	query := h.DB.Preload("Items").Preload("User")

	roleStr, _ := userRole.(string)

	switch roleStr {
	case "admin":
		query = query.Where("id = ?", id)
	case "merchant_owner", "merchant_staff":
		if bID, ok := c.Get("business_id"); ok {
			query = query.Where("id = ? AND business_id = ?", id, bID)
		}
	default:
		query = query.Where("id = ? AND user_id = ?", id, userID)
	}

	if err := query.First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")
	userRole, _ := c.Get("user_role")

	var req struct {
		Status engine.Status `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var order models.Order
	query := h.DB.Where("id = ?", id)

	// Merchant roles can only update their own business's orders
	roleStr, _ := userRole.(string)
	if roleStr == "merchant_owner" || roleStr == "merchant_staff" {
		if bID, ok := c.Get("business_id"); ok {
			query = query.Where("business_id = ?", bID)
		}
	}

	if err := query.First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	next, err := h.Machine.Transition(order.Ref(), req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Same-state request is a no-op; nothing to persist, no email
	changed := next != order.Status
	if changed {
		order.Status = next
		if err := h.DB.Model(&order).Update("status", next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		}
	}

	h.DB.Preload("Items").Preload("User").First(&order, order.ID)

	// Send status update email (non-blocking)
	if changed && order.User.Email != "" {
		utils.SendOrderStatusUpdate(order.User.Email, order.User.Name, order.OrderNumber, string(order.Status))
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrderTransitions(c *gin.Context) {
	c.JSON(http.StatusOK, engine.AllowedTransitions)
}

// GetAdminDashboard returns pre-computed platform stats with an
// optional business filter.
func (h *OrderHandler) GetAdminDashboard(c *gin.Context) {
	businessID := c.Query("business_id")

	orderQuery := h.DB.Model(&models.Order{})
	if businessID != "" {
		orderQuery = orderQuery.Where("business_id = ?", businessID)
	}

	var totalOrders int64
	orderQuery.Count(&totalOrders)

	var totalRevenue float64
	revenueQuery := h.DB.Model(&models.Order{}).Where("status <> ?", engine.StatusCancelled)
	if businessID != "" {
		revenueQuery = revenueQuery.Where("business_id = ?", businessID)
	}
	revenueQuery.Select("COALESCE(SUM(total), 0)").Scan(&totalRevenue)

	var pendingOrders int64
	pendingQuery := h.DB.Model(&models.Order{}).Where("status = ?", engine.StatusPending)
	if businessID != "" {
		pendingQuery = pendingQuery.Where("business_id = ?", businessID)
	}
	pendingQuery.Count(&pendingOrders)

	var businessCount int64
	h.DB.Model(&models.Business{}).Count(&businessCount)

	var recentOrders []models.Order
	recentQuery := h.DB.Preload("Items").Preload("User").Order("created_at DESC").Limit(10)
	if businessID != "" {
		recentQuery = recentQuery.Where("business_id = ?", businessID)
	}
	recentQuery.Find(&recentOrders)

	c.JSON(http.StatusOK, gin.H{
		"total_orders":     totalOrders,
		"total_revenue":    totalRevenue,
		"pending_orders":   pendingOrders,
		"total_businesses": businessCount,
		"recent_orders":    recentOrders,
	})
}

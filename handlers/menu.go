package handlers

import (
	"net/http"

	"tiendita-backend/models"
	"tiendita-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuHandler struct {
	DB *gorm.DB
}

// GetBusinessMenu is the public menu view: categories in display order,
// only items that are currently available.
func (h *MenuHandler) GetBusinessMenu(c *gin.Context) {
	slug := c.Param("slug")

	var business models.Business
	if err := h.DB.Where("slug = ? AND is_active = ?", slug, true).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	var categories []models.MenuCategory
	if err := h.DB.Where("business_id = ?", business.ID).
		Order("position").
		Preload("Items", "is_available = ?", true).
		Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business_id": business.ID,
		"categories":  categories,
	})
}

func (h *MenuHandler) GetMyMenu(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var categories []models.MenuCategory
	if err := h.DB.Where("business_id = ?", businessID).
		Order("position").
		Preload("Items").
		Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *MenuHandler) CreateCategory(c *gin.Context) {
	businessID, _ := c.Get("business_id")

	var req struct {
		Name     string `json:"name" binding:"required"`
		Position int    `json:"position"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	category := models.MenuCategory{
		ID:         uuid.New(),
		BusinessID: businessID.(uuid.UUID),
		Name:       req.Name,
		Position:   req.Position,
	}

	if err := h.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *MenuHandler) UpdateCategory(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	id := c.Param("id")

	var category models.MenuCategory
	if err := h.DB.Where("id = ? AND business_id = ?", id, businessID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Position *int    `json:"position"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Position != nil {
		category.Position = *req.Position
	}

	if err := h.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	id := c.Param("id")

	var category models.MenuCategory
	if err := h.DB.Where("id = ? AND business_id = ?", id, businessID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var itemCount int64
	h.DB.Model(&models.MenuItem{}).Where("category_id = ?", category.ID).Count(&itemCount)
	if itemCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has menu items"})
		return
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	bID := businessID.(uuid.UUID)

	var req struct {
		CategoryID      string  `json:"category_id" binding:"required"`
		Name            string  `json:"name" binding:"required"`
		Description     string  `json:"description"`
		Price           float64 `json:"price" binding:"required,gt=0"`
		PrepTimeMinutes int     `json:"prep_time_minutes"`
		IsAvailable     *bool   `json:"is_available"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
		return
	}

	var category models.MenuCategory
	if err := h.DB.Where("id = ? AND business_id = ?", categoryID, bID).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if req.PrepTimeMinutes < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prep_time_minutes cannot be negative"})
		return
	}
	if req.PrepTimeMinutes == 0 {
		req.PrepTimeMinutes = 15
	}

	item := models.MenuItem{
		ID:              uuid.New(),
		BusinessID:      bID,
		CategoryID:      category.ID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		PrepTimeMinutes: req.PrepTimeMinutes,
		IsAvailable:     true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := h.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	id := c.Param("id")

	var item models.MenuItem
	if err := h.DB.Where("id = ? AND business_id = ?", id, businessID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		Description     *string  `json:"description"`
		Price           *float64 `json:"price"`
		PrepTimeMinutes *int     `json:"prep_time_minutes"`
		IsAvailable     *bool    `json:"is_available"`
		CategoryID      *string  `json:"category_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
			return
		}
		item.Price = *req.Price
	}
	if req.PrepTimeMinutes != nil {
		if *req.PrepTimeMinutes < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "prep_time_minutes cannot be negative"})
			return
		}
		item.PrepTimeMinutes = *req.PrepTimeMinutes
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		var category models.MenuCategory
		if err := h.DB.Where("id = ? AND business_id = ?", categoryID, businessID).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		item.CategoryID = category.ID
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := h.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	businessID, _ := c.Get("business_id")
	id := c.Param("id")

	var item models.MenuItem
	if err := h.DB.Where("id = ? AND business_id = ?", id, businessID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

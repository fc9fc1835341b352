package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/policy"
	"github.com/arintala/wanderplan/internal/validation"
)

type CreateDestinationRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Country     string   `json:"country" binding:"required"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageURL    string   `json:"image_url" binding:"omitempty,url"`
	IsPopular   bool     `json:"is_popular"`
}

type UpdateDestinationRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Country     *string  `json:"country"`
	City        *string  `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	ImageURL    *string  `json:"image_url" binding:"omitempty,url"`
	IsPopular   *bool    `json:"is_popular"`
}

func validateCoordinates(errs validation.Errors, latitude, longitude *float64) {
	if latitude != nil && (*latitude < -90 || *latitude > 90) {
		errs.Add("latitude", "Latitude must be between -90 and 90.")
	}
	if longitude != nil && (*longitude < -180 || *longitude > 180) {
		errs.Add("longitude", "Longitude must be between -180 and 180.")
	}
}

// checkDestinationUnique enforces the (name, city, country) natural key,
// excluding the row being updated.
func checkDestinationUnique(db *gorm.DB, errs validation.Errors, name, city, country string, excludeID uuid.UUID) {
	query := db.Model(&models.Destination{}).
		Where("name = ? AND city = ? AND country = ?", name, city, country)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	query.Count(&count)
	if count > 0 {
		errs.AddNonField("The fields name, city, country must make a unique set.")
	}
}

func CreateDestination(c *gin.Context) {
	var req CreateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	db := middleware.GetDB(c)
	caller := middleware.CurrentUser(c)

	errs := validation.New()
	validateCoordinates(errs, req.Latitude, req.Longitude)
	checkDestinationUnique(db, errs, req.Name, req.City, req.Country, uuid.Nil)
	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	destination := models.Destination{
		Name:        req.Name,
		Description: req.Description,
		Country:     req.Country,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
		IsPopular:   req.IsPopular,
		UserID:      &caller.ID,
	}

	if err := db.Create(&destination).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create destination.")
		return
	}

	c.JSON(http.StatusCreated, destination)
}

func ListDestinations(c *gin.Context) {
	db := middleware.GetDB(c)

	page, limit, err := helpers.Pagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters.")
		return
	}

	query := db.Model(&models.Destination{})
	query = helpers.FilterContains(query, "name", c.Query("name"))
	query = helpers.FilterContains(query, "country", c.Query("country"))
	query = helpers.FilterContains(query, "city", c.Query("city"))
	if isPopular := c.Query("is_popular"); isPopular != "" {
		query = query.Where("is_popular = ?", isPopular == "true")
	}

	var totalCount int64
	query.Count(&totalCount)

	var destinations []models.Destination
	offset := (page - 1) * limit
	if err := query.Preload("Owner").Offset(offset).Limit(limit).Order("name").Find(&destinations).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving destinations.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"destinations": destinations,
		"total":        totalCount,
		"page":         page,
		"limit":        limit,
		"total_pages":  (totalCount + int64(limit) - 1) / int64(limit),
	})
}

func loadDestination(c *gin.Context) (*models.Destination, bool) {
	var destination models.Destination
	err := middleware.GetDB(c).Preload("Owner").Where("id = ?", c.Param("id")).First(&destination).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Destination not found.")
		return nil, false
	}
	return &destination, true
}

func GetDestination(c *gin.Context) {
	destination, ok := loadDestination(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, destination)
}

func UpdateDestination(c *gin.Context) {
	destination, ok := loadDestination(c)
	if !ok {
		return
	}

	if !policy.CanAccessDestination(middleware.CurrentUser(c), destination, policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the owner or an admin may update this destination.")
		return
	}

	var req UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	db := middleware.GetDB(c)
	errs := validation.New()
	validateCoordinates(errs, req.Latitude, req.Longitude)

	name, city, country := destination.Name, destination.City, destination.Country
	if req.Name != nil {
		name = *req.Name
	}
	if req.City != nil {
		city = *req.City
	}
	if req.Country != nil {
		country = *req.Country
	}
	if name != destination.Name || city != destination.City || country != destination.Country {
		checkDestinationUnique(db, errs, name, city, country, destination.ID)
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	destination.Name = name
	destination.City = city
	destination.Country = country
	if req.Description != nil {
		destination.Description = *req.Description
	}
	if req.Latitude != nil {
		destination.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		destination.Longitude = req.Longitude
	}
	if req.ImageURL != nil {
		destination.ImageURL = *req.ImageURL
	}
	if req.IsPopular != nil {
		destination.IsPopular = *req.IsPopular
	}

	if err := db.Save(destination).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update destination.")
		return
	}

	c.JSON(http.StatusOK, destination)
}

// DeleteDestination removes the destination along with its itinerary entries;
// activities keep running with a cleared destination reference.
func DeleteDestination(c *gin.Context) {
	destination, ok := loadDestination(c)
	if !ok {
		return
	}

	if !policy.CanAccessDestination(middleware.CurrentUser(c), destination, policy.Delete) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the owner or an admin may delete this destination.")
		return
	}

	db := middleware.GetDB(c)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("destination_id = ?", destination.ID).Delete(&models.TravelPlanDestination{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Activity{}).Where("destination_id = ?", destination.ID).Update("destination_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Destination{}, "id = ?", destination.ID).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete destination.")
		return
	}

	c.Status(http.StatusNoContent)
}

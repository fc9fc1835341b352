package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/policy"
	"github.com/arintala/wanderplan/internal/validation"
)

type CreateActivityRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	TravelPlanID  string   `json:"travel_plan_id" binding:"required"`
	DestinationID string   `json:"destination_id" binding:"required"`
	Date          string   `json:"date" binding:"required"`
	Cost          *float64 `json:"cost" binding:"required"`
	Notes         string   `json:"notes"`
}

type UpdateActivityRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	TravelPlanID  *string  `json:"travel_plan_id"`
	DestinationID *string  `json:"destination_id"`
	Date          *string  `json:"date"`
	Cost          *float64 `json:"cost"`
	Notes         *string  `json:"notes"`
}

func validateCost(errs validation.Errors, cost float64) {
	if cost < 0 {
		errs.Add("cost", "Cost cannot be negative.")
	}
}

// validateActivityDate truncates the activity timestamp to its calendar date
// and requires it to lie inside the plan's range.
func validateActivityDate(errs validation.Errors, date time.Time, plan *models.TravelPlan) {
	day := helpers.DateOf(date)
	if day.Before(plan.StartDate) || day.After(plan.EndDate) {
		errs.Add("date", "Activity date must fall within the travel plan's date range.")
	}
}

func CreateActivity(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	db := middleware.GetDB(c)
	caller := middleware.CurrentUser(c)
	errs := validation.New()

	planID, err := uuid.Parse(req.TravelPlanID)
	if err != nil {
		errs.Add("travel_plan_id", "Invalid travel plan id.")
	}
	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		errs.Add("destination_id", "Invalid destination id.")
	}
	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	var plan models.TravelPlan
	if err := db.Where("id = ?", planID).First(&plan).Error; err != nil {
		errs.Add("travel_plan_id", "Travel plan does not exist.")
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	if !policy.CanAccessPlanChild(caller, plan.UserID, policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may add activities.")
		return
	}

	var destination models.Destination
	if err := db.Where("id = ?", destinationID).First(&destination).Error; err != nil {
		errs.Add("destination_id", "Destination does not exist.")
	}

	date, err := helpers.ParseDateTime(req.Date)
	if err != nil {
		errs.Add("date", "Datetime has wrong format. Use RFC 3339 or YYYY-MM-DD.")
	} else {
		validateActivityDate(errs, date, &plan)
	}
	validateCost(errs, *req.Cost)

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	activity := models.Activity{
		Name:          req.Name,
		Description:   req.Description,
		TravelPlanID:  &planID,
		DestinationID: &destinationID,
		Date:          date,
		Cost:          *req.Cost,
		Notes:         req.Notes,
	}

	if err := db.Create(&activity).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create activity.")
		return
	}

	activity.TravelPlan = &plan
	activity.Destination = &destination
	c.JSON(http.StatusCreated, activity)
}

// ListActivities shows only activities of plans the caller owns; anonymous
// callers get an empty page.
func ListActivities(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	page, limit, err := helpers.Pagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters.")
		return
	}

	if caller == nil {
		c.JSON(http.StatusOK, gin.H{
			"activities":  []models.Activity{},
			"total":       0,
			"page":        page,
			"limit":       limit,
			"total_pages": 0,
		})
		return
	}

	db := middleware.GetDB(c)
	query := db.Model(&models.Activity{}).
		Joins("JOIN travel_plans ON travel_plans.id = activities.travel_plan_id").
		Where("travel_plans.user_id = ?", caller.ID)

	if planID := c.Query("travel_plan"); planID != "" {
		query = query.Where("activities.travel_plan_id = ?", planID)
	}
	if destinationID := c.Query("destination"); destinationID != "" {
		query = query.Where("activities.destination_id = ?", destinationID)
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("activities.name = ?", name)
	}
	for _, filter := range []struct {
		param, column, op string
	}{
		{"date_gte", "activities.date", ">="},
		{"date_lte", "activities.date", "<="},
	} {
		query, err = applyDateTimeFilter(query, c.Query(filter.param), filter.column, filter.op)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid value for "+filter.param+".")
			return
		}
	}
	for _, filter := range []struct {
		param, column, op string
	}{
		{"cost_gte", "activities.cost", ">="},
		{"cost_lte", "activities.cost", "<="},
	} {
		query, err = applyNumberFilter(query, c.Query(filter.param), filter.column, filter.op)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid value for "+filter.param+".")
			return
		}
	}

	var totalCount int64
	query.Count(&totalCount)

	var activities []models.Activity
	offset := (page - 1) * limit
	err = query.Preload("TravelPlan").Preload("Destination").
		Offset(offset).Limit(limit).Order("activities.date").Find(&activities).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving activities.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities":  activities,
		"total":       totalCount,
		"page":        page,
		"limit":       limit,
		"total_pages": (totalCount + int64(limit) - 1) / int64(limit),
	})
}

func loadActivity(c *gin.Context) (*models.Activity, bool) {
	var activity models.Activity
	err := middleware.GetDB(c).Preload("TravelPlan").Preload("Destination").
		Where("id = ?", c.Param("id")).First(&activity).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Activity not found.")
		return nil, false
	}
	return &activity, true
}

func activityPlanOwner(activity *models.Activity) *uuid.UUID {
	if activity.TravelPlan == nil {
		return nil
	}
	return activity.TravelPlan.UserID
}

func GetActivity(c *gin.Context) {
	activity, ok := loadActivity(c)
	if !ok {
		return
	}

	if !policy.CanAccessPlanChild(middleware.CurrentUser(c), activityPlanOwner(activity), policy.Retrieve) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may view this activity.")
		return
	}

	c.JSON(http.StatusOK, activity)
}

func UpdateActivity(c *gin.Context) {
	activity, ok := loadActivity(c)
	if !ok {
		return
	}

	db := middleware.GetDB(c)
	caller := middleware.CurrentUser(c)

	if !policy.CanAccessPlanChild(caller, activityPlanOwner(activity), policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may update this activity.")
		return
	}

	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	errs := validation.New()

	// Moving the activity to another plan requires owning that plan too.
	plan := activity.TravelPlan
	if req.TravelPlanID != nil {
		planID, err := uuid.Parse(*req.TravelPlanID)
		if err != nil {
			errs.Add("travel_plan_id", "Invalid travel plan id.")
		} else {
			var newPlan models.TravelPlan
			if err := db.Where("id = ?", planID).First(&newPlan).Error; err != nil {
				errs.Add("travel_plan_id", "Travel plan does not exist.")
			} else if !policy.CanAccessPlanChild(caller, newPlan.UserID, policy.Update) {
				helpers.RespondWithError(c, http.StatusForbidden, "You do not own the target travel plan.")
				return
			} else {
				plan = &newPlan
				activity.TravelPlanID = &newPlan.ID
			}
		}
	}
	if req.DestinationID != nil {
		destinationID, err := uuid.Parse(*req.DestinationID)
		if err != nil {
			errs.Add("destination_id", "Invalid destination id.")
		} else {
			var destination models.Destination
			if err := db.Where("id = ?", destinationID).First(&destination).Error; err != nil {
				errs.Add("destination_id", "Destination does not exist.")
			} else {
				activity.DestinationID = &destinationID
				activity.Destination = &destination
			}
		}
	}

	date := activity.Date
	if req.Date != nil {
		parsed, err := helpers.ParseDateTime(*req.Date)
		if err != nil {
			errs.Add("date", "Datetime has wrong format. Use RFC 3339 or YYYY-MM-DD.")
		} else {
			date = parsed
		}
	}
	if _, hasDateErr := errs["date"]; !hasDateErr && plan != nil {
		validateActivityDate(errs, date, plan)
	}
	if req.Cost != nil {
		validateCost(errs, *req.Cost)
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	activity.Date = date
	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.Cost != nil {
		activity.Cost = *req.Cost
	}
	if req.Notes != nil {
		activity.Notes = *req.Notes
	}
	activity.TravelPlan = plan

	if err := db.Save(activity).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update activity.")
		return
	}

	c.JSON(http.StatusOK, activity)
}

func DeleteActivity(c *gin.Context) {
	activity, ok := loadActivity(c)
	if !ok {
		return
	}

	if !policy.CanAccessPlanChild(middleware.CurrentUser(c), activityPlanOwner(activity), policy.Delete) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may delete this activity.")
		return
	}

	if err := middleware.GetDB(c).Delete(&models.Activity{}, "id = ?", activity.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete activity.")
		return
	}

	c.Status(http.StatusNoContent)
}

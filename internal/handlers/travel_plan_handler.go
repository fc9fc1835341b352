package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/policy"
	"github.com/arintala/wanderplan/internal/validation"
)

type CreateTravelPlanRequest struct {
	Name        string   `json:"name" binding:"required"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	Description string   `json:"description"`
	Budget      *float64 `json:"budget" binding:"required"`
	IsPublic    *bool    `json:"is_public" binding:"required"`
}

type UpdateTravelPlanRequest struct {
	Name        *string  `json:"name"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Description *string  `json:"description"`
	Budget      *float64 `json:"budget"`
	IsPublic    *bool    `json:"is_public"`
}

func validatePlanDates(errs validation.Errors, start, end time.Time) {
	if start.After(end) {
		errs.AddNonField("Start date cannot be after end date.")
	}
}

func validateBudget(errs validation.Errors, budget float64) {
	if budget <= 0 {
		errs.Add("budget", "Budget must be greater than zero.")
	}
}

// applyDateFilter narrows a query by a YYYY-MM-DD query param; op is a
// comparison operator such as ">=".
func applyDateFilter(query *gorm.DB, raw, column, op string) (*gorm.DB, error) {
	if raw == "" {
		return query, nil
	}
	t, err := helpers.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return query.Where(column+" "+op+" ?", t), nil
}

func applyDateTimeFilter(query *gorm.DB, raw, column, op string) (*gorm.DB, error) {
	if raw == "" {
		return query, nil
	}
	t, err := helpers.ParseDateTime(raw)
	if err != nil {
		return nil, err
	}
	return query.Where(column+" "+op+" ?", t), nil
}

func applyNumberFilter(query *gorm.DB, raw, column, op string) (*gorm.DB, error) {
	if raw == "" {
		return query, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return query.Where(column+" "+op+" ?", n), nil
}

func CreateTravelPlan(c *gin.Context) {
	var req CreateTravelPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	errs := validation.New()

	startDate, err := helpers.ParseDate(req.StartDate)
	if err != nil {
		errs.Add("start_date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	endDate, err := helpers.ParseDate(req.EndDate)
	if err != nil {
		errs.Add("end_date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	if !errs.HasErrors() {
		validatePlanDates(errs, startDate, endDate)
	}
	validateBudget(errs, *req.Budget)

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	caller := middleware.CurrentUser(c)
	plan := models.TravelPlan{
		Name:        req.Name,
		UserID:      &caller.ID,
		StartDate:   startDate,
		EndDate:     endDate,
		Description: req.Description,
		Budget:      *req.Budget,
		IsPublic:    *req.IsPublic,
	}

	if err := middleware.GetDB(c).Create(&plan).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create travel plan.")
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// ListTravelPlans scopes visibility by identity: anonymous callers see public
// plans only, authenticated callers additionally see their own private plans.
func ListTravelPlans(c *gin.Context) {
	db := middleware.GetDB(c)
	caller := middleware.CurrentUser(c)

	page, limit, err := helpers.Pagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters.")
		return
	}

	query := db.Model(&models.TravelPlan{})
	if caller != nil {
		query = query.Where("user_id = ? OR is_public = ?", caller.ID, true)
	} else {
		query = query.Where("is_public = ?", true)
	}

	if owner := c.Query("user"); owner != "" {
		query = query.Where("user_id = ?", owner)
	}
	if isPublic := c.Query("is_public"); isPublic != "" {
		query = query.Where("is_public = ?", isPublic == "true")
	}

	for _, filter := range []struct {
		param, column, op string
	}{
		{"start_date_gte", "start_date", ">="},
		{"start_date_lte", "start_date", "<="},
		{"end_date_gte", "end_date", ">="},
		{"end_date_lte", "end_date", "<="},
	} {
		query, err = applyDateFilter(query, c.Query(filter.param), filter.column, filter.op)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid value for "+filter.param+".")
			return
		}
	}
	for _, filter := range []struct {
		param, column, op string
	}{
		{"budget_gte", "budget", ">="},
		{"budget_lte", "budget", "<="},
	} {
		query, err = applyNumberFilter(query, c.Query(filter.param), filter.column, filter.op)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid value for "+filter.param+".")
			return
		}
	}

	var totalCount int64
	query.Count(&totalCount)

	var plans []models.TravelPlan
	offset := (page - 1) * limit
	err = query.Preload("Owner").
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\"") }).
		Preload("Entries.Destination").
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&plans).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving travel plans.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"travelplans": plans,
		"total":       totalCount,
		"page":        page,
		"limit":       limit,
		"total_pages": (totalCount + int64(limit) - 1) / int64(limit),
	})
}

func loadTravelPlan(c *gin.Context) (*models.TravelPlan, bool) {
	var plan models.TravelPlan
	err := middleware.GetDB(c).Preload("Owner").
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("\"order\"") }).
		Preload("Entries.Destination").
		Where("id = ?", c.Param("id")).First(&plan).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Travel plan not found.")
		return nil, false
	}
	return &plan, true
}

func GetTravelPlan(c *gin.Context) {
	plan, ok := loadTravelPlan(c)
	if !ok {
		return
	}

	if !policy.CanAccessTravelPlan(middleware.CurrentUser(c), plan, policy.Retrieve) {
		helpers.RespondWithError(c, http.StatusForbidden, "You do not have permission to view this private travel plan.")
		return
	}

	c.JSON(http.StatusOK, plan)
}

func UpdateTravelPlan(c *gin.Context) {
	plan, ok := loadTravelPlan(c)
	if !ok {
		return
	}

	if !policy.CanAccessTravelPlan(middleware.CurrentUser(c), plan, policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the owner or an admin may update this travel plan.")
		return
	}

	var req UpdateTravelPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	errs := validation.New()

	startDate, endDate := plan.StartDate, plan.EndDate
	if req.StartDate != nil {
		parsed, err := helpers.ParseDate(*req.StartDate)
		if err != nil {
			errs.Add("start_date", "Date has wrong format. Use YYYY-MM-DD.")
		} else {
			startDate = parsed
		}
	}
	if req.EndDate != nil {
		parsed, err := helpers.ParseDate(*req.EndDate)
		if err != nil {
			errs.Add("end_date", "Date has wrong format. Use YYYY-MM-DD.")
		} else {
			endDate = parsed
		}
	}
	if !errs.HasErrors() {
		validatePlanDates(errs, startDate, endDate)
	}
	if req.Budget != nil {
		validateBudget(errs, *req.Budget)
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	plan.StartDate = startDate
	plan.EndDate = endDate
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Budget != nil {
		plan.Budget = *req.Budget
	}
	if req.IsPublic != nil {
		plan.IsPublic = *req.IsPublic
	}

	if err := middleware.GetDB(c).Save(plan).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update travel plan.")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeleteTravelPlan removes the plan and its itinerary entries; activities
// survive with a cleared plan reference.
func DeleteTravelPlan(c *gin.Context) {
	plan, ok := loadTravelPlan(c)
	if !ok {
		return
	}

	if !policy.CanAccessTravelPlan(middleware.CurrentUser(c), plan, policy.Delete) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the owner or an admin may delete this travel plan.")
		return
	}

	db := middleware.GetDB(c)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("travel_plan_id = ?", plan.ID).Delete(&models.TravelPlanDestination{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Activity{}).Where("travel_plan_id = ?", plan.ID).Update("travel_plan_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TravelPlan{}, "id = ?", plan.ID).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete travel plan.")
		return
	}

	c.Status(http.StatusNoContent)
}

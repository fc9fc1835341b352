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

type CreateItineraryEntryRequest struct {
	TravelPlanID  string `json:"travel_plan_id" binding:"required"`
	DestinationID string `json:"destination_id" binding:"required"`
	Order         int    `json:"order"`
	ArrivalDate   string `json:"arrival_date" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
}

type UpdateItineraryEntryRequest struct {
	Order         *int    `json:"order"`
	ArrivalDate   *string `json:"arrival_date"`
	DepartureDate *string `json:"departure_date"`
}

// validateEntryDates checks the stay interval against itself and against the
// parent plan's range. A breached bound produces an error on that bound's
// field; an interval lying entirely outside the plan adds a non-field error.
func validateEntryDates(errs validation.Errors, arrival, departure, planStart, planEnd time.Time) {
	if arrival.After(departure) {
		errs.AddNonField("Arrival date cannot be after departure date.")
	}

	arrivalOut := arrival.Before(planStart) || arrival.After(planEnd)
	departureOut := departure.Before(planStart) || departure.After(planEnd)

	if arrival.Before(planStart) {
		errs.Add("arrival_date", "Arrival date is before the travel plan's start date.")
	}
	if arrival.After(planEnd) {
		errs.Add("arrival_date", "Arrival date is after the travel plan's end date.")
	}
	if departure.Before(planStart) {
		errs.Add("departure_date", "Departure date is before the travel plan's start date.")
	}
	if departure.After(planEnd) {
		errs.Add("departure_date", "Departure date is after the travel plan's end date.")
	}
	if arrivalOut && departureOut {
		errs.AddNonField("Entry dates fall entirely outside the travel plan's date range.")
	}
}

func CreateItineraryEntry(c *gin.Context) {
	var req CreateItineraryEntryRequest
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
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may add itinerary entries.")
		return
	}

	var destination models.Destination
	if err := db.Where("id = ?", destinationID).First(&destination).Error; err != nil {
		errs.Add("destination_id", "Destination does not exist.")
	}

	arrival, err := helpers.ParseDate(req.ArrivalDate)
	if err != nil {
		errs.Add("arrival_date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	departure, err := helpers.ParseDate(req.DepartureDate)
	if err != nil {
		errs.Add("departure_date", "Date has wrong format. Use YYYY-MM-DD.")
	}
	if !errs.HasErrors() {
		validateEntryDates(errs, arrival, departure, plan.StartDate, plan.EndDate)
	}

	var duplicates int64
	db.Model(&models.TravelPlanDestination{}).
		Where("travel_plan_id = ? AND destination_id = ?", planID, destinationID).
		Count(&duplicates)
	if duplicates > 0 {
		errs.AddNonField("This destination is already part of the travel plan.")
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	entry := models.TravelPlanDestination{
		TravelPlanID:  planID,
		DestinationID: destinationID,
		Order:         req.Order,
		ArrivalDate:   arrival,
		DepartureDate: departure,
	}

	if err := db.Create(&entry).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create itinerary entry.")
		return
	}

	entry.Destination = &destination
	c.JSON(http.StatusCreated, entry)
}

// ListItineraryEntries only ever shows entries of plans the caller owns;
// anonymous callers get an empty page.
func ListItineraryEntries(c *gin.Context) {
	caller := middleware.CurrentUser(c)

	page, limit, err := helpers.Pagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters.")
		return
	}

	if caller == nil {
		c.JSON(http.StatusOK, gin.H{
			"travelplandestinations": []models.TravelPlanDestination{},
			"total":                  0,
			"page":                   page,
			"limit":                  limit,
			"total_pages":            0,
		})
		return
	}

	db := middleware.GetDB(c)
	query := db.Model(&models.TravelPlanDestination{}).
		Joins("JOIN travel_plans ON travel_plans.id = travel_plan_destinations.travel_plan_id").
		Where("travel_plans.user_id = ?", caller.ID)

	if planID := c.Query("travel_plan"); planID != "" {
		query = query.Where("travel_plan_id = ?", planID)
	}
	if destinationID := c.Query("destination"); destinationID != "" {
		query = query.Where("destination_id = ?", destinationID)
	}
	for _, filter := range []struct {
		param, column, op string
	}{
		{"arrival_date_gte", "arrival_date", ">="},
		{"arrival_date_lte", "arrival_date", "<="},
		{"departure_date_gte", "departure_date", ">="},
		{"departure_date_lte", "departure_date", "<="},
	} {
		query, err = applyDateFilter(query, c.Query(filter.param), filter.column, filter.op)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid value for "+filter.param+".")
			return
		}
	}

	var totalCount int64
	query.Count(&totalCount)

	var entries []models.TravelPlanDestination
	offset := (page - 1) * limit
	if err := query.Preload("Destination").Offset(offset).Limit(limit).Order("\"order\"").Find(&entries).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving itinerary entries.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"travelplandestinations": entries,
		"total":                  totalCount,
		"page":                   page,
		"limit":                  limit,
		"total_pages":            (totalCount + int64(limit) - 1) / int64(limit),
	})
}

func loadItineraryEntry(c *gin.Context) (*models.TravelPlanDestination, bool) {
	var entry models.TravelPlanDestination
	err := middleware.GetDB(c).Preload("TravelPlan").Preload("Destination").
		Where("id = ?", c.Param("id")).First(&entry).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Itinerary entry not found.")
		return nil, false
	}
	return &entry, true
}

func itineraryPlanOwner(entry *models.TravelPlanDestination) *uuid.UUID {
	if entry.TravelPlan == nil {
		return nil
	}
	return entry.TravelPlan.UserID
}

func GetItineraryEntry(c *gin.Context) {
	entry, ok := loadItineraryEntry(c)
	if !ok {
		return
	}

	if !policy.CanAccessPlanChild(middleware.CurrentUser(c), itineraryPlanOwner(entry), policy.Retrieve) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may view this itinerary entry.")
		return
	}

	c.JSON(http.StatusOK, entry)
}

func UpdateItineraryEntry(c *gin.Context) {
	entry, ok := loadItineraryEntry(c)
	if !ok {
		return
	}

	if !policy.CanAccessPlanChild(middleware.CurrentUser(c), itineraryPlanOwner(entry), policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may update this itinerary entry.")
		return
	}

	var req UpdateItineraryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	errs := validation.New()

	arrival, departure := entry.ArrivalDate, entry.DepartureDate
	if req.ArrivalDate != nil {
		parsed, err := helpers.ParseDate(*req.ArrivalDate)
		if err != nil {
			errs.Add("arrival_date", "Date has wrong format. Use YYYY-MM-DD.")
		} else {
			arrival = parsed
		}
	}
	if req.DepartureDate != nil {
		parsed, err := helpers.ParseDate(*req.DepartureDate)
		if err != nil {
			errs.Add("departure_date", "Date has wrong format. Use YYYY-MM-DD.")
		} else {
			departure = parsed
		}
	}
	if !errs.HasErrors() && entry.TravelPlan != nil {
		validateEntryDates(errs, arrival, departure, entry.TravelPlan.StartDate, entry.TravelPlan.EndDate)
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	entry.ArrivalDate = arrival
	entry.DepartureDate = departure
	if req.Order != nil {
		entry.Order = *req.Order
	}

	if err := middleware.GetDB(c).Save(entry).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update itinerary entry.")
		return
	}

	c.JSON(http.StatusOK, entry)
}

func DeleteItineraryEntry(c *gin.Context) {
	entry, ok := loadItineraryEntry(c)
	if !ok {
		return
	}

	if !policy.CanAccessPlanChild(middleware.CurrentUser(c), itineraryPlanOwner(entry), policy.Delete) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the plan owner or an admin may delete this itinerary entry.")
		return
	}

	if err := middleware.GetDB(c).Delete(&models.TravelPlanDestination{}, "id = ?", entry.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete itinerary entry.")
		return
	}

	c.Status(http.StatusNoContent)
}

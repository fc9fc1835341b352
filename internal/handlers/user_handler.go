package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/policy"
	"github.com/arintala/wanderplan/internal/validation"
)

type CreateUserRequest struct {
	Username             string  `json:"username" binding:"required"`
	Email                string  `json:"email" binding:"required,email"`
	Password             string  `json:"password" binding:"required,min=6"`
	DateOfBirth          *string `json:"date_of_birth"`
	City                 string  `json:"city"`
	ZipCode              string  `json:"zip_code"`
	PreferredTravelStyle string  `json:"preferred_travel_style"`
}

type UpdateUserRequest struct {
	Email                *string `json:"email" binding:"omitempty,email"`
	Password             *string `json:"password" binding:"omitempty,min=6"`
	DateOfBirth          *string `json:"date_of_birth"`
	City                 *string `json:"city"`
	ZipCode              *string `json:"zip_code"`
	PreferredTravelStyle *string `json:"preferred_travel_style"`
	IsStaff              *bool   `json:"is_staff"`
	IsSuperuser          *bool   `json:"is_superuser"`
}

// parseDateOfBirth validates the date format and the not-in-the-future rule,
// accumulating any violation under the date_of_birth key.
func parseDateOfBirth(errs validation.Errors, raw string) *time.Time {
	dob, err := helpers.ParseDate(raw)
	if err != nil {
		errs.Add("date_of_birth", "Date has wrong format. Use YYYY-MM-DD.")
		return nil
	}
	if dob.After(helpers.DateOf(time.Now())) {
		errs.Add("date_of_birth", "Date of birth cannot be in the future.")
		return nil
	}
	return &dob
}

func validateTravelStyle(errs validation.Errors, style string) {
	if style != "" && !models.IsValidTravelStyle(style) {
		errs.Add("preferred_travel_style", "Not a valid travel style.")
	}
}

// CreateUser is open self-registration.
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	db := middleware.GetDB(c)
	errs := validation.New()

	var dob *time.Time
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob = parseDateOfBirth(errs, *req.DateOfBirth)
	}
	validateTravelStyle(errs, req.PreferredTravelStyle)

	var existing models.User
	if result := db.Where("username = ?", req.Username).First(&existing); result.Error == nil {
		errs.Add("username", "A user with that username already exists.")
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
		return
	}

	user := models.User{
		Username:             req.Username,
		Email:                req.Email,
		Password:             string(hashedPassword),
		DateOfBirth:          dob,
		City:                 req.City,
		ZipCode:              req.ZipCode,
		PreferredTravelStyle: req.PreferredTravelStyle,
	}

	if err := db.Create(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers is restricted to admins.
func ListUsers(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	if !policy.IsAdmin(caller) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only admins may list users.")
		return
	}

	db := middleware.GetDB(c)

	page, limit, err := helpers.Pagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters.")
		return
	}

	query := db.Model(&models.User{})
	query = helpers.FilterContains(query, "username", c.Query("username"))
	query = helpers.FilterContains(query, "email", c.Query("email"))
	query = helpers.FilterContains(query, "city", c.Query("city"))
	query = helpers.FilterContains(query, "preferred_travel_style", c.Query("preferred_travel_style"))

	var totalCount int64
	query.Count(&totalCount)

	var users []models.User
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("username").Find(&users).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving users.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       users,
		"total":       totalCount,
		"page":        page,
		"limit":       limit,
		"total_pages": (totalCount + int64(limit) - 1) / int64(limit),
	})
}

// loadUserParam resolves /users/:id, accepting the literal "me" for the caller.
func loadUserParam(c *gin.Context) (*models.User, bool) {
	caller := middleware.CurrentUser(c)
	raw := c.Param("id")

	if raw == "me" {
		return caller, true
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return nil, false
	}

	var user models.User
	if err := middleware.GetDB(c).Where("id = ?", id).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return nil, false
	}
	return &user, true
}

func GetUser(c *gin.Context) {
	user, ok := loadUserParam(c)
	if !ok {
		return
	}

	if !policy.CanAccessUser(middleware.CurrentUser(c), user, policy.Retrieve) {
		helpers.RespondWithError(c, http.StatusForbidden, "You may only view your own profile.")
		return
	}

	c.JSON(http.StatusOK, user)
}

func UpdateUser(c *gin.Context) {
	user, ok := loadUserParam(c)
	if !ok {
		return
	}

	caller := middleware.CurrentUser(c)
	if !policy.CanAccessUser(caller, user, policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "You may only update your own profile.")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	// Non-admins cannot grant themselves privileges; the fields are silently
	// stripped from the patch rather than rejected.
	if !policy.IsAdmin(caller) {
		req.IsStaff = nil
		req.IsSuperuser = nil
	}

	errs := validation.New()

	var dob *time.Time
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob = parseDateOfBirth(errs, *req.DateOfBirth)
	}
	if req.PreferredTravelStyle != nil {
		validateTravelStyle(errs, *req.PreferredTravelStyle)
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to hash the password.")
			return
		}
		user.Password = string(hashed)
	}
	if dob != nil {
		user.DateOfBirth = dob
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.ZipCode != nil {
		user.ZipCode = *req.ZipCode
	}
	if req.PreferredTravelStyle != nil {
		user.PreferredTravelStyle = *req.PreferredTravelStyle
	}
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}

	db := middleware.GetDB(c)
	if err := db.Save(user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update user.")
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes the account. Owned destinations and travel plans lose
// their owner reference; the user's comments and credential go with them.
func DeleteUser(c *gin.Context) {
	user, ok := loadUserParam(c)
	if !ok {
		return
	}

	if !policy.CanAccessUser(middleware.CurrentUser(c), user, policy.Delete) {
		helpers.RespondWithError(c, http.StatusForbidden, "You may only delete your own profile.")
		return
	}

	db := middleware.GetDB(c)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Destination{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TravelPlan{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user.")
		return
	}

	c.Status(http.StatusNoContent)
}

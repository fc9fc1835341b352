package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/policy"
	"github.com/arintala/wanderplan/internal/validation"
)

type CreateCommentRequest struct {
	Text       string `json:"text"`
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required"`
}

type UpdateCommentRequest struct {
	Text       *string `json:"text"`
	TargetType *string `json:"target_type"`
	TargetID   *string `json:"target_id"`
}

func validateCommentText(errs validation.Errors, text string) {
	if strings.TrimSpace(text) == "" {
		errs.Add("text", "This field may not be blank.")
	}
	if utf8.RuneCountInString(text) > models.CommentMaxLength {
		errs.Add("text", fmt.Sprintf("Ensure this field has no more than %d characters.", models.CommentMaxLength))
	}
}

func CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	db := middleware.GetDB(c)
	caller := middleware.CurrentUser(c)
	errs := validation.New()

	validateCommentText(errs, req.Text)

	if req.TargetType != models.TargetDestination && req.TargetType != models.TargetTravelPlan {
		errs.Add("target_type", "Target type must be one of: destination, travelplan.")
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		errs.Add("target_id", "Invalid target id.")
	} else {
		exists, rerr := models.ResolveTarget(db, req.TargetType, targetID)
		if rerr != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error resolving comment target.")
			return
		}
		if !exists {
			errs.Add("target_id", "Referenced object does not exist.")
		}
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	comment := models.Comment{
		UserID:     caller.ID,
		Text:       req.Text,
		TargetType: req.TargetType,
		TargetID:   targetID,
	}

	if err := db.Create(&comment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create comment.")
		return
	}

	comment.Author = caller
	c.JSON(http.StatusCreated, comment)
}

func ListComments(c *gin.Context) {
	db := middleware.GetDB(c)

	page, limit, err := helpers.Pagination(c)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters.")
		return
	}

	query := db.Model(&models.Comment{})
	if userID := c.Query("user"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	query = helpers.FilterContains(query, "text", c.Query("text"))
	if targetType := c.Query("target_type"); targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	if targetID := c.Query("target_id"); targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}
	for _, filter := range []struct {
		param, column, op string
	}{
		{"created_at_gte", "created_at", ">="},
		{"created_at_lte", "created_at", "<="},
	} {
		query, err = applyDateTimeFilter(query, c.Query(filter.param), filter.column, filter.op)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid value for "+filter.param+".")
			return
		}
	}

	var totalCount int64
	query.Count(&totalCount)

	var comments []models.Comment
	offset := (page - 1) * limit
	if err := query.Preload("Author").Offset(offset).Limit(limit).Order("created_at DESC").Find(&comments).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving comments.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":    comments,
		"total":       totalCount,
		"page":        page,
		"limit":       limit,
		"total_pages": (totalCount + int64(limit) - 1) / int64(limit),
	})
}

func loadComment(c *gin.Context) (*models.Comment, bool) {
	var comment models.Comment
	err := middleware.GetDB(c).Preload("Author").Where("id = ?", c.Param("id")).First(&comment).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Comment not found.")
		return nil, false
	}
	return &comment, true
}

func GetComment(c *gin.Context) {
	comment, ok := loadComment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, comment)
}

// UpdateComment allows editing the text only; the target pair is immutable
// and any differing value is rejected with a field error.
func UpdateComment(c *gin.Context) {
	comment, ok := loadComment(c)
	if !ok {
		return
	}

	if !policy.CanAccessComment(middleware.CurrentUser(c), comment, policy.Update) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the author or an admin may update this comment.")
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	errs := validation.New()

	if req.TargetType != nil && *req.TargetType != comment.TargetType {
		errs.Add("target_type", "Target type cannot be changed after creation.")
	}
	if req.TargetID != nil && *req.TargetID != comment.TargetID.String() {
		errs.Add("target_id", "Target id cannot be changed after creation.")
	}
	if req.Text != nil {
		validateCommentText(errs, *req.Text)
	}

	if errs.HasErrors() {
		helpers.RespondWithValidationErrors(c, errs)
		return
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}

	if err := middleware.GetDB(c).Save(comment).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update comment.")
		return
	}

	c.JSON(http.StatusOK, comment)
}

func DeleteComment(c *gin.Context) {
	comment, ok := loadComment(c)
	if !ok {
		return
	}

	if !policy.CanAccessComment(middleware.CurrentUser(c), comment, policy.Delete) {
		helpers.RespondWithError(c, http.StatusForbidden, "Only the author or an admin may delete this comment.")
		return
	}

	if err := middleware.GetDB(c).Delete(&models.Comment{}, "id = ?", comment.ID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete comment.")
		return
	}

	c.Status(http.StatusNoContent)
}

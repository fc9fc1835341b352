package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arintala/wanderplan/internal/helpers"
	"github.com/arintala/wanderplan/internal/middleware"
	"github.com/arintala/wanderplan/internal/models"
	"github.com/arintala/wanderplan/internal/validation"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates username/password and issues (or reuses) the caller's
// bearer credential.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithValidationErrors(c, validation.FromBinding(err))
		return
	}

	db := middleware.GetDB(c)

	var user models.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		respondBadCredentials(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		respondBadCredentials(c)
		return
	}

	var stored models.AuthToken
	err := db.Where("user_id = ?", user.ID).First(&stored).Error
	switch {
	case err == nil:
		// Reuse while the signed credential is still good; reissue otherwise.
		if _, verr := middleware.ValidateToken(stored.Key); verr == nil {
			break
		}
		db.Delete(&stored)
		fallthrough
	case err == gorm.ErrRecordNotFound:
		key, terr := middleware.GenerateToken(user.ID)
		if terr != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token.")
			return
		}
		stored = models.AuthToken{Key: key, UserID: user.ID}
		if cerr := db.Create(&stored).Error; cerr != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to store token.")
			return
		}
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error looking up token.")
		return
	}

	logrus.WithField("user_id", user.ID).Info("user logged in")

	c.JSON(http.StatusOK, gin.H{
		"token":    stored.Key,
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

func respondBadCredentials(c *gin.Context) {
	errs := validation.New()
	errs.AddNonField("Unable to log in with provided credentials.")
	helpers.RespondWithValidationErrors(c, errs)
}

// Logout revokes the caller's bearer credential. Deleting an already-absent
// credential is a no-op, so repeated logouts stay 204.
func Logout(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	db := middleware.GetDB(c)

	if err := db.Where("user_id = ?", caller.ID).Delete(&models.AuthToken{}).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to revoke token.")
		return
	}

	logrus.WithField("user_id", caller.ID).Info("user logged out")

	c.Status(http.StatusNoContent)
}

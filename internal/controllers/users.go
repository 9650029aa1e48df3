package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"meetbase/internal/apperr"
	"meetbase/internal/auth"
	"meetbase/internal/middleware"
	"meetbase/internal/models"
	"meetbase/internal/policy"
	"meetbase/internal/storage"
)

type UsersController struct {
	db    *gorm.DB
	store *storage.LocalStore
}

func NewUsersController(db *gorm.DB, store *storage.LocalStore) *UsersController {
	return &UsersController{db: db, store: store}
}

// List returns every user. ADMIN only.
func (u *UsersController) List(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	if !policy.Can(actor, policy.ListUsers, nil) {
		fail(c, apperr.Forbidden("admin access required"))
		return
	}
	var users []models.User
	if err := u.db.Order("id").Find(&users).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type updateUserPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// Update applies a partial update to a user. Self or ADMIN.
func (u *UsersController) Update(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, apperr.Validation("invalid user id"))
		return
	}

	var user models.User
	if err := u.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}

	if !policy.Can(actor, policy.UpdateUser, policy.UserRes{ID: user.ID}) {
		fail(c, apperr.Forbidden("not allowed to modify this user"))
		return
	}

	var p updateUserPayload
	if err := c.ShouldBind(&p); err != nil {
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	if name := strings.TrimSpace(p.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(p.Email)); email != "" && email != user.Email {
		var other models.User
		err := u.db.Where("email = ?", email).First(&other).Error
		if err == nil {
			fail(c, apperr.Conflict("email already exists"))
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.Internal(err))
			return
		}
		user.Email = email
	}
	if pw := strings.TrimSpace(p.Password); pw != "" {
		hash, err := auth.HashPassword(pw)
		if err != nil {
			fail(c, apperr.Internal(err))
			return
		}
		user.Password = hash
	}
	if role := strings.TrimSpace(p.Role); role != "" {
		user.Role = role
	}
	if fh, err := c.FormFile("profile_image"); err == nil && u.store != nil {
		url, err := u.store.Save(fh)
		if err != nil {
			fail(c, apperr.Internal(err))
			return
		}
		user.ProfileImageURL = &url
	}

	if err := u.db.Save(&user).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Delete removes a user. Self or ADMIN. Participant rows referencing
// the user are left in place.
func (u *UsersController) Delete(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		fail(c, apperr.Unauthorized("authorization required"))
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, apperr.Validation("invalid user id"))
		return
	}

	var user models.User
	if err := u.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperr.NotFound("User not found"))
			return
		}
		fail(c, apperr.Internal(err))
		return
	}

	if !policy.Can(actor, policy.DeleteUser, policy.UserRes{ID: user.ID}) {
		fail(c, apperr.Forbidden("not allowed to delete this user"))
		return
	}

	if err := u.db.Delete(&user).Error; err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

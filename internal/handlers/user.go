package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"sparkmatch/internal/config"
	"sparkmatch/internal/middleware"
	"sparkmatch/internal/models"
	"sparkmatch/internal/redis"
	"sparkmatch/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	cfg       *config.Config
	discovery *services.DiscoveryService
	storage   *services.StorageService
}

type UpdateProfileRequest struct {
	FirstName       string  `json:"first_name,omitempty"`
	LastName        string  `json:"last_name,omitempty"`
	Age             *int    `json:"age,omitempty" binding:"omitempty,min=18,max=100"`
	City            string  `json:"city,omitempty"`
	Hobbies         *string `json:"hobbies,omitempty"`
	Status          string  `json:"status,omitempty" binding:"omitempty,oneof=looking relationship married complicated"`
	PrivacySettings string  `json:"privacy_settings,omitempty" binding:"omitempty,oneof=public private friends_only"`
	Bio             *string `json:"bio,omitempty"`
	Height          *int    `json:"height,omitempty"`
	Education       *string `json:"education,omitempty"`
	Profession      *string `json:"profession,omitempty"`
	Smoking         *bool   `json:"smoking,omitempty"`
	Drinking        *bool   `json:"drinking,omitempty"`
}

func NewUserHandler(db *gorm.DB, redis *redis.Client, cfg *config.Config, discovery *services.DiscoveryService, storage *services.StorageService) *UserHandler {
	return &UserHandler{
		db:        db,
		redis:     redis,
		cfg:       cfg,
		discovery: discovery,
		storage:   storage,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var user models.User
	if err := h.db.Preload("Profile").Preload("Photos").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Preload("Profile").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Age != nil {
		user.Age = *req.Age
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.Hobbies != nil {
		user.Hobbies = *req.Hobbies
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	if req.PrivacySettings != "" {
		user.PrivacySettings = req.PrivacySettings
	}

	profile := user.Profile
	if profile == nil {
		profile = &models.UserProfile{UserID: user.ID}
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Height != nil {
		profile.Height = req.Height
	}
	if req.Education != nil {
		profile.Education = *req.Education
	}
	if req.Profession != nil {
		profile.Profession = *req.Profession
	}
	if req.Smoking != nil {
		profile.Smoking = *req.Smoking
	}
	if req.Drinking != nil {
		profile.Drinking = *req.Drinking
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Save(profile).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	h.db.Preload("Profile").Preload("Photos").First(&user, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}

// ListUsers returns all users except the caller, narrowed by the same filter
// set discovery uses. No view history is recorded.
func (h *UserHandler) ListUsers(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	filters, err := parseCandidateFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	users, err := h.discovery.ListUsers(c.Request.Context(), userID, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// RandomUser picks one not-yet-seen candidate for the caller and records the
// view. Exhausting all eligible candidates yields a 404.
func (h *UserHandler) RandomUser(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	filters, err := parseCandidateFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.discovery.SelectRandomCandidate(c.Request.Context(), userID, filters)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoCandidates):
			c.JSON(http.StatusNotFound, gin.H{"error": "No more candidates"})
		case errors.Is(err, services.ErrAlreadyViewed):
			c.JSON(http.StatusConflict, gin.H{"error": "Candidate already viewed, retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select candidate"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UploadPhoto(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo provided"})
		return
	}
	defer file.Close()

	if err := h.validateImageFile(header); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.storage.UploadPhoto(c.Request.Context(), userID, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		logrus.WithError(err).Error("photo upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	var photoCount int64
	h.db.Model(&models.UserPhoto{}).Where("user_id = ?", userID).Count(&photoCount)

	photo := models.UserPhoto{
		UserID: userID,
		URL:    url,
		IsMain: photoCount == 0, // first photo becomes the main one
	}

	if err := h.db.Create(&photo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo record"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Photo uploaded successfully", "photo": photo})
}

func (h *UserHandler) ListPhotos(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var photos []models.UserPhoto
	if err := h.db.Where("user_id = ?", userID).Order("uploaded_at").Find(&photos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch photos"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// SetMainPhoto marks one photo as main and clears the flag on the rest.
func (h *UserHandler) SetMainPhoto(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	photoID := c.Param("id")

	var photo models.UserPhoto
	if err := h.db.Where("id = ? AND user_id = ?", photoID, userID).First(&photo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserPhoto{}).
			Where("user_id = ? AND is_main = ?", userID, true).
			Update("is_main", false).Error; err != nil {
			return err
		}
		return tx.Model(&photo).Update("is_main", true).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set main photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Main photo set"})
}

func parseCandidateFilters(c *gin.Context) (services.CandidateFilters, error) {
	filters := services.CandidateFilters{
		Gender: c.Query("gender"),
		City:   c.Query("city"),
		Status: c.Query("status"),
	}

	if v := c.Query("min_age"); v != "" {
		minAge, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("invalid min_age")
		}
		filters.MinAge = &minAge
	}
	if v := c.Query("max_age"); v != "" {
		maxAge, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("invalid max_age")
		}
		filters.MaxAge = &maxAge
	}

	return filters, nil
}

func (h *UserHandler) validateImageFile(header *multipart.FileHeader) error {
	if header.Size > h.cfg.MaxFileSize {
		return fmt.Errorf("file too large, maximum size is %d bytes", h.cfg.MaxFileSize)
	}

	contentType := header.Header.Get("Content-Type")
	for _, allowedType := range h.cfg.AllowedImageTypes {
		if contentType == allowedType {
			return nil
		}
	}

	return fmt.Errorf("invalid file type, allowed types are: %s", strings.Join(h.cfg.AllowedImageTypes, ", "))
}

package services

import (
	"context"
	"errors"
	"math/rand"

	"sparkmatch/internal/models"

	"gorm.io/gorm"
)

// CandidateFilters narrows discovery. Zero values mean "not applied".
type CandidateFilters struct {
	Gender string
	MinAge *int
	MaxAge *int
	City   string
	Status string
}

// DiscoveryService picks random not-yet-seen candidates for a viewer and
// records the view as part of the same transaction.
type DiscoveryService struct {
	db *gorm.DB
}

func NewDiscoveryService(db *gorm.DB) *DiscoveryService {
	return &DiscoveryService{db: db}
}

// SelectRandomCandidate returns one eligible user chosen uniformly at random
// and appends a ViewHistory row so the same candidate is never shown to the
// viewer again. Selection happens in-process over the eligible ID set rather
// than via store-level shuffling.
//
// Concurrent selections by the same viewer may race onto the same candidate;
// the ViewHistory unique index collapses that into ErrAlreadyViewed, which
// callers can treat as retryable.
func (s *DiscoveryService) SelectRandomCandidate(ctx context.Context, viewerID uint, filters CandidateFilters) (*models.User, error) {
	var candidate models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.User{}).
			Where("id != ?", viewerID).
			Where("id NOT IN (SELECT viewed_user_id FROM view_histories WHERE viewer_id = ?)", viewerID)

		if filters.Gender != "" {
			query = query.Where("gender = ?", filters.Gender)
		}
		if filters.MinAge != nil {
			query = query.Where("age >= ?", *filters.MinAge)
		}
		if filters.MaxAge != nil {
			query = query.Where("age <= ?", *filters.MaxAge)
		}
		if filters.City != "" {
			// Case-insensitive substring match, portable across drivers.
			query = query.Where("LOWER(city) LIKE LOWER(?)", "%"+filters.City+"%")
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}

		var eligibleIDs []uint
		if err := query.Pluck("id", &eligibleIDs).Error; err != nil {
			return err
		}
		if len(eligibleIDs) == 0 {
			return ErrNoCandidates
		}

		selectedID := eligibleIDs[rand.Intn(len(eligibleIDs))]

		if err := tx.Preload("Profile").Preload("Photos").First(&candidate, selectedID).Error; err != nil {
			return err
		}

		view := models.ViewHistory{ViewerID: viewerID, ViewedUserID: selectedID}
		if err := tx.Create(&view).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyViewed
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &candidate, nil
}

// ListUsers is the non-consuming variant of discovery: the same filter set
// over all users except the caller, without touching view history.
func (s *DiscoveryService) ListUsers(ctx context.Context, viewerID uint, filters CandidateFilters) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("id != ?", viewerID)

	if filters.Gender != "" {
		query = query.Where("gender = ?", filters.Gender)
	}
	if filters.MinAge != nil {
		query = query.Where("age >= ?", *filters.MinAge)
	}
	if filters.MaxAge != nil {
		query = query.Where("age <= ?", *filters.MaxAge)
	}
	if filters.City != "" {
		query = query.Where("LOWER(city) LIKE LOWER(?)", "%"+filters.City+"%")
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var users []models.User
	err := query.Preload("Profile").Preload("Photos").Find(&users).Error
	return users, err
}

package services

import (
	"context"
	"errors"

	"sparkmatch/internal/models"

	"gorm.io/gorm"
)

// InteractionService owns the interaction ledger and the match engine. All
// mutations run as single transactions; cross-request ordering is left to the
// database's unique indexes.
type InteractionService struct {
	db *gorm.DB
}

func NewInteractionService(db *gorm.DB) *InteractionService {
	return &InteractionService{db: db}
}

// RecordInteraction appends a directed like/dislike/super_like edge. On a
// "like" it increments the target's likes_count and runs the mutual-like
// check, all inside one transaction. The returned match is non-nil when the
// like completed a mutual pair; it may be a pre-existing row.
//
// A second interaction for the same ordered pair is rejected as a duplicate,
// never overwritten.
func (s *InteractionService) RecordInteraction(ctx context.Context, fromUserID, toUserID uint, action string) (*models.Interaction, *models.Match, error) {
	if fromUserID == toUserID {
		return nil, nil, ErrSelfInteraction
	}
	if !models.ValidAction(action) {
		return nil, nil, ErrInvalidAction
	}

	var target models.User
	if err := s.db.WithContext(ctx).First(&target, toUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	interaction := &models.Interaction{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Action:     action,
	}

	var match *models.Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(interaction).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateInteraction
			}
			return err
		}

		if action != models.ActionLike {
			return nil
		}

		// Counter is derived state; it only ever moves inside the same
		// transaction as the interaction write.
		if err := tx.Model(&models.User{}).Where("id = ?", toUserID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
			return err
		}

		m, err := s.checkAndCreateMatch(tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return interaction, match, nil
}

// checkAndCreateMatch looks for a reverse-direction like and, if present,
// gets or creates the match on the canonical (lower ID, higher ID) pair.
// Two racing mutual likes target the same row, so whichever transaction
// commits first creates it and the other observes the existing one.
func (s *InteractionService) checkAndCreateMatch(tx *gorm.DB, userA, userB uint) (*models.Match, error) {
	var reverse int64
	if err := tx.Model(&models.Interaction{}).
		Where("from_user_id = ? AND to_user_id = ? AND action = ?", userB, userA, models.ActionLike).
		Count(&reverse).Error; err != nil {
		return nil, err
	}
	if reverse == 0 {
		return nil, nil
	}

	user1, user2 := models.CanonicalPair(userA, userB)
	match := &models.Match{User1ID: user1, User2ID: user2}
	if err := tx.Where("user1_id = ? AND user2_id = ?", user1, user2).
		Attrs(models.Match{IsActive: true}).
		FirstOrCreate(match).Error; err != nil {
		return nil, err
	}
	return match, nil
}

// MatchesFor lists active matches containing the user, newest first.
func (s *InteractionService) MatchesFor(ctx context.Context, userID uint) ([]models.Match, error) {
	var matches []models.Match
	err := s.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
		Preload("User1.Profile").Preload("User1.Photos").
		Preload("User2.Profile").Preload("User2.Photos").
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

// ActiveMatchBetween returns the active match joining two users, looked up on
// the canonical pair so caller order never matters.
func (s *InteractionService) ActiveMatchBetween(ctx context.Context, userA, userB uint) (*models.Match, error) {
	user1, user2 := models.CanonicalPair(userA, userB)
	var match models.Match
	err := s.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ? AND is_active = ?", user1, user2, true).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveMatch
		}
		return nil, err
	}
	return &match, nil
}

// Unmatch soft-deactivates a match the caller participates in. History is
// kept; the row is never deleted.
func (s *InteractionService) Unmatch(ctx context.Context, userID, matchID uint) error {
	var match models.Match
	err := s.db.WithContext(ctx).
		Where("id = ? AND (user1_id = ? OR user2_id = ?) AND is_active = ?", matchID, userID, userID, true).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	return s.db.WithContext(ctx).Model(&match).Update("is_active", false).Error
}

// LikedUsers returns the users the caller has liked.
func (s *InteractionService) LikedUsers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.interactionTargets(ctx, userID, models.ActionLike)
}

// DislikedUsers returns the users the caller has disliked.
func (s *InteractionService) DislikedUsers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.interactionTargets(ctx, userID, models.ActionDislike)
}

func (s *InteractionService) interactionTargets(ctx context.Context, userID uint, action string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (SELECT to_user_id FROM interactions WHERE from_user_id = ? AND action = ?)", userID, action).
		Preload("Profile").Preload("Photos").
		Find(&users).Error
	return users, err
}

// ReceivedLikes returns the like interactions pointing at the caller,
// with sender info preloaded.
func (s *InteractionService) ReceivedLikes(ctx context.Context, userID uint) ([]models.Interaction, error) {
	var interactions []models.Interaction
	err := s.db.WithContext(ctx).
		Where("to_user_id = ? AND action = ?", userID, models.ActionLike).
		Preload("FromUser.Profile").Preload("FromUser.Photos").
		Order("created_at DESC").
		Find(&interactions).Error
	return interactions, err
}

// ViewHistoryFor lists the caller's view history, newest first.
func (s *InteractionService) ViewHistoryFor(ctx context.Context, userID uint) ([]models.ViewHistory, error) {
	var history []models.ViewHistory
	err := s.db.WithContext(ctx).
		Where("viewer_id = ?", userID).
		Preload("ViewedUser.Profile").Preload("ViewedUser.Photos").
		Order("viewed_at DESC").
		Find(&history).Error
	return history, err
}

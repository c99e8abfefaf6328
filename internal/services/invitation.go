package services

import (
	"context"
	"errors"
	"time"

	"sparkmatch/internal/models"

	"gorm.io/gorm"
)

// InvitationService gates date invitations and contact exchange on match
// state: invitations require an active match between the parties, contact
// exchange requires the initiator to be a match participant.
type InvitationService struct {
	db      *gorm.DB
	matches *InteractionService
}

func NewInvitationService(db *gorm.DB, matches *InteractionService) *InvitationService {
	return &InvitationService{db: db, matches: matches}
}

func (s *InvitationService) CreateInvitation(ctx context.Context, fromUserID, toUserID uint, message string, proposedDate time.Time) (*models.DateInvitation, error) {
	if _, err := s.matches.ActiveMatchBetween(ctx, fromUserID, toUserID); err != nil {
		return nil, err
	}

	invitation := &models.DateInvitation{
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		Message:      message,
		ProposedDate: proposedDate,
		Status:       models.InvitationPending,
	}
	if err := s.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return nil, err
	}
	return invitation, nil
}

// ListInvitations returns invitations the user sent or received.
func (s *InvitationService) ListInvitations(ctx context.Context, userID uint) ([]models.DateInvitation, error) {
	var invitations []models.DateInvitation
	err := s.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Preload("FromUser").Preload("ToUser").
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

// UpdateInvitationStatus is a plain status field update by either party.
// No transition matrix is enforced beyond the status value set itself.
func (s *InvitationService) UpdateInvitationStatus(ctx context.Context, userID, invitationID uint, status string) (*models.DateInvitation, error) {
	if !models.ValidInvitationStatus(status) {
		return nil, ErrInvalidStatus
	}

	var invitation models.DateInvitation
	err := s.db.WithContext(ctx).
		Where("id = ? AND (from_user_id = ? OR to_user_id = ?)", invitationID, userID, userID).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&invitation).Update("status", status).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (s *InvitationService) CreateContactExchange(ctx context.Context, userID, matchID uint, contactInfo string) (*models.ContactExchange, error) {
	var match models.Match
	if err := s.db.WithContext(ctx).First(&match, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if !match.Involves(userID) {
		return nil, ErrNotParticipant
	}

	exchange := &models.ContactExchange{
		MatchID:       matchID,
		InitiatedByID: userID,
		ContactInfo:   contactInfo,
	}
	if err := s.db.WithContext(ctx).Create(exchange).Error; err != nil {
		return nil, err
	}
	return exchange, nil
}

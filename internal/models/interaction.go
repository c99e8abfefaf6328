package models

import "time"

// Interaction actions.
const (
	ActionLike      = "like"
	ActionDislike   = "dislike"
	ActionSuperLike = "super_like"
)

// Date invitation statuses.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationRejected  = "rejected"
	InvitationCancelled = "cancelled"
)

func ValidAction(action string) bool {
	return action == ActionLike || action == ActionDislike || action == ActionSuperLike
}

func ValidInvitationStatus(status string) bool {
	switch status {
	case InvitationPending, InvitationAccepted, InvitationRejected, InvitationCancelled:
		return true
	}
	return false
}

// Interaction is a directed like/dislike/super_like edge. The composite unique
// index guarantees at most one recorded action per ordered (from, to) pair.
type Interaction struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID uint      `json:"from_user" gorm:"uniqueIndex:idx_interactions_pair;index:idx_interactions_from,priority:1;not null"`
	ToUserID   uint      `json:"to_user" gorm:"uniqueIndex:idx_interactions_pair;index:idx_interactions_to,priority:1;not null"`
	Action     string    `json:"action" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index:idx_interactions_from,priority:2;index:idx_interactions_to,priority:2"`
	FromUser   User      `json:"from_user_info,omitempty" gorm:"foreignKey:FromUserID"`
	ToUser     User      `json:"to_user_info,omitempty" gorm:"foreignKey:ToUserID"`
}

// ViewHistory records that a viewer has been shown a candidate. Discovery
// excludes every user already present here for the viewer.
type ViewHistory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ViewerID     uint      `json:"viewer" gorm:"uniqueIndex:idx_view_history_pair;index;not null"`
	ViewedUserID uint      `json:"viewed_user" gorm:"uniqueIndex:idx_view_history_pair;not null"`
	ViewedAt     time.Time `json:"viewed_at" gorm:"autoCreateTime"`
	ViewedUser   User      `json:"viewed_user_info,omitempty" gorm:"foreignKey:ViewedUserID"`
}

// Match is an undirected relationship stored in canonical order:
// User1ID is always the smaller of the two IDs.
type Match struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	User1ID   uint      `json:"user1" gorm:"uniqueIndex:idx_matches_pair;not null"`
	User2ID   uint      `json:"user2" gorm:"uniqueIndex:idx_matches_pair;not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	User1     User      `json:"user1_info,omitempty" gorm:"foreignKey:User1ID"`
	User2     User      `json:"user2_info,omitempty" gorm:"foreignKey:User2ID"`
}

// CanonicalPair orders two user IDs into their stored match slots so an
// unordered pair always maps to the same row.
func CanonicalPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Involves reports whether the given user is one of the match participants.
func (m *Match) Involves(userID uint) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Other returns the participant that is not the given user.
func (m *Match) Other(userID uint) User {
	if m.User1ID == userID {
		return m.User2
	}
	return m.User1
}

type DateInvitation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FromUserID   uint      `json:"from_user" gorm:"index;not null"`
	ToUserID     uint      `json:"to_user" gorm:"index;not null"`
	Message      string    `json:"message" gorm:"not null"`
	ProposedDate time.Time `json:"proposed_date" gorm:"not null"`
	Status       string    `json:"status" gorm:"default:pending"` // pending, accepted, rejected, cancelled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	FromUser     User      `json:"from_user_info,omitempty" gorm:"foreignKey:FromUserID"`
	ToUser       User      `json:"to_user_info,omitempty" gorm:"foreignKey:ToUserID"`
}

type ContactExchange struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MatchID       uint      `json:"match" gorm:"index;not null"`
	InitiatedByID uint      `json:"initiated_by" gorm:"not null"`
	ContactInfo   string    `json:"contact_info" gorm:"not null"`
	ExchangedAt   time.Time `json:"exchanged_at" gorm:"autoCreateTime"`
	Match         Match     `json:"-" gorm:"foreignKey:MatchID"`
	InitiatedBy   User      `json:"initiated_by_info,omitempty" gorm:"foreignKey:InitiatedByID"`
}

package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SessionActive       string = "ACTIVE"
	SessionLimitReached string = "LIMIT_REACHED"
	SessionExpired      string = "EXPIRED"
	SessionConverted    string = "CONVERTED"
)

const (
	PartyGuest     string = "GUEST"
	PartyRecruiter string = "RECRUITER"
)

// GuestChatSession is keyed by the opaque invitation token itself; there is no
// secondary enumerable id on purpose.
type GuestChatSession struct {
	ID string `gorm:"primaryKey;size:64"`

	JobID uuid.UUID `gorm:"type:uuid;not null"`
	Job   *Job      `gorm:"foreignKey:JobID"`

	RecruiterID uuid.UUID  `gorm:"type:uuid;not null"`
	Recruiter   *Recruiter `gorm:"foreignKey:RecruiterID"`

	GuestName  sql.NullString `gorm:"size:120"`
	GuestEmail sql.NullString `gorm:"size:255"`

	MaxMessages  int `gorm:"not null"`
	MessageCount int `gorm:"not null;default:0"`

	ExpiresAt time.Time `gorm:"not null"`
	Status    string    `gorm:"size:20;not null"`

	ConvertedUserID uuid.NullUUID `gorm:"type:uuid"`

	CreatedAt time.Time

	Messages []GuestMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// GuestMessage rows are immutable once written. Seq is the insertion sequence
// used to break ties between messages created in the same instant.
type GuestMessage struct {
	Seq uint64    `gorm:"primaryKey;autoIncrement"`
	ID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	SessionID string `gorm:"size:64;index;not null"`

	SenderParty string `gorm:"size:10;not null"`
	SenderName  string `gorm:"size:120"`

	Content string `gorm:"size:2000;not null"`

	IsRead bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"index"`
}

// Job is a read model of the external job catalog; rows are seeded by the host
// platform and only looked up here.
type Job struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title    string    `gorm:"size:200;not null"`
	Company  string    `gorm:"size:200"`
	Location string    `gorm:"size:200"`

	RecruiterID uuid.UUID `gorm:"type:uuid"`
}

// Recruiter is a read model of the external identity system.
type Recruiter struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name    string    `gorm:"size:120;not null"`
	Email   string    `gorm:"size:255"`
	Company string    `gorm:"size:200"`
}

// InvitationNotification is the outbox record of a fire-and-forget invitation
// email. Delivery failures never affect the session row.
type InvitationNotification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID string    `gorm:"size:64;index;not null"`
	Recipient string    `gorm:"size:255"`
	Payload   datatypes.JSON
	CreatedAt time.Time
}

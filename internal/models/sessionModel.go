package models

import "time"

// MarketSession is a bounded trading window orders are attributed to.
// SessionDay carries the calendar day (YYYY-MM-DD) and, together with Mode,
// forms the unique index that makes find-or-create of "today's" PUBLIC
// session converge under concurrent first-orders-of-the-day.
type MarketSession struct {
	ID          uint      `gorm:"primaryKey"`
	SessionDate time.Time `gorm:"index;not null"`
	SessionDay  string    `gorm:"uniqueIndex:idx_session_day_mode;not null"`
	Mode        string    `gorm:"uniqueIndex:idx_session_day_mode;not null"`
	OwnerUserID *uint

	StartTime   time.Time `gorm:"not null"`
	CurrentTime time.Time `gorm:"not null"`
	EndTime     *time.Time

	IsActive        bool `gorm:"not null;default:true"`
	SimulationSpeed int  `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

const (
	SessionModePublic  = "PUBLIC"
	SessionModePrivate = "PRIVATE"
)

// SessionDayFormat is the layout SessionDay is stored in.
const SessionDayFormat = "2006-01-02"

// TableName sets the table name for MarketSession model
func (MarketSession) TableName() string {
	return "market_sessions"
}

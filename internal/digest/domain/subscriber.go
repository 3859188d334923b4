package domain

import "time"

// Subscriber is a recipient of the scheduled digest email. Timezone decides
// which daily send wave the subscriber belongs to.
type Subscriber struct {
	Email     string    `json:"email" gorm:"primaryKey"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subscriber) TableName() string {
	return "digest_subscribers"
}

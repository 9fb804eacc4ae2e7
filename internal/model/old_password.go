package model

import (
	"time"
)

// OldPassword is a retired password hash kept to block reuse. Every password
// mutation archives the previous hash here before overwriting the user record.
type OldPassword struct {
	ID           string    `bson:"_id" json:"id"`
	PasswordHash string    `bson:"password" json:"-"`
	UserID       string    `bson:"userId" json:"userId"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

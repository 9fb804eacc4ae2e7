package model

import (
	"time"
)

// ActionToken is a single-use token authorizing one account state transition.
// Consuming flows delete the row after use; a missing row means the token was
// already consumed even if the JWT itself is still within its expiry window.
type ActionToken struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	Kind      string    `bson:"kind" json:"kind"`
	UserID    string    `bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

const (
	ActionKindForgotPassword = "forgot_password"
	ActionKindVerifyEmail    = "verify_email"
	ActionKindAccountRestore = "account_restore"
)

package model

import (
	"time"
)

// Session is one issued access+refresh token pair. Middleware treats the
// presence of a row as "not revoked"; deleting the row revokes the pair.
type Session struct {
	ID           string    `bson:"_id" json:"id"`
	AccessToken  string    `bson:"accessToken" json:"accessToken"`
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	UserID       string    `bson:"userId" json:"userId"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

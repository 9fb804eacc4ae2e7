package model

import (
	"time"
)

type User struct {
	ID           string     `bson:"_id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email" json:"email"`
	Age          int        `bson:"age" json:"age"`
	PasswordHash string     `bson:"password" json:"-"`
	IsVerified   bool       `bson:"isVerified" json:"isVerified"`
	IsDeleted    bool       `bson:"isDeleted" json:"isDeleted"`
	DeletedAt    *time.Time `bson:"deletedAt" json:"deletedAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// UserListQuery carries the filters of GET /api/users.
type UserListQuery struct {
	Page    int
	Limit   int
	Name    string
	Age     int
	MinAge  int
	MaxAge  int
	OrderBy string // "name", "age" or "createdAt"
	Desc    bool
}

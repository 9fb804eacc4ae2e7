package model

import (
	"time"
)

type Post struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Text      string    `bson:"text" json:"text"`
	UserID    string    `bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type PostListQuery struct {
	Page    int
	Limit   int
	Title   string
	OrderBy string // "title" or "createdAt"
	Desc    bool
}

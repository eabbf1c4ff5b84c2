package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CommunityPost — запись в ленте сообщества.
type CommunityPost struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	AuthorID  uuid.UUID      `db:"author_id" json:"author_id"`
	Title     string         `db:"title" json:"title"`
	Body      string         `db:"body" json:"body"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

package init

import (
	"database/sql"
	"time"
)

// User is a CMS account.
type User struct {
	ID           string       `json:"id" db:"id"`
	Username     string       `json:"username" db:"username"`
	PasswordHash string       `json:"-" db:"password_hash"`
	Email        string       `json:"email" db:"email"`
	Role         string       `json:"role" db:"role"` // admin/editor/author/subscriber
	Enabled      bool         `json:"enabled" db:"enabled"`
	LastLoginAt  sql.NullTime `json:"last_login_at" db:"last_login_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Session is cached token state, stored in Redis when available.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Post is an article moving through the draft/published/scheduled workflow.
type Post struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Slug        string       `json:"slug" db:"slug"`
	Content     string       `json:"content" db:"content"`
	Excerpt     string       `json:"excerpt" db:"excerpt"`
	Status      string       `json:"status" db:"status"` // draft/published/scheduled
	PublishedAt sql.NullTime `json:"published_at" db:"published_at"`
	UserID      string       `json:"user_id" db:"user_id"`
	CategoryID  string       `json:"category_id" db:"category_id"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// Category groups posts.
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Tag is a free-form label attached to posts.
type Tag struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Media is uploaded file metadata; upload mechanics live elsewhere.
type Media struct {
	ID        string    `json:"id" db:"id"`
	Filename  string    `json:"filename" db:"filename"`
	Path      string    `json:"path" db:"path"`
	MimeType  string    `json:"mime_type" db:"mime_type"`
	Size      int64     `json:"size" db:"size"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment is a reader comment on a post.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	PostID    string    `json:"post_id" db:"post_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	Status    string    `json:"status" db:"status"` // visible/hidden
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AuditEntry is one append-only audit log record.
type AuditEntry struct {
	ID           string    `json:"id" db:"id"`
	Action       string    `json:"action" db:"action"`
	ActorUserID  string    `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ResourceType string    `json:"resource_type,omitempty" db:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty" db:"resource_id"`
	Metadata     string    `json:"metadata,omitempty" db:"metadata"` // JSON text
	IPAddress    string    `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

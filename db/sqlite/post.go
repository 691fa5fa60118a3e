package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	dbinit "inkwell/cms/db/init"
)

// CreatePost inserts a post.
func (s *SQLiteDB) CreatePost(post *dbinit.Post) error {
	query := `
		INSERT INTO posts (id, title, slug, content, excerpt, status, published_at, user_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, post.ID, post.Title, post.Slug, post.Content,
		post.Excerpt, post.Status, post.PublishedAt, post.UserID, post.CategoryID)
	return err
}

// GetPost fetches a post by ID.
func (s *SQLiteDB) GetPost(id string) (*dbinit.Post, error) {
	post := &dbinit.Post{}
	query := `
		SELECT id, title, slug, content, excerpt, status, published_at, user_id, category_id, created_at, updated_at
		FROM posts WHERE id = ?
	`
	err := s.db.QueryRow(query, id).Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt,
		&post.Status, &post.PublishedAt, &post.UserID, &post.CategoryID,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// GetPostBySlug fetches a post by its URL slug.
func (s *SQLiteDB) GetPostBySlug(slug string) (*dbinit.Post, error) {
	post := &dbinit.Post{}
	query := `
		SELECT id, title, slug, content, excerpt, status, published_at, user_id, category_id, created_at, updated_at
		FROM posts WHERE slug = ?
	`
	err := s.db.QueryRow(query, slug).Scan(
		&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt,
		&post.Status, &post.PublishedAt, &post.UserID, &post.CategoryID,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// ListPosts returns posts filtered by status, author and category,
// newest first. Empty filters match everything.
func (s *SQLiteDB) ListPosts(status, userID, categoryID string, limit, offset int) ([]*dbinit.Post, error) {
	query := `
		SELECT id, title, slug, content, excerpt, status, published_at, user_id, category_id, created_at, updated_at
		FROM posts WHERE 1=1
	`
	args := []interface{}{}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	if categoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, categoryID)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*dbinit.Post{}
	for rows.Next() {
		post := &dbinit.Post{}
		err := rows.Scan(
			&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt,
			&post.Status, &post.PublishedAt, &post.UserID, &post.CategoryID,
			&post.CreatedAt, &post.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// ListDuePosts returns scheduled posts whose publish time has passed.
func (s *SQLiteDB) ListDuePosts(now time.Time) ([]*dbinit.Post, error) {
	query := `
		SELECT id, title, slug, content, excerpt, status, published_at, user_id, category_id, created_at, updated_at
		FROM posts WHERE status = 'scheduled' AND published_at <= ?
	`
	rows, err := s.db.Query(query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*dbinit.Post{}
	for rows.Next() {
		post := &dbinit.Post{}
		err := rows.Scan(
			&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt,
			&post.Status, &post.PublishedAt, &post.UserID, &post.CategoryID,
			&post.CreatedAt, &post.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// UpdatePost updates the mutable post fields.
func (s *SQLiteDB) UpdatePost(post *dbinit.Post) error {
	query := `
		UPDATE posts
		SET title=?, slug=?, content=?, excerpt=?, status=?, published_at=?, category_id=?
		WHERE id=?
	`
	result, err := s.db.Exec(query, post.Title, post.Slug, post.Content, post.Excerpt,
		post.Status, post.PublishedAt, post.CategoryID, post.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// DeletePost removes a post; comments and tag links cascade.
func (s *SQLiteDB) DeletePost(id string) error {
	result, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("post not found")
	}
	return nil
}

// SetPostTags replaces the post's tag set.
func (s *SQLiteDB) SetPostTags(postID string, tagIDs []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListPostTags returns the tags attached to a post.
func (s *SQLiteDB) ListPostTags(postID string) ([]*dbinit.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM tags t JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name
	`
	rows, err := s.db.Query(query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*dbinit.Tag{}
	for rows.Next() {
		tag := &dbinit.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// SlugExists reports whether a post already uses slug.
func (s *SQLiteDB) SlugExists(slug string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE slug = ?`, slug).Scan(&count)
	return count > 0, err
}

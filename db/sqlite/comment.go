package sqlite

import (
	"database/sql"
	"fmt"

	dbinit "inkwell/cms/db/init"
)

// CreateComment inserts a comment.
func (s *SQLiteDB) CreateComment(comment *dbinit.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, body, status)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, comment.ID, comment.PostID, comment.UserID,
		comment.Body, comment.Status)
	return err
}

// GetComment fetches a comment by ID.
func (s *SQLiteDB) GetComment(id string) (*dbinit.Comment, error) {
	comment := &dbinit.Comment{}
	query := `SELECT id, post_id, user_id, body, status, created_at, updated_at FROM comments WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(
		&comment.ID, &comment.PostID, &comment.UserID, &comment.Body,
		&comment.Status, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return comment, err
}

// ListComments returns comments filtered by post and status, newest first.
func (s *SQLiteDB) ListComments(postID, status string, limit, offset int) ([]*dbinit.Comment, error) {
	query := `SELECT id, post_id, user_id, body, status, created_at, updated_at FROM comments WHERE 1=1`
	args := []interface{}{}

	if postID != "" {
		query += ` AND post_id = ?`
		args = append(args, postID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*dbinit.Comment{}
	for rows.Next() {
		comment := &dbinit.Comment{}
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.UserID, &comment.Body,
			&comment.Status, &comment.CreatedAt, &comment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// UpdateComment updates the mutable comment fields.
func (s *SQLiteDB) UpdateComment(comment *dbinit.Comment) error {
	query := `UPDATE comments SET body=?, status=? WHERE id=?`
	result, err := s.db.Exec(query, comment.Body, comment.Status, comment.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

// DeleteComment removes a comment.
func (s *SQLiteDB) DeleteComment(id string) error {
	result, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("comment not found")
	}
	return nil
}

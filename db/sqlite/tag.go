package sqlite

import (
	"database/sql"
	"fmt"

	dbinit "inkwell/cms/db/init"
)

// CreateTag inserts a tag.
func (s *SQLiteDB) CreateTag(tag *dbinit.Tag) error {
	query := `INSERT INTO tags (id, name, slug) VALUES (?, ?, ?)`
	_, err := s.db.Exec(query, tag.ID, tag.Name, tag.Slug)
	return err
}

// GetTag fetches a tag by ID.
func (s *SQLiteDB) GetTag(id string) (*dbinit.Tag, error) {
	tag := &dbinit.Tag{}
	query := `SELECT id, name, slug, created_at FROM tags WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tag, err
}

// ListTags returns all tags ordered by name.
func (s *SQLiteDB) ListTags() ([]*dbinit.Tag, error) {
	rows, err := s.db.Query(`SELECT id, name, slug, created_at FROM tags ORDER BY name`)
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

// UpdateTag updates the mutable tag fields.
func (s *SQLiteDB) UpdateTag(tag *dbinit.Tag) error {
	result, err := s.db.Exec(`UPDATE tags SET name=?, slug=? WHERE id=?`, tag.Name, tag.Slug, tag.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("tag not found")
	}
	return nil
}

// DeleteTag removes a tag; post links cascade.
func (s *SQLiteDB) DeleteTag(id string) error {
	result, err := s.db.Exec(`DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("tag not found")
	}
	return nil
}

package sqlite

import (
	"database/sql"
	"fmt"

	dbinit "inkwell/cms/db/init"
)

// CreateMedia inserts a media record.
func (s *SQLiteDB) CreateMedia(media *dbinit.Media) error {
	query := `
		INSERT INTO media (id, filename, path, mime_type, size, user_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, media.ID, media.Filename, media.Path,
		media.MimeType, media.Size, media.UserID)
	return err
}

// GetMedia fetches a media record by ID.
func (s *SQLiteDB) GetMedia(id string) (*dbinit.Media, error) {
	media := &dbinit.Media{}
	query := `SELECT id, filename, path, mime_type, size, user_id, created_at FROM media WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(
		&media.ID, &media.Filename, &media.Path, &media.MimeType,
		&media.Size, &media.UserID, &media.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return media, err
}

// ListMedia returns media records, optionally filtered by owner, newest first.
func (s *SQLiteDB) ListMedia(userID string, limit, offset int) ([]*dbinit.Media, error) {
	query := `SELECT id, filename, path, mime_type, size, user_id, created_at FROM media WHERE 1=1`
	args := []interface{}{}

	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*dbinit.Media{}
	for rows.Next() {
		media := &dbinit.Media{}
		err := rows.Scan(
			&media.ID, &media.Filename, &media.Path, &media.MimeType,
			&media.Size, &media.UserID, &media.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, media)
	}

	return records, rows.Err()
}

// UpdateMedia updates the mutable media fields.
func (s *SQLiteDB) UpdateMedia(media *dbinit.Media) error {
	query := `UPDATE media SET filename=?, path=?, mime_type=?, size=? WHERE id=?`
	result, err := s.db.Exec(query, media.Filename, media.Path, media.MimeType, media.Size, media.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("media not found")
	}
	return nil
}

// DeleteMedia removes a media record.
func (s *SQLiteDB) DeleteMedia(id string) error {
	result, err := s.db.Exec(`DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("media not found")
	}
	return nil
}

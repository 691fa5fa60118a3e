package sqlite

import (
	"database/sql"
	"fmt"

	dbinit "inkwell/cms/db/init"
)

// CreateCategory inserts a category.
func (s *SQLiteDB) CreateCategory(category *dbinit.Category) error {
	query := `INSERT INTO categories (id, name, slug, description) VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, category.ID, category.Name, category.Slug, category.Description)
	return err
}

// GetCategory fetches a category by ID.
func (s *SQLiteDB) GetCategory(id string) (*dbinit.Category, error) {
	category := &dbinit.Category{}
	query := `SELECT id, name, slug, description, created_at, updated_at FROM categories WHERE id = ?`
	err := s.db.QueryRow(query, id).Scan(
		&category.ID, &category.Name, &category.Slug, &category.Description,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return category, err
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteDB) ListCategories() ([]*dbinit.Category, error) {
	query := `SELECT id, name, slug, description, created_at, updated_at FROM categories ORDER BY name`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*dbinit.Category{}
	for rows.Next() {
		category := &dbinit.Category{}
		err := rows.Scan(
			&category.ID, &category.Name, &category.Slug, &category.Description,
			&category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

// UpdateCategory updates the mutable category fields.
func (s *SQLiteDB) UpdateCategory(category *dbinit.Category) error {
	query := `UPDATE categories SET name=?, slug=?, description=? WHERE id=?`
	result, err := s.db.Exec(query, category.Name, category.Slug, category.Description, category.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

// DeleteCategory removes a category.
func (s *SQLiteDB) DeleteCategory(id string) error {
	result, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("category not found")
	}
	return nil
}

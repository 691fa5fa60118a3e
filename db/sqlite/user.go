package sqlite

import (
	"database/sql"
	"fmt"

	dbinit "inkwell/cms/db/init"
)

// CreateUser inserts a new account.
func (s *SQLiteDB) CreateUser(user *dbinit.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, email, role, enabled)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, user.ID, user.Username, user.PasswordHash,
		user.Email, user.Role, user.Enabled)
	return err
}

// GetUser fetches an account by ID.
func (s *SQLiteDB) GetUser(id string) (*dbinit.User, error) {
	user := &dbinit.User{}
	query := `
		SELECT id, username, password_hash, email, role, enabled, last_login_at, created_at, updated_at
		FROM users WHERE id = ?
	`
	err := s.db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&user.Role, &user.Enabled, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// GetUserByUsername fetches an account by username.
func (s *SQLiteDB) GetUserByUsername(username string) (*dbinit.User, error) {
	user := &dbinit.User{}
	query := `
		SELECT id, username, password_hash, email, role, enabled, last_login_at, created_at, updated_at
		FROM users WHERE username = ?
	`
	err := s.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email,
		&user.Role, &user.Enabled, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// ListUsers returns accounts, optionally filtered by role, newest first.
func (s *SQLiteDB) ListUsers(role string, limit, offset int) ([]*dbinit.User, error) {
	query := `
		SELECT id, username, password_hash, email, role, enabled, last_login_at, created_at, updated_at
		FROM users WHERE 1=1
	`
	args := []interface{}{}

	if role != "" {
		query += ` AND role = ?`
		args = append(args, role)
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*dbinit.User{}
	for rows.Next() {
		user := &dbinit.User{}
		err := rows.Scan(
			&user.ID, &user.Username, &user.PasswordHash, &user.Email,
			&user.Role, &user.Enabled, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateUser updates the mutable account fields.
func (s *SQLiteDB) UpdateUser(user *dbinit.User) error {
	query := `UPDATE users SET username=?, email=?, role=?, enabled=? WHERE id=?`
	result, err := s.db.Exec(query, user.Username, user.Email, user.Role, user.Enabled, user.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// UpdateUserPassword replaces the stored password hash.
func (s *SQLiteDB) UpdateUserPassword(id, passwordHash string) error {
	_, err := s.db.Exec(`UPDATE users SET password_hash=? WHERE id=?`, passwordHash, id)
	return err
}

// UpdateUserLastLogin stamps the last successful login.
func (s *SQLiteDB) UpdateUserLastLogin(id string) error {
	_, err := s.db.Exec(`UPDATE users SET last_login_at=CURRENT_TIMESTAMP WHERE id=?`, id)
	return err
}

// DeleteUser removes an account.
func (s *SQLiteDB) DeleteUser(id string) error {
	result, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// CountUsers returns the number of accounts.
func (s *SQLiteDB) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

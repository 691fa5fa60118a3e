package sqlite

import (
	dbinit "inkwell/cms/db/init"
)

// The audit log is append-only: this file deliberately has no update or
// delete statements.

// InsertAuditEntry appends one entry. CreatedAt is set by the caller so
// ordering keeps sub-second precision.
func (s *SQLiteDB) InsertAuditEntry(entry *dbinit.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, action, actor_user_id, resource_type, resource_id, metadata, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query, entry.ID, entry.Action, entry.ActorUserID,
		entry.ResourceType, entry.ResourceID, entry.Metadata, entry.IPAddress, entry.CreatedAt)
	return err
}

const auditColumns = `id, action, actor_user_id, resource_type, resource_id, metadata, ip_address, created_at`

func (s *SQLiteDB) scanAuditEntries(query string, args ...interface{}) ([]*dbinit.AuditEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*dbinit.AuditEntry{}
	for rows.Next() {
		entry := &dbinit.AuditEntry{}
		err := rows.Scan(
			&entry.ID, &entry.Action, &entry.ActorUserID, &entry.ResourceType,
			&entry.ResourceID, &entry.Metadata, &entry.IPAddress, &entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListAuditForUser returns a user's entries, newest first.
func (s *SQLiteDB) ListAuditForUser(userID string) ([]*dbinit.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log WHERE actor_user_id = ? ORDER BY created_at DESC`
	return s.scanAuditEntries(query, userID)
}

// ListAuditForResource returns a resource's entries, newest first.
func (s *SQLiteDB) ListAuditForResource(resourceType, resourceID string) ([]*dbinit.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log WHERE resource_type = ? AND resource_id = ? ORDER BY created_at DESC`
	return s.scanAuditEntries(query, resourceType, resourceID)
}

// ListAuditRecent returns up to limit entries, newest first.
func (s *SQLiteDB) ListAuditRecent(limit int) ([]*dbinit.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_log ORDER BY created_at DESC LIMIT ?`
	return s.scanAuditEntries(query, limit)
}

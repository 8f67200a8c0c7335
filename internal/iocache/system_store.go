package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/google/uuid"
)

// Table names of the system store.
const (
	systemsTable = "benchboard_systems"
	outputsTable = "benchboard_system_outputs"
)

// systemColumns is the select list shared by every system query.
const systemColumns = `system_id, system_name, task_name, dataset_name, sub_dataset_name, dataset_split,
	source_language, target_language, creator, is_private, shared_users, system_info, created_at, last_modified`

// SystemStoreImpl handles durable storage of systems using various database backends.
type SystemStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SystemStore = &SystemStoreImpl{} // Compile-time check

// NewSystemStore opens the backend, applies pending migrations and returns the store.
// The none backend returns a store that keeps nothing.
func NewSystemStore(backend schema.DatabaseBackend, connStr string) (*SystemStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &SystemStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare %s schema: %w", backend, err)
	}
	return &SystemStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

func (s *SystemStoreImpl) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

func (s *SystemStoreImpl) table(name string) string {
	return quoteTableName(name, s.backend)
}

// CreateSystem stores a system and its outputs in one transaction.
func (s *SystemStoreImpl) CreateSystem(ctx context.Context, sys schema.System, outputs []schema.SystemOutput) (schema.System, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if sys.SystemID == "" {
		sys.SystemID = uuid.NewString()
	}
	if sys.CreatedAt.IsZero() {
		sys.CreatedAt = now
	}
	sys.LastModified = now

	// Skip for NoneBackend
	if s.disabled() {
		return sys, nil
	}

	infoJSON, err := json.Marshal(sys.SystemInfo)
	if err != nil {
		return schema.System{}, fmt.Errorf("failed to marshal system info: %w", err)
	}
	shared := sys.SharedUsers
	if shared == nil {
		shared = []string{}
	}
	sharedJSON, err := json.Marshal(shared)
	if err != nil {
		return schema.System{}, fmt.Errorf("failed to marshal shared users: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return schema.System{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	info := sys.SystemInfo
	if info.DatasetName != "" {
		info.DatasetSplit = info.Identity().DatasetSplit
	}
	insertSystem := rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		s.table(systemsTable), systemColumns, placeholders(14)), s.backend)
	if _, err := tx.ExecContext(ctx, insertSystem,
		sys.SystemID, info.SystemName, info.TaskName, info.DatasetName, info.SubDatasetName, info.DatasetSplit,
		info.SourceLanguage, info.TargetLanguage, sys.Creator, sys.IsPrivate, string(sharedJSON), string(infoJSON),
		formatTime(sys.CreatedAt, s.backend), formatTime(sys.LastModified, s.backend),
	); err != nil {
		return schema.System{}, fmt.Errorf("failed to insert system %s: %w", sys.SystemID, err)
	}

	insertOutput := rebind(fmt.Sprintf(`INSERT INTO %s (system_id, output_id, data) VALUES (?, ?, ?)`,
		s.table(outputsTable)), s.backend)
	for i, o := range outputs {
		outputID := o.OutputID
		if outputID == "" {
			outputID = strconv.Itoa(i)
		}
		if _, err := tx.ExecContext(ctx, insertOutput, sys.SystemID, outputID, o.Data); err != nil {
			return schema.System{}, fmt.Errorf("failed to insert output %s of system %s: %w", outputID, sys.SystemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return schema.System{}, fmt.Errorf("failed to commit system %s: %w", sys.SystemID, err)
	}
	return sys, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSystem(row rowScanner) (schema.System, error) {
	var sys schema.System
	var info schema.SystemInfo
	var sharedJSON, infoJSON string
	if err := row.Scan(
		&sys.SystemID, &info.SystemName, &info.TaskName, &info.DatasetName, &info.SubDatasetName, &info.DatasetSplit,
		&info.SourceLanguage, &info.TargetLanguage, &sys.Creator, &sys.IsPrivate, &sharedJSON, &infoJSON,
		timeScanner{&sys.CreatedAt}, timeScanner{&sys.LastModified},
	); err != nil {
		return schema.System{}, err
	}
	if err := json.Unmarshal([]byte(infoJSON), &sys.SystemInfo); err != nil {
		return schema.System{}, fmt.Errorf("failed to decode system info of %s: %w", sys.SystemID, err)
	}
	if err := json.Unmarshal([]byte(sharedJSON), &sys.SharedUsers); err != nil {
		return schema.System{}, fmt.Errorf("failed to decode shared users of %s: %w", sys.SystemID, err)
	}
	if len(sys.SharedUsers) == 0 {
		sys.SharedUsers = nil
	}
	return sys, nil
}

// GetSystem returns one system by id.
func (s *SystemStoreImpl) GetSystem(ctx context.Context, systemID string) (schema.System, error) {
	if s.disabled() {
		return schema.System{}, &schema.NotFoundError{Kind: "system", ID: systemID}
	}

	query := rebind(fmt.Sprintf(`SELECT %s FROM %s WHERE system_id = ?`, systemColumns, s.table(systemsTable)), s.backend)
	sys, err := scanSystem(s.db.QueryRowContext(ctx, query, systemID))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.System{}, &schema.NotFoundError{Kind: "system", ID: systemID}
	}
	if err != nil {
		return schema.System{}, fmt.Errorf("failed to get system %s: %w", systemID, err)
	}
	return sys, nil
}

// FindSystems returns a page of matching systems and the total match count.
func (s *SystemStoreImpl) FindSystems(ctx context.Context, q schema.SystemQuery) ([]schema.System, int, error) {
	if s.disabled() {
		return nil, 0, nil
	}

	where, args := buildSystemFilter(q)
	countQuery := rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, s.table(systemsTable), where), s.backend)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count systems: %w", err)
	}
	if total == 0 {
		return []schema.System{}, 0, nil
	}

	direction := "DESC"
	if q.SortDirection == schema.SortAsc {
		direction = "ASC"
	}
	sortByMetric := q.SortField != "" && q.SortField != schema.SortByCreatedAt

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY created_at %s, system_id %s`,
		systemColumns, s.table(systemsTable), where, direction, direction)
	// Metric values live inside system_info, so those pages are cut after sorting in memory
	if q.PageSize > 0 && !sortByMetric {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.PageSize, q.Page*q.PageSize)
	}

	rows, err := s.db.QueryContext(ctx, rebind(query, s.backend), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query systems: %w", err)
	}
	defer func() { _ = rows.Close() }()

	systems := []schema.System{}
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, sys)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating systems: %w", err)
	}

	if sortByMetric {
		SortByMetric(systems, q.SortField, q.SortDirection)
		systems = paginate(systems, q.Page, q.PageSize)
	}
	return systems, total, nil
}

// buildSystemFilter renders the WHERE clause of a query with "?" placeholders.
func buildSystemFilter(q schema.SystemQuery) (string, []any) {
	var clauses []string
	var args []any

	if len(q.IDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("system_id IN (%s)", placeholders(len(q.IDs))))
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}
	if q.SystemName != "" {
		clauses = append(clauses, "system_name LIKE ? ESCAPE '"+likeEscape+"'")
		args = append(args, "%"+escapeLike(q.SystemName)+"%")
	}
	if q.Task != "" {
		clauses = append(clauses, "task_name = ?")
		args = append(args, q.Task)
	}
	if q.Creator != "" {
		clauses = append(clauses, "creator = ?")
		args = append(args, q.Creator)
	}
	if q.Viewer != nil {
		if *q.Viewer == "" {
			clauses = append(clauses, "is_private = ?")
			args = append(args, false)
		} else {
			// shared_users holds a JSON array, so a quoted match finds exact entries
			quoted, _ := json.Marshal(*q.Viewer)
			clauses = append(clauses, "(is_private = ? OR creator = ? OR shared_users LIKE ? ESCAPE '"+likeEscape+"')")
			args = append(args, false, *q.Viewer, "%"+escapeLike(string(quoted))+"%")
		}
	}
	if len(q.Datasets) > 0 {
		var ors []string
		for _, d := range q.Datasets {
			if d.SubDatasetName == "" && d.DatasetSplit == "" {
				ors = append(ors, "dataset_name = ?")
				args = append(args, d.DatasetName)
				continue
			}
			split := d.DatasetSplit
			if split == "" {
				split = schema.DefaultSplit
			}
			ors = append(ors, "(dataset_name = ? AND sub_dataset_name = ? AND dataset_split = ?)")
			args = append(args, d.DatasetName, d.SubDatasetName, split)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// GetSystemOutputs returns stored outputs of a system ordered by output id.
func (s *SystemStoreImpl) GetSystemOutputs(ctx context.Context, systemID string, outputIDs []string, limit int) ([]schema.SystemOutput, error) {
	if s.disabled() {
		return []schema.SystemOutput{}, nil
	}

	query := fmt.Sprintf(`SELECT system_id, output_id, data FROM %s WHERE system_id = ?`, s.table(outputsTable))
	args := []any{systemID}
	if len(outputIDs) > 0 {
		query += fmt.Sprintf(" AND output_id IN (%s)", placeholders(len(outputIDs)))
		for _, id := range outputIDs {
			args = append(args, id)
		}
	}
	// Numeric ids sort naturally when shorter ids come first
	query += " ORDER BY LENGTH(output_id), output_id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, rebind(query, s.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outputs of system %s: %w", systemID, err)
	}
	defer func() { _ = rows.Close() }()

	outputs := []schema.SystemOutput{}
	for rows.Next() {
		var o schema.SystemOutput
		if err := rows.Scan(&o.SystemID, &o.OutputID, &o.Data); err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		outputs = append(outputs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outputs: %w", err)
	}
	return outputs, nil
}

// DeleteSystem removes a system and its outputs.
func (s *SystemStoreImpl) DeleteSystem(ctx context.Context, systemID string) error {
	if s.disabled() {
		return &schema.NotFoundError{Kind: "system", ID: systemID}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, rebind(fmt.Sprintf(`DELETE FROM %s WHERE system_id = ?`, s.table(systemsTable)), s.backend), systemID)
	if err != nil {
		return fmt.Errorf("failed to delete system %s: %w", systemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete system %s: %w", systemID, err)
	}
	if n == 0 {
		return &schema.NotFoundError{Kind: "system", ID: systemID}
	}
	if _, err := tx.ExecContext(ctx, rebind(fmt.Sprintf(`DELETE FROM %s WHERE system_id = ?`, s.table(outputsTable)), s.backend), systemID); err != nil {
		return fmt.Errorf("failed to delete outputs of system %s: %w", systemID, err)
	}
	return tx.Commit()
}

// GetStatus returns status information about the system store.
func (s *SystemStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: map[string]int64{},
	}
	if s.disabled() {
		return status, nil
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table(systemsTable)), &status.TotalSystems},
		{fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table(outputsTable)), &status.TotalOutputs},
		{fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE is_private = ?", s.table(systemsTable)), &status.PrivateSystems},
	}
	for i, c := range counts {
		var args []any
		if i == 2 {
			args = append(args, true)
		}
		if err := s.db.QueryRowContext(ctx, rebind(c.query, s.backend), args...).Scan(c.dest); err != nil {
			return status, fmt.Errorf("failed to get store counts: %w", err)
		}
	}
	status.TableSizes[systemsTable] = int64(status.TotalSystems)
	status.TableSizes[outputsTable] = int64(status.TotalOutputs)

	if status.TotalSystems > 0 {
		rangeQuery := fmt.Sprintf("SELECT MAX(created_at), MIN(created_at) FROM %s", s.table(systemsTable))
		if err := s.db.QueryRowContext(ctx, rangeQuery).Scan(timeScanner{&status.LastCreatedTime}, timeScanner{&status.OldestCreateTime}); err != nil {
			return status, fmt.Errorf("failed to get creation times: %w", err)
		}
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (s *SystemStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

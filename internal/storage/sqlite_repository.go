package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reefkeep/tankd/internal/model"
)

const (
	timestampLayout = time.RFC3339Nano
	dateLayout      = time.DateOnly
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) CreateTank(ctx context.Context, in *model.Tank) error {
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tanks (name, volume_liter, water_type, setup_date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.VolumeLiter, string(in.WaterType), dateString(in.SetupDate), timestamp(in.CreatedAt),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	in.ID = id
	return nil
}

func (r *SQLiteRepository) GetTank(ctx context.Context, id int64) (model.Tank, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, volume_liter, water_type, setup_date, created_at
		FROM tanks WHERE id = ?`, id)
	tank, err := scanTank(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Tank{}, ErrNotFound
		}
		return model.Tank{}, err
	}
	return tank, nil
}

func (r *SQLiteRepository) ListTanks(ctx context.Context) ([]model.Tank, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, volume_liter, water_type, setup_date, created_at
		FROM tanks ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Tank, 0)
	for rows.Next() {
		tank, scanErr := scanTank(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, tank)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteTank(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tanks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// SaveTaskTemplate upserts a template. A zero ID inserts and assigns the new
// ID; a non-zero ID updates the existing row. Invalid templates are rejected
// before any SQL runs.
func (r *SQLiteRepository) SaveTaskTemplate(ctx context.Context, in *model.TaskTemplate) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if in.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO task_templates (tank_id, category, title, instructions, schedule_type, interval_days, next_due, notification_time, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.TankID, string(in.Category), in.Title, in.Instructions, string(in.Schedule), in.IntervalDays,
			nullDate(in.NextDue), string(in.NotificationTime), string(in.Status), timestamp(in.CreatedAt),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		in.ID = id
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE task_templates
		SET tank_id = ?, category = ?, title = ?, instructions = ?, schedule_type = ?, interval_days = ?, next_due = ?, notification_time = ?, status = ?
		WHERE id = ?`,
		in.TankID, string(in.Category), in.Title, in.Instructions, string(in.Schedule), in.IntervalDays,
		nullDate(in.NextDue), string(in.NotificationTime), string(in.Status), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) GetTaskTemplate(ctx context.Context, id int64) (model.TaskTemplate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tank_id, category, title, instructions, schedule_type, interval_days, next_due, notification_time, status, created_at
		FROM task_templates WHERE id = ?`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TaskTemplate{}, ErrNotFound
		}
		return model.TaskTemplate{}, err
	}
	return tpl, nil
}

func (r *SQLiteRepository) ListTaskTemplates(ctx context.Context, filter TemplateFilter) ([]model.TaskTemplate, error) {
	query := `SELECT id, tank_id, category, title, instructions, schedule_type, interval_days, next_due, notification_time, status, created_at FROM task_templates`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.TankID > 0 {
		clauses = append(clauses, "tank_id = ?")
		args = append(args, filter.TankID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY next_due IS NULL, next_due ASC, title ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TaskTemplate, 0)
	for rows.Next() {
		tpl, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListTemplatesDueOn(ctx context.Context, day time.Time) ([]model.TaskTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.tank_id, t.category, t.title, t.instructions, t.schedule_type, t.interval_days, t.next_due, t.notification_time, t.status, t.created_at, tk.name
		FROM task_templates t
		JOIN tanks tk ON t.tank_id = tk.id
		WHERE t.status = ? AND t.next_due = ?
		ORDER BY t.notification_time ASC, t.title ASC`,
		string(model.StatusActive), dateString(day),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TaskTemplate, 0)
	for rows.Next() {
		tpl, scanErr := scanTemplateWithTank(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ArchiveTemplate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE task_templates SET status = ? WHERE id = ?`, string(model.StatusArchived), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task_templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) AppendActivity(ctx context.Context, in *model.TaskActivity) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task_activities (template_id, execution_date, action, notes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.TemplateID, dateString(in.ExecutionDate), string(in.Action), in.Notes, timestamp(in.CreatedAt),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	in.ID = id
	return nil
}

func (r *SQLiteRepository) ListActivities(ctx context.Context, filter ActivityFilter) ([]model.TaskActivity, error) {
	query := `SELECT id, template_id, execution_date, action, notes, created_at FROM task_activities`
	args := make([]any, 0, 3)
	if filter.TemplateID > 0 {
		query += ` WHERE template_id = ?`
		args = append(args, filter.TemplateID)
	}
	query += ` ORDER BY execution_date DESC, id DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepository) ListActivitiesOn(ctx context.Context, day time.Time) ([]model.TaskActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, template_id, execution_date, action, notes, created_at
		FROM task_activities WHERE execution_date = ?
		ORDER BY id DESC`, dateString(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

func (r *SQLiteRepository) SaveParameterRange(ctx context.Context, in *model.ParameterRange) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if in.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO parameter_ranges (tank_id, name, min_value, max_value, unit)
			VALUES (?, ?, ?, ?, ?)`,
			in.TankID, in.Name, in.Min, in.Max, in.Unit,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		in.ID = id
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE parameter_ranges SET name = ?, min_value = ?, max_value = ?, unit = ? WHERE id = ?`,
		in.Name, in.Min, in.Max, in.Unit, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListParameterRanges(ctx context.Context, tankID int64) ([]model.ParameterRange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tank_id, name, min_value, max_value, unit
		FROM parameter_ranges WHERE tank_id = ? ORDER BY name ASC`, tankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ParameterRange, 0)
	for rows.Next() {
		var p model.ParameterRange
		if err := rows.Scan(&p.ID, &p.TankID, &p.Name, &p.Min, &p.Max, &p.Unit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteParameterRange(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parameter_ranges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) SaveLivestock(ctx context.Context, in *model.Livestock) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if in.ID == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO livestock (tank_id, name, scientific_name, quantity, introduced_on, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.TankID, in.Name, in.ScientificName, in.Quantity, dateString(in.IntroducedOn), in.Notes, timestamp(in.CreatedAt),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		in.ID = id
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE livestock SET tank_id = ?, name = ?, scientific_name = ?, quantity = ?, introduced_on = ?, notes = ? WHERE id = ?`,
		in.TankID, in.Name, in.ScientificName, in.Quantity, dateString(in.IntroducedOn), in.Notes, in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListLivestock(ctx context.Context, tankID int64) ([]model.Livestock, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tank_id, name, scientific_name, quantity, introduced_on, notes, created_at
		FROM livestock WHERE tank_id = ? ORDER BY name ASC`, tankID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Livestock, 0)
	for rows.Next() {
		stock, scanErr := scanLivestock(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, stock)
	}
	return out, rows.Err()
}

// MoveLivestock runs in a transaction so a partial move never leaves the
// source decremented without the destination record.
func (r *SQLiteRepository) MoveLivestock(ctx context.Context, id, destTankID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("storage: move quantity must be positive, got %d", quantity)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, tank_id, name, scientific_name, quantity, introduced_on, notes, created_at
		FROM livestock WHERE id = ?`, id)
	stock, err := scanLivestock(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if quantity > stock.Quantity {
		return fmt.Errorf("storage: cannot move %d of %d %q", quantity, stock.Quantity, stock.Name)
	}

	if quantity == stock.Quantity {
		if _, err := tx.ExecContext(ctx, `UPDATE livestock SET tank_id = ? WHERE id = ?`, destTankID, id); err != nil {
			return err
		}
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `UPDATE livestock SET quantity = ? WHERE id = ?`, stock.Quantity-quantity, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO livestock (tank_id, name, scientific_name, quantity, introduced_on, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		destTankID, stock.Name, stock.ScientificName, quantity, dateString(stock.IntroducedOn), stock.Notes, timestamp(stock.CreatedAt),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) DeleteLivestock(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM livestock WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func timestamp(v time.Time) string {
	return v.UTC().Format(timestampLayout)
}

func dateString(v time.Time) string {
	return model.Midnight(v).Format(dateLayout)
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return dateString(*v)
}

func parseTimestamp(v string) (time.Time, error) {
	return time.Parse(timestampLayout, v)
}

func parseDate(v string) (time.Time, error) {
	tm, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	return tm.UTC(), nil
}

func parseNullableDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := parseDate(v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTank(s scanner) (model.Tank, error) {
	var out model.Tank
	var waterType string
	var setup string
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.VolumeLiter, &waterType, &setup, &created); err != nil {
		return model.Tank{}, err
	}
	setupDate, err := parseDate(setup)
	if err != nil {
		return model.Tank{}, err
	}
	createdAt, err := parseTimestamp(created)
	if err != nil {
		return model.Tank{}, err
	}
	out.WaterType = model.WaterType(waterType)
	out.SetupDate = setupDate
	out.CreatedAt = createdAt
	return out, nil
}

func scanLivestock(s scanner) (model.Livestock, error) {
	var out model.Livestock
	var introduced string
	var created string
	if err := s.Scan(&out.ID, &out.TankID, &out.Name, &out.ScientificName, &out.Quantity, &introduced, &out.Notes, &created); err != nil {
		return model.Livestock{}, err
	}
	introducedOn, err := parseDate(introduced)
	if err != nil {
		return model.Livestock{}, err
	}
	createdAt, err := parseTimestamp(created)
	if err != nil {
		return model.Livestock{}, err
	}
	out.IntroducedOn = introducedOn
	out.CreatedAt = createdAt
	return out, nil
}

func scanTemplateFields(s scanner, out *model.TaskTemplate, extra ...any) error {
	var category, schedule, notification, status string
	var nextDue sql.NullString
	var created string

	dest := []any{&out.ID, &out.TankID, &category, &out.Title, &out.Instructions, &schedule, &out.IntervalDays, &nextDue, &notification, &status, &created}
	dest = append(dest, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}

	due, err := parseNullableDate(nextDue)
	if err != nil {
		return err
	}
	createdAt, err := parseTimestamp(created)
	if err != nil {
		return err
	}
	out.Category = model.Category(category)
	out.Schedule = model.ScheduleType(schedule)
	out.NextDue = due
	out.NotificationTime = model.ClockTime(notification)
	out.Status = model.TemplateStatus(status)
	out.CreatedAt = createdAt
	return nil
}

func scanTemplate(s scanner) (model.TaskTemplate, error) {
	var out model.TaskTemplate
	if err := scanTemplateFields(s, &out); err != nil {
		return model.TaskTemplate{}, err
	}
	return out, nil
}

func scanTemplateWithTank(s scanner) (model.TaskTemplate, error) {
	var out model.TaskTemplate
	if err := scanTemplateFields(s, &out, &out.TankName); err != nil {
		return model.TaskTemplate{}, err
	}
	return out, nil
}

func collectActivities(rows *sql.Rows) ([]model.TaskActivity, error) {
	out := make([]model.TaskActivity, 0)
	for rows.Next() {
		var a model.TaskActivity
		var action string
		var execDate string
		var created string
		if err := rows.Scan(&a.ID, &a.TemplateID, &execDate, &action, &a.Notes, &created); err != nil {
			return nil, err
		}
		executionDate, err := parseDate(execDate)
		if err != nil {
			return nil, err
		}
		createdAt, err := parseTimestamp(created)
		if err != nil {
			return nil, err
		}
		a.ExecutionDate = executionDate
		a.Action = model.Action(action)
		a.CreatedAt = createdAt
		out = append(out, a)
	}
	return out, rows.Err()
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

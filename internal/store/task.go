package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roomiesapp/roomies/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var assignedTo, createdBy sql.NullInt64
	var dueDate sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Description, &t.Points,
		&assignedTo, &dueDate, &t.SortOrder, &createdBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if createdBy.Valid {
		t.CreatedBy = &createdBy.Int64
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return &t, nil
}

const taskCols = `id, household_id, title, description, points, assigned_to, due_date, sort_order, created_by, created_at, updated_at`

func (s *TaskStore) Create(householdID int64, title, description string, points int, assignedTo *int64, dueDate *time.Time, createdBy *int64) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, description, points, assigned_to, due_date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		householdID, title, description, points, nullInt(assignedTo), nullTime(dueDate), nullInt(createdBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *TaskStore) GetByID(id, householdID int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ? AND household_id = ?`, id, householdID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY sort_order ASC, title ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id, householdID int64, title, description string, points int, assignedTo *int64, dueDate *time.Time, sortOrder int) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, points = ?, assigned_to = ?, due_date = ?, sort_order = ?, updated_at = datetime('now')
		 WHERE id = ? AND household_id = ?`,
		title, description, points, nullInt(assignedTo), nullTime(dueDate), sortOrder, id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *TaskStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.TaskCompletion, error) {
	var c model.TaskCompletion
	err := scanner.Scan(&c.ID, &c.TaskID, &c.CompletedBy, &c.PointsEarned, &c.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const completionCols = `id, task_id, completed_by, points_earned, completed_at`

func (s *TaskStore) GetCompletion(id int64) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM task_completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

func (s *TaskStore) ListCompletions(taskID int64) ([]model.TaskCompletion, error) {
	rows, err := s.db.Query(
		`SELECT `+completionCols+` FROM task_completions WHERE task_id = ? ORDER BY completed_at DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.TaskCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

// ListDueOn returns assigned tasks due on the given calendar day, for the
// reminder scheduler.
func (s *TaskStore) ListDueOn(day time.Time) ([]model.Task, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE assigned_to IS NOT NULL AND due_date >= ? AND due_date < ?`,
		dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

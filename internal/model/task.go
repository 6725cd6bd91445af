package model

import "time"

type Task struct {
	ID          int64      `json:"id"`
	HouseholdID int64      `json:"household_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	AssignedTo  *int64     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	SortOrder   int        `json:"sort_order"`
	CreatedBy   *int64     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TaskCompletion struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	CompletedBy  int64     `json:"completed_by"`
	PointsEarned int       `json:"points_earned"`
	CompletedAt  time.Time `json:"completed_at"`
}

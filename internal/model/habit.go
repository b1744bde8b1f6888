package model

import "time"

// GoalTypeDaily 目前唯一支持的目标类型
const GoalTypeDaily = "daily"

type Habit struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	GoalType  string    `json:"goal_type"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// WeeklyRanking: одна строка зафиксированного рейтинга недели (неделя, параллель, класс).
type WeeklyRanking struct {
	WeekKey   string    `db:"week_key" json:"weekKey"`
	Grade     int       `db:"grade" json:"grade"`
	ClassID   string    `db:"class_id" json:"classId"`
	ClassName string    `db:"class_name" json:"className"`
	Merit     int       `db:"merit" json:"merit"`
	Demerit   int       `db:"demerit" json:"demerit"`
	Total     int       `db:"total" json:"total"`
	Rank      int       `db:"rank" json:"rank"`
	LockedAt  time.Time `db:"locked_at" json:"lockedAt"`
}

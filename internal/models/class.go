package models

import "time"

type Class struct {
	ID        string    `db:"id" json:"id"`
	Grade     int       `db:"grade" json:"grade"`
	Name      string    `db:"name" json:"name"`
	Merit     int       `db:"merit" json:"merit"`
	Demerit   int       `db:"demerit" json:"demerit"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Student struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"schoolId"`
	FullName  string    `db:"full_name" json:"fullName"`
	ClassID   string    `db:"class_id" json:"classId"`
	Merit     int       `db:"merit" json:"merit"`
	Demerit   int       `db:"demerit" json:"demerit"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type NewClass struct {
	Grade int    `json:"grade" validate:"required,min=1,max=12"`
	Name  string `json:"name" validate:"required,max=32"`
}

// NewStudent: счётчики merit/demerit не принимаются, их меняют только записи.
type NewStudent struct {
	SchoolID string `json:"schoolId" validate:"required,printascii,max=32"`
	FullName string `json:"fullName" validate:"required,max=128"`
	ClassID  string `json:"classId" validate:"required,uuid"`
}

package models

import "time"

// Record is an immutable merit/demerit event. ClassID is the student's class at creation
// time and is never re-derived.
type Record struct {
	ID         string    `db:"id" json:"id"`
	RuleCode   string    `db:"rule_code" json:"ruleCode"`
	RuleType   RuleType  `db:"rule_type" json:"ruleType"`
	Points     int       `db:"points" json:"points"`
	Quantity   int       `db:"quantity" json:"quantity"`
	StudentID  string    `db:"student_id" json:"studentId"`
	ClassID    string    `db:"class_id" json:"classId"`
	EventDate  time.Time `db:"event_date" json:"eventDate"`
	CreatedBy  string    `db:"created_by" json:"createdBy"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	SchoolYear int       `db:"school_year" json:"schoolYear"`
	Week       *int      `db:"week" json:"week"`
	Note       string    `db:"note" json:"note,omitempty"`
	CorrectsID *string   `db:"corrects_id" json:"correctsId,omitempty"`
}

type NewRecord struct {
	RuleCode  string    `json:"ruleCode" validate:"required,max=16"`
	StudentID string    `json:"studentId" validate:"required,uuid"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=50"`
	EventDate time.Time `json:"eventDate" validate:"required"`
	Note      string    `json:"note" validate:"max=500"`
}

type NewCorrection struct {
	Note string `json:"note" validate:"required,max=500"`
}

type RecordFilter struct {
	WeekKey   string
	ClassIDs  []string
	StudentID string
	Limit     int
}

//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/school-discipline/internal/db"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/ranking"
	"github.com/Spok95/school-discipline/internal/rules"
	"github.com/Spok95/school-discipline/internal/testutil/testdb"
)

var ict = time.FixedZone("UTC+7", 7*3600)

func start(t testing.TB) (*testdb.DBHandle, *db.Store) {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Store.SeedRulesIfEmpty(context.Background(), rules.Catalog()); err != nil {
		t.Fatal(err)
	}
	return h, h.Store
}

func mustClass(t testing.TB, s *db.Store, grade int, name string) *models.Class {
	t.Helper()
	c, err := s.CreateClass(context.Background(), models.NewClass{Grade: grade, Name: name})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustStudent(t testing.TB, s *db.Store, classID, schoolID string) *models.Student {
	t.Helper()
	st, err := s.CreateStudent(context.Background(), models.NewStudent{
		SchoolID: schoolID, FullName: "Student " + schoolID, ClassID: classID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func newRecord(studentID string, rt models.RuleType, points, w int) *models.Record {
	return &models.Record{
		ID:         ids.New(),
		RuleCode:   "VP001",
		RuleType:   rt,
		Points:     points,
		Quantity:   1,
		StudentID:  studentID,
		EventDate:  time.Date(2025, 9, 3, 9, 0, 0, 0, ict),
		CreatedBy:  "tester",
		SchoolYear: 2025,
		Week:       &w,
	}
}

// snapshot builds locked rows the way the rankings service does.
func snapshot(weekKey string, grade int) func([]models.Class, []models.Record) []models.WeeklyRanking {
	return func(roster []models.Class, recs []models.Record) []models.WeeklyRanking {
		var out []models.WeeklyRanking
		for _, x := range ranking.Compute(roster, recs) {
			out = append(out, models.WeeklyRanking{
				WeekKey: weekKey, Grade: grade, ClassID: x.ClassID, ClassName: x.ClassName,
				Merit: x.Merit, Demerit: x.Demerit, Total: x.Total, Rank: x.Rank, LockedAt: time.Now(),
			})
		}
		return out
	}
}

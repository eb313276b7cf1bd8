package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/models"
)

func TestCreateRecord(t *testing.T) {
	f := newFixture()
	sess := session(models.RoleTeacher)

	rec, err := f.records.CreateRecord(context.Background(), sess, models.NewRecord{
		RuleCode: "VP001", StudentID: f.sa.ID, Quantity: 3, EventDate: at(2025, 10, 8),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Points != -6 || rec.RuleType != models.Demerit {
		t.Fatalf("points = %d (%s)", rec.Points, rec.RuleType)
	}
	if rec.ClassID != f.a.ID || rec.CreatedBy != sess.Subject {
		t.Fatalf("snapshot: %+v", rec)
	}
	if rec.Week == nil || *rec.Week != 6 || rec.SchoolYear != 2025 {
		t.Fatalf("week = %v year = %d", rec.Week, rec.SchoolYear)
	}
	c, _ := f.store.GetClass(context.Background(), f.a.ID)
	if c.Demerit != 6 {
		t.Fatalf("class demerit = %d", c.Demerit)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != "2025-W06/10" {
		t.Fatalf("invalidated = %v", f.cache.invalidated)
	}
}

func TestCreateRecord_Rejects(t *testing.T) {
	f := newFixture()
	ok := models.NewRecord{RuleCode: "KT001", StudentID: f.sa.ID, Quantity: 1, EventDate: at(2025, 10, 8)}

	cases := []struct {
		name  string
		role  models.Role
		mod   func(*models.NewRecord)
		want  error
		field string
	}{
		{"no role", models.RoleNone, func(*models.NewRecord) {}, apperr.ErrPermission, ""},
		{"viewer admin", models.RolePrincipal, func(*models.NewRecord) {}, apperr.ErrPermission, ""},
		{"unknown rule", models.RoleTeacher, func(r *models.NewRecord) { r.RuleCode = "XX999" }, apperr.ErrValidation, "ruleCode"},
		{"quantity", models.RoleTeacher, func(r *models.NewRecord) { r.Quantity = 51 }, apperr.ErrValidation, "quantity"},
		{"unknown student", models.RoleTeacher, func(r *models.NewRecord) { r.StudentID = "0190b3c4-6a2e-7c1d-9f00-aa11bb22cc33" }, apperr.ErrValidation, "studentId"},
		{"future", models.RoleTeacher, func(r *models.NewRecord) { r.EventDate = fixedNow.Add(24 * time.Hour) }, apperr.ErrValidation, "eventDate"},
		{"summer break", models.RoleTeacher, func(r *models.NewRecord) { r.EventDate = at(2025, 7, 10) }, apperr.ErrValidation, "eventDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := ok
			tc.mod(&in)
			_, err := f.records.CreateRecord(context.Background(), session(tc.role), in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			var verr *apperr.ValidationError
			if tc.field != "" && (!errors.As(err, &verr) || verr.Fields[0].Field != tc.field) {
				t.Fatalf("want field %q, got %v", tc.field, err)
			}
		})
	}
	if len(f.store.Records) != 0 {
		t.Fatalf("rejected input stored %d records", len(f.store.Records))
	}
}

func TestCreateRecord_LockedWeek(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.rankings.Finalize(ctx, session(models.RoleAdmin), "2025-W06", 10); err != nil {
		t.Fatal(err)
	}
	_, err := f.records.CreateRecord(ctx, session(models.RoleTeacher), models.NewRecord{
		RuleCode: "KT001", StudentID: f.sa.ID, Quantity: 1, EventDate: at(2025, 10, 9),
	})
	if !errors.Is(err, apperr.ErrWeekLocked) {
		t.Fatalf("want ErrWeekLocked, got %v", err)
	}
}

func TestListRecords_HomeroomScope(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	teacher := session(models.RoleTeacher)
	for _, st := range []*models.Student{f.sa, f.sb} {
		if _, err := f.records.CreateRecord(ctx, teacher, models.NewRecord{
			RuleCode: "KT001", StudentID: st.ID, Quantity: 1, EventDate: at(2025, 10, 8),
		}); err != nil {
			t.Fatal(err)
		}
	}

	homeroom := session(models.RoleHomeroomTeacher, f.a.ID)
	got, err := f.records.ListRecords(ctx, homeroom, models.RecordFilter{WeekKey: "2025-W06"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ClassID != f.a.ID {
		t.Fatalf("homeroom sees %d records", len(got))
	}

	// просит чужой класс: получает пусто, а не ошибку
	got, _ = f.records.ListRecords(ctx, homeroom, models.RecordFilter{ClassIDs: []string{f.b.ID}})
	if len(got) != 0 {
		t.Fatalf("foreign class leaked %d records", len(got))
	}

	got, _ = f.records.ListRecords(ctx, session(models.RoleSupervisor), models.RecordFilter{})
	if len(got) != 2 {
		t.Fatalf("supervisor sees %d records", len(got))
	}

	if _, err := f.records.ListRecords(ctx, teacher, models.RecordFilter{}); !errors.Is(err, apperr.ErrPermission) {
		t.Fatalf("plain teacher: %v", err)
	}
	if _, err := f.records.ListRecords(ctx, homeroom, models.RecordFilter{WeekKey: "W6"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad week key: %v", err)
	}
}

func TestGetRecord_HiddenOutsideScope(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	rec, err := f.records.CreateRecord(ctx, session(models.RoleTeacher), models.NewRecord{
		RuleCode: "KT001", StudentID: f.sb.ID, Quantity: 1, EventDate: at(2025, 10, 8),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.records.GetRecord(ctx, session(models.RoleHomeroomTeacher, f.a.ID), rec.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := f.records.GetRecord(ctx, session(models.RoleHomeroomTeacher, f.b.ID), rec.ID); err != nil {
		t.Fatal(err)
	}
}

func TestCreateCorrection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	orig, err := f.records.CreateRecord(ctx, session(models.RoleTeacher), models.NewRecord{
		RuleCode: "VP001", StudentID: f.sa.ID, Quantity: 2, EventDate: at(2025, 10, 8),
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.records.CreateCorrection(ctx, session(models.RoleTeacher), orig.ID, models.NewCorrection{Note: "wrong student"}); !errors.Is(err, apperr.ErrPermission) {
		t.Fatalf("teacher correction: %v", err)
	}

	proctor := session(models.RoleProctor)
	fix, err := f.records.CreateCorrection(ctx, proctor, orig.ID, models.NewCorrection{Note: "wrong student"})
	if err != nil {
		t.Fatal(err)
	}
	if fix.Points != 4 || fix.CorrectsID == nil || *fix.CorrectsID != orig.ID || fix.ClassID != f.a.ID {
		t.Fatalf("correction = %+v", fix)
	}
	if *fix.Week != *orig.Week {
		t.Fatal("correction must land in the original week")
	}
	c, _ := f.store.GetClass(ctx, f.a.ID)
	if c.Demerit != 0 {
		t.Fatalf("class demerit after correction = %d", c.Demerit)
	}

	if _, err := f.records.CreateCorrection(ctx, proctor, fix.ID, models.NewCorrection{Note: "again"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("correcting a correction: %v", err)
	}
	if _, err := f.records.CreateCorrection(ctx, proctor, orig.ID, models.NewCorrection{Note: "twice"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second correction: %v", err)
	}
	if _, err := f.records.CreateCorrection(ctx, proctor, orig.ID, models.NewCorrection{}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty note: %v", err)
	}
}

// Package memstore is an in-memory implementation of the service store for tests.
// It mirrors the database semantics that tests rely on: class snapshot on insert,
// counter updates, locked weeks and single corrections.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/week"
)

type Store struct {
	mu       sync.Mutex
	rules    map[string]models.Rule
	classes  map[string]*models.Class
	students map[string]*models.Student
	Records  []models.Record
	Locked   map[string][]models.WeeklyRanking // week/grade
	Users    map[string]*models.User
	Claims   map[string]models.UserClaims

	RuleWrites  int
	ClaimWrites int
}

func New() *Store {
	return &Store{
		rules:    map[string]models.Rule{},
		classes:  map[string]*models.Class{},
		students: map[string]*models.Student{},
		Locked:   map[string][]models.WeeklyRanking{},
		Users:    map[string]*models.User{},
		Claims:   map[string]models.UserClaims{},
	}
}

// LockKey is the Locked map key.
func LockKey(weekKey string, grade int) string { return fmt.Sprintf("%s/%d", weekKey, grade) }

func (m *Store) ListRules(context.Context) ([]models.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *Store) GetRule(_ context.Context, code string) (*models.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[code]
	if !ok {
		return nil, apperr.NotFound("rule", code)
	}
	return &r, nil
}

func (m *Store) ReplaceRules(_ context.Context, rules []models.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RuleWrites++
	m.rules = map[string]models.Rule{}
	for _, r := range rules {
		m.rules[r.Code] = r
	}
	return nil
}

func (m *Store) CreateClass(_ context.Context, in models.NewClass) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.Grade == in.Grade && c.Name == in.Name {
			return nil, apperr.ErrConflict
		}
	}
	c := &models.Class{ID: ids.New(), Grade: in.Grade, Name: in.Name}
	m.classes[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *Store) GetClass(_ context.Context, id string) (*models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[id]
	if !ok {
		return nil, apperr.NotFound("class", id)
	}
	cp := *c
	return &cp, nil
}

func (m *Store) ListClasses(_ context.Context, grade int) ([]models.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listClasses(grade), nil
}

func (m *Store) listClasses(grade int) []models.Class {
	var out []models.Class
	for _, c := range m.classes {
		if grade == 0 || c.Grade == grade {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Store) ListGrades(context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, c := range m.classes {
		if !slices.Contains(out, c.Grade) {
			out = append(out, c.Grade)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *Store) CreateStudent(_ context.Context, in models.NewStudent) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.classes[in.ClassID]; !ok {
		return nil, apperr.NotFound("class", in.ClassID)
	}
	st := &models.Student{ID: ids.New(), SchoolID: in.SchoolID, FullName: in.FullName, ClassID: in.ClassID}
	m.students[st.ID] = st
	cp := *st
	return &cp, nil
}

func (m *Store) GetStudent(_ context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[id]
	if !ok {
		return nil, apperr.NotFound("student", id)
	}
	cp := *st
	return &cp, nil
}

func (m *Store) ListStudentsByClass(_ context.Context, classID string) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Student
	for _, st := range m.students {
		if st.ClassID == classID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (m *Store) insert(rec *models.Record) error {
	if rec.Week != nil {
		key := week.FormatKey(rec.SchoolYear, *rec.Week)
		for _, rows := range m.Locked {
			for _, r := range rows {
				if r.WeekKey == key && r.ClassID == rec.ClassID {
					return apperr.ErrWeekLocked
				}
			}
		}
	}
	rec.CreatedAt = time.Now()
	m.Records = append(m.Records, *rec)
	dm, dd := 0, 0
	if rec.RuleType == models.Merit {
		dm = rec.Points
	} else {
		dd = -rec.Points
	}
	if st, ok := m.students[rec.StudentID]; ok {
		st.Merit += dm
		st.Demerit += dd
	}
	if c, ok := m.classes[rec.ClassID]; ok {
		c.Merit += dm
		c.Demerit += dd
	}
	return nil
}

func (m *Store) CreateRecord(_ context.Context, rec *models.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.students[rec.StudentID]
	if !ok {
		return apperr.NotFound("student", rec.StudentID)
	}
	rec.ClassID = st.ClassID
	return m.insert(rec)
}

func (m *Store) CreateCorrection(_ context.Context, originalID string, build func(models.Record) (models.Record, error)) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orig *models.Record
	for i := range m.Records {
		if m.Records[i].ID == originalID {
			orig = &m.Records[i]
		}
		if c := m.Records[i].CorrectsID; c != nil && *c == originalID {
			return nil, apperr.ErrConflict
		}
	}
	if orig == nil {
		return nil, apperr.NotFound("record", originalID)
	}
	rec, err := build(*orig)
	if err != nil {
		return nil, err
	}
	if err := m.insert(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *Store) GetRecord(_ context.Context, id string) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("record", id)
}

func (m *Store) ListRecords(_ context.Context, f models.RecordFilter) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listRecords(f), nil
}

func (m *Store) listRecords(f models.RecordFilter) []models.Record {
	var out []models.Record
	for _, r := range m.Records {
		if f.WeekKey != "" && (r.Week == nil || week.FormatKey(r.SchoolYear, *r.Week) != f.WeekKey) {
			continue
		}
		if f.ClassIDs != nil && !slices.Contains(f.ClassIDs, r.ClassID) {
			continue
		}
		if f.StudentID != "" && r.StudentID != f.StudentID {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *Store) LockedRanking(_ context.Context, weekKey string, grade int) ([]models.WeeklyRanking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Locked[LockKey(weekKey, grade)]), nil
}

// SaveLockedRanking reads and writes under the store mutex, so no record can slip in
// between the read and the snapshot.
func (m *Store) SaveLockedRanking(_ context.Context, weekKey string, grade int,
	build func([]models.Class, []models.Record) []models.WeeklyRanking,
) ([]models.WeeklyRanking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Locked[LockKey(weekKey, grade)]; ok {
		return nil, apperr.ErrWeekLocked
	}
	roster := m.listClasses(grade)
	classIDs := make([]string, 0, len(roster))
	for _, c := range roster {
		classIDs = append(classIDs, c.ID)
	}
	rows := build(roster, m.listRecords(models.RecordFilter{WeekKey: weekKey, ClassIDs: classIDs}))
	m.Locked[LockKey(weekKey, grade)] = slices.Clone(rows)
	return rows, nil
}

func (m *Store) LockedGrades(_ context.Context, weekKey string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, rows := range m.Locked {
		if len(rows) > 0 && rows[0].WeekKey == weekKey {
			out = append(out, rows[0].Grade)
		}
	}
	return out, nil
}

func (m *Store) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.Users {
		if x.Email == u.Email {
			return nil, apperr.ErrConflict
		}
	}
	u.IsActive = true
	m.Users[u.ID] = &u
	m.Claims[u.ID] = models.UserClaims{UserID: u.ID, Role: u.Role, AssignedClasses: u.AssignedClasses}
	cp := u
	return &cp, nil
}

func (m *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (m *Store) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.Users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *Store) GetClaims(_ context.Context, userID string) (*models.UserClaims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Claims[userID]
	if !ok {
		return nil, apperr.NotFound("claims", userID)
	}
	return &c, nil
}

func (m *Store) SetClaims(_ context.Context, c models.UserClaims) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[c.UserID]
	if !ok {
		return apperr.NotFound("user", c.UserID)
	}
	m.ClaimWrites++
	u.Role = c.Role
	u.AssignedClasses = c.AssignedClasses
	m.Claims[c.UserID] = c
	return nil
}

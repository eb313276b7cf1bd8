package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/ids"
	"github.com/Spok95/school-discipline/internal/models"
	"github.com/Spok95/school-discipline/internal/ranking"
	"github.com/Spok95/school-discipline/internal/testutil/memstore"
	"github.com/Spok95/school-discipline/internal/week"
)

var (
	ict      = time.FixedZone("UTC+7", 7*3600)
	resolver = week.NewResolver(ict, time.September, 1)
	fixedNow = time.Date(2025, 10, 20, 10, 0, 0, 0, ict)
)

func at(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 9, 0, 0, 0, ict) }

func session(role models.Role, classes ...string) *auth.Session {
	return &auth.Session{Subject: ids.New(), Role: role, AssignedClasses: classes}
}

// spyCache records invalidations and serves whatever was Set.
type spyCache struct {
	mu          sync.Mutex
	data        map[string][]ranking.Standing
	invalidated []string
}

func newSpyCache() *spyCache { return &spyCache{data: map[string][]ranking.Standing{}} }

func (c *spyCache) Get(_ context.Context, weekKey string, grade int) ([]ranking.Standing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.data[memstore.LockKey(weekKey, grade)]
	return st, ok
}

func (c *spyCache) Set(_ context.Context, weekKey string, grade int, st []ranking.Standing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[memstore.LockKey(weekKey, grade)] = st
}

func (c *spyCache) Invalidate(_ context.Context, weekKey string, grade int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, memstore.LockKey(weekKey, grade))
	c.invalidated = append(c.invalidated, memstore.LockKey(weekKey, grade))
}

func (c *spyCache) InvalidateGrade(_ context.Context, grade int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	suffix := fmt.Sprintf("/%d", grade)
	for k := range c.data {
		if strings.HasSuffix(k, suffix) {
			delete(c.data, k)
		}
	}
	c.invalidated = append(c.invalidated, "*"+suffix)
}

// fixture: one grade-10 roster with two classes and a student in each.
type fixture struct {
	store    *memstore.Store
	cache    *spyCache
	a, b     *models.Class
	sa, sb   *models.Student
	records  *Records
	rankings *Rankings
	roster   *Roster
}

func newFixture() *fixture {
	ctx := context.Background()
	m := memstore.New()
	_ = m.ReplaceRules(ctx, []models.Rule{
		{Code: "KT001", Category: "Academic", Description: "Helped a classmate", Type: models.Merit, Points: 5},
		{Code: "VP001", Category: "Attendance", Description: "Late", Type: models.Demerit, Points: -2},
	})
	m.RuleWrites = 0
	a, _ := m.CreateClass(ctx, models.NewClass{Grade: 10, Name: "10A1"})
	b, _ := m.CreateClass(ctx, models.NewClass{Grade: 10, Name: "10A2"})
	sa, _ := m.CreateStudent(ctx, models.NewStudent{SchoolID: "S1", FullName: "An", ClassID: a.ID})
	sb, _ := m.CreateStudent(ctx, models.NewStudent{SchoolID: "S2", FullName: "Binh", ClassID: b.ID})

	c := newSpyCache()
	rec := NewRecords(m, resolver, c, nil)
	rec.now = func() time.Time { return fixedNow }
	rk := NewRankings(m, resolver, c, nil)
	rk.now = func() time.Time { return fixedNow }
	return &fixture{store: m, cache: c, a: a, b: b, sa: sa, sb: sb, records: rec, rankings: rk, roster: NewRoster(m, c, nil)}
}

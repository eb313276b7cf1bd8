// Package ranking turns one week's records into per-class standings.
//
// Merit is the sum of points of merit records; demerit is the magnitude of the sum of
// points of demerit records (demerit points are stored negative, offsetting corrections
// positive); total = merit − demerit. Classes are ordered by total descending, then by
// display name (case-insensitive), then by id. Equal totals share a rank ("1224").
package ranking

import (
	"sort"
	"strings"

	"github.com/Spok95/school-discipline/internal/models"
)

type Standing struct {
	ClassID   string `json:"classId"`
	ClassName string `json:"className"`
	Grade     int    `json:"grade"`
	Merit     int    `json:"merit"`
	Demerit   int    `json:"demerit"`
	Total     int    `json:"total"`
	Rank      int    `json:"rank"`
}

// Aggregate sums records per class of the roster. Every roster class appears in the
// result, with zeros when it has no records; records of classes outside the roster are
// ignored. The result is not ranked.
func Aggregate(roster []models.Class, records []models.Record) []Standing {
	idx := make(map[string]int, len(roster))
	out := make([]Standing, len(roster))
	for i, c := range roster {
		idx[c.ID] = i
		out[i] = Standing{ClassID: c.ID, ClassName: c.Name, Grade: c.Grade}
	}
	for _, r := range records {
		i, ok := idx[r.ClassID]
		if !ok {
			continue
		}
		switch r.RuleType {
		case models.Merit:
			out[i].Merit += r.Points
		case models.Demerit:
			out[i].Demerit -= r.Points
		}
	}
	for i := range out {
		out[i].Total = out[i].Merit - out[i].Demerit
	}
	return out
}

// Rank sorts standings in place and assigns competition ranks.
func Rank(st []Standing) []Standing {
	sort.SliceStable(st, func(i, j int) bool { return less(st[i], st[j]) })
	for i := range st {
		if i > 0 && st[i].Total == st[i-1].Total {
			st[i].Rank = st[i-1].Rank
			continue
		}
		st[i].Rank = i + 1
	}
	return st
}

// Compute = Aggregate + Rank.
func Compute(roster []models.Class, records []models.Record) []Standing {
	return Rank(Aggregate(roster, records))
}

func less(a, b Standing) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	an, bn := strings.ToLower(a.ClassName), strings.ToLower(b.ClassName)
	if an != bn {
		return an < bn
	}
	return a.ClassID < b.ClassID
}

type Totals struct {
	Merit   int `json:"merit"`
	Demerit int `json:"demerit"`
	Total   int `json:"total"`
}

func Sum(st []Standing) Totals {
	var t Totals
	for _, s := range st {
		t.Merit += s.Merit
		t.Demerit += s.Demerit
		t.Total += s.Total
	}
	return t
}

// FromSnapshot converts locked rows back to standings, keeping their stored ranks.
func FromSnapshot(rows []models.WeeklyRanking) []Standing {
	out := make([]Standing, 0, len(rows))
	for _, r := range rows {
		out = append(out, Standing{
			ClassID: r.ClassID, ClassName: r.ClassName, Grade: r.Grade,
			Merit: r.Merit, Demerit: r.Demerit, Total: r.Total, Rank: r.Rank,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return less(out[i], out[j])
	})
	return out
}

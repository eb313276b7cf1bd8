package ranking

import (
	"math/rand"
	"testing"

	"github.com/Spok95/school-discipline/internal/models"
)

func class(id, name string) models.Class { return models.Class{ID: id, Name: name, Grade: 10} }

func rec(classID string, t models.RuleType, points int) models.Record {
	return models.Record{ClassID: classID, RuleType: t, Points: points}
}

func TestAggregate_MeritQuantity(t *testing.T) {
	// rule {merit, 5} applied with quantity 2 → 10 points
	roster := []models.Class{class("c1", "10A1")}
	got := Compute(roster, []models.Record{{ClassID: "c1", RuleType: models.Merit, Quantity: 2, Points: 2 * 5}})
	if got[0].Merit != 10 || got[0].Demerit != 0 || got[0].Total != 10 {
		t.Fatalf("got %+v", got[0])
	}
}

func TestAggregate_EmptyClassStillListed(t *testing.T) {
	roster := []models.Class{class("c1", "10A1"), class("c2", "10A2")}
	got := Compute(roster, []models.Record{rec("c1", models.Demerit, -3)})
	if len(got) != 2 {
		t.Fatalf("expected both classes, got %d", len(got))
	}
	var empty Standing
	for _, s := range got {
		if s.ClassID == "c2" {
			empty = s
		}
	}
	if empty.ClassID == "" || empty.Merit != 0 || empty.Demerit != 0 || empty.Total != 0 {
		t.Fatalf("class without records: %+v", empty)
	}
	if got[0].ClassID != "c2" {
		t.Fatalf("0 beats -3, order = %+v", got)
	}
}

func TestAggregate_CorrectionsAndForeignClasses(t *testing.T) {
	roster := []models.Class{class("c1", "10A1")}
	got := Aggregate(roster, []models.Record{
		rec("c1", models.Demerit, -4),
		rec("c1", models.Demerit, 4), // offsetting correction
		rec("c1", models.Merit, 6),
		rec("c1", models.Merit, -2), // offsetting correction
		rec("zz", models.Merit, 100),
	})
	if got[0].Merit != 4 || got[0].Demerit != 0 || got[0].Total != 4 {
		t.Fatalf("got %+v", got[0])
	}
}

func TestRank_TieBreakByName(t *testing.T) {
	st := []Standing{
		{ClassID: "3", ClassName: "10a3", Total: 5},
		{ClassID: "1", ClassName: "10A1", Total: 5},
		{ClassID: "2", ClassName: "10A2", Total: 9},
		{ClassID: "4", ClassName: "10A4", Total: 1},
	}
	got := Rank(st)
	wantIDs := []string{"2", "1", "3", "4"}
	wantRanks := []int{1, 2, 2, 4}
	for i := range got {
		if got[i].ClassID != wantIDs[i] || got[i].Rank != wantRanks[i] {
			t.Fatalf("pos %d: got %s rank %d, want %s rank %d", i, got[i].ClassID, got[i].Rank, wantIDs[i], wantRanks[i])
		}
	}
}

func TestSum_TotalsInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	roster := []models.Class{class("a", "A"), class("b", "B"), class("c", "C")}
	for iter := 0; iter < 200; iter++ {
		var recs []models.Record
		for i := 0; i < rnd.Intn(40); i++ {
			cid := roster[rnd.Intn(len(roster))].ID
			if rnd.Intn(2) == 0 {
				recs = append(recs, rec(cid, models.Merit, 1+rnd.Intn(10)))
			} else {
				recs = append(recs, rec(cid, models.Demerit, -(1+rnd.Intn(10))))
			}
		}
		sum := Sum(Compute(roster, recs))
		if sum.Total != sum.Merit-sum.Demerit {
			t.Fatalf("iter %d: total %d != merit %d - demerit %d", iter, sum.Total, sum.Merit, sum.Demerit)
		}
	}
}

func TestFromSnapshot_KeepsStoredRanks(t *testing.T) {
	rows := []models.WeeklyRanking{
		{ClassID: "b", ClassName: "B", Total: 1, Rank: 2},
		{ClassID: "a", ClassName: "A", Total: 3, Rank: 1},
	}
	got := FromSnapshot(rows)
	if got[0].ClassID != "a" || got[1].Rank != 2 {
		t.Fatalf("got %+v", got)
	}
}

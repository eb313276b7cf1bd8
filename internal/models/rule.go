package models

type RuleType string

const (
	Merit   RuleType = "merit"
	Demerit RuleType = "demerit"
)

func (t RuleType) Valid() bool { return t == Merit || t == Demerit }

// Rule: справочное правило. Баллы хранятся со знаком:
// поощрение > 0, нарушение < 0.
type Rule struct {
	Code        string   `db:"code" json:"code"`
	Category    string   `db:"category" json:"category"`
	Description string   `db:"description" json:"description"`
	Type        RuleType `db:"type" json:"type"`
	Points      int      `db:"points" json:"points"`
}

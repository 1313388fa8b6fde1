package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Plan is a training program. StudentID is nil for templates not yet assigned to anyone.
type Plan struct {
	bun.BaseModel `bun:"table:plans,alias:p" bson:"-" json:"-"`

	ID          string     `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	TrainerID   string     `bun:"trainer_id,notnull,type:uuid" bson:"trainerId" json:"trainerId"`
	StudentID   *string    `bun:"student_id,type:uuid" bson:"studentId,omitempty" json:"studentId,omitempty"`
	Name        string     `bun:"name,notnull" bson:"name" json:"name"`
	Description string     `bun:"description" bson:"description,omitempty" json:"description,omitempty"`
	Goal        string     `bun:"goal" bson:"goal,omitempty" json:"goal,omitempty"`
	StartDate   *time.Time `bun:"start_date" bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time `bun:"end_date" bson:"endDate,omitempty" json:"endDate,omitempty"`
	IsActive    bool       `bun:"is_active,notnull" bson:"isActive" json:"isActive"`
	PublicToken *string    `bun:"public_token,unique" bson:"publicToken,omitempty" json:"publicToken,omitempty"`
	SharedAt    *time.Time `bun:"shared_at" bson:"sharedAt,omitempty" json:"sharedAt,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// IsShared reports whether the plan currently has a public link.
func (p *Plan) IsShared() bool {
	return p.PublicToken != nil && *p.PublicToken != ""
}

// PlanTree is a plan with its days, blocks and items loaded and ordered by position.
type PlanTree struct {
	Plan Plan
	Days []DayTree
}

// DayTree is one day of a PlanTree.
type DayTree struct {
	Day    PlanDay
	Blocks []BlockTree
}

// BlockTree is one block of a DayTree.
type BlockTree struct {
	Block PlanBlock
	Items []PlanItem
}

// Progress returns the whole-number percentage of completed days.
func (t *PlanTree) Progress() int {
	days := make([]PlanDay, len(t.Days))
	for i, d := range t.Days {
		days[i] = d.Day
	}
	return PlanProgress(days)
}

// PlanProgress is floor(100 * completed / total), and 0 for a plan with no days.
func PlanProgress(days []PlanDay) int {
	if len(days) == 0 {
		return 0
	}
	completed := 0
	for _, d := range days {
		if d.IsCompleted() {
			completed++
		}
	}
	return completed * 100 / len(days)
}

// BuildPlanTree groups flat day/block/item rows under their parents. Rows whose parent is
// missing are dropped.
func BuildPlanTree(plan Plan, days []PlanDay, blocks []PlanBlock, items []PlanItem) PlanTree {
	SortDays(days)
	SortBlocks(blocks)
	SortItems(items)

	itemsByBlock := make(map[string][]PlanItem)
	for _, it := range items {
		itemsByBlock[it.BlockID] = append(itemsByBlock[it.BlockID], it)
	}
	blocksByDay := make(map[string][]BlockTree)
	for _, b := range blocks {
		blocksByDay[b.DayID] = append(blocksByDay[b.DayID], BlockTree{Block: b, Items: itemsByBlock[b.ID]})
	}

	tree := PlanTree{Plan: plan, Days: make([]DayTree, 0, len(days))}
	for _, d := range days {
		tree.Days = append(tree.Days, DayTree{Day: d, Blocks: blocksByDay[d.ID]})
	}
	return tree
}

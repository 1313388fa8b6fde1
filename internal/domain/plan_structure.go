package domain

import (
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// PlanDay is one training day of a plan. Completion drives the plan's progress.
type PlanDay struct {
	bun.BaseModel `bun:"table:plan_days,alias:pd" bson:"-" json:"-"`

	ID          string     `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	PlanID      string     `bun:"plan_id,notnull,type:uuid" bson:"planId" json:"planId"`
	TrainerID   string     `bun:"trainer_id,notnull,type:uuid" bson:"trainerId" json:"trainerId"`
	Title       string     `bun:"title,notnull" bson:"title" json:"title"`
	Position    int        `bun:"position,notnull" bson:"position" json:"position"`
	Weekday     *int       `bun:"weekday" bson:"weekday,omitempty" json:"weekday,omitempty"` // 1 (Mon) - 7 (Sun)
	Notes       string     `bun:"notes" bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt *time.Time `bun:"completed_at" bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

func (d *PlanDay) IsCompleted() bool {
	return d.CompletedAt != nil
}

// PlanBlock groups exercises inside a day, e.g. "Warm-up" or "Superset A".
type PlanBlock struct {
	bun.BaseModel `bun:"table:plan_blocks,alias:pb" bson:"-" json:"-"`

	ID        string    `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	DayID     string    `bun:"day_id,notnull,type:uuid" bson:"dayId" json:"dayId"`
	PlanID    string    `bun:"plan_id,notnull,type:uuid" bson:"planId" json:"planId"`
	TrainerID string    `bun:"trainer_id,notnull,type:uuid" bson:"trainerId" json:"trainerId"`
	Title     string    `bun:"title,notnull" bson:"title" json:"title"`
	Kind      string    `bun:"kind" bson:"kind,omitempty" json:"kind,omitempty"`
	Position  int       `bun:"position,notnull" bson:"position" json:"position"`
	Notes     string    `bun:"notes" bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

// PlanItem is a single prescribed exercise.
type PlanItem struct {
	bun.BaseModel `bun:"table:plan_items,alias:pi" bson:"-" json:"-"`

	ID        string    `bun:"id,pk,type:uuid" bson:"_id" json:"id"`
	BlockID   string    `bun:"block_id,notnull,type:uuid" bson:"blockId" json:"blockId"`
	DayID     string    `bun:"day_id,notnull,type:uuid" bson:"dayId" json:"dayId"`
	PlanID    string    `bun:"plan_id,notnull,type:uuid" bson:"planId" json:"planId"`
	TrainerID string    `bun:"trainer_id,notnull,type:uuid" bson:"trainerId" json:"trainerId"`
	Exercise  string    `bun:"exercise,notnull" bson:"exercise" json:"exercise"`
	Sets      *int      `bun:"sets" bson:"sets,omitempty" json:"sets,omitempty"`
	Reps      string    `bun:"reps" bson:"reps,omitempty" json:"reps,omitempty"`         // "8-12", "AMRAP"
	Load      string    `bun:"load" bson:"load,omitempty" json:"load,omitempty"`         // "60kg", "RPE 8"
	Rest      string    `bun:"rest" bson:"rest,omitempty" json:"rest,omitempty"`         // "90s"
	Tempo     string    `bun:"tempo" bson:"tempo,omitempty" json:"tempo,omitempty"`      // "3-1-1-0"
	Duration  string    `bun:"duration" bson:"duration,omitempty" json:"duration,omitempty"`
	VideoURL  string    `bun:"video_url" bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Notes     string    `bun:"notes" bson:"notes,omitempty" json:"notes,omitempty"`
	Position  int       `bun:"position,notnull" bson:"position" json:"position"`
	CreatedAt time.Time `bun:"created_at,notnull" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" bson:"updatedAt" json:"updatedAt"`
}

func SortDays(days []PlanDay) {
	sort.SliceStable(days, func(i, j int) bool { return days[i].Position < days[j].Position })
}

func SortBlocks(blocks []PlanBlock) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Position < blocks[j].Position })
}

func SortItems(items []PlanItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
}

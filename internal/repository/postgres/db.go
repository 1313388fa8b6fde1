package postgres

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Setup opens a PostgreSQL connection and verifies it with a ping.
func Setup(ctx context.Context, dsn string, debug bool) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

// NewRepositories wires every table-backed repository against db.
func NewRepositories(db *bun.DB) repository.Repositories {
	return repository.Repositories{
		Trainers: NewTrainerRepository(db),
		Students: NewStudentRepository(db),
		Plans:    NewPlanRepository(db),
		Days:     NewPlanDayRepository(db),
		Blocks:   NewPlanBlockRepository(db),
		Items:    NewPlanItemRepository(db),
		Payments: NewPaymentRepository(db),
	}
}

type tableSpec struct {
	model       interface{}
	foreignKeys []string
}

// CreateTables creates all tables in dependency order, with foreign keys, then the indexes.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []tableSpec{
		{model: (*domain.Trainer)(nil)},
		{model: (*domain.Student)(nil), foreignKeys: []string{
			`("trainer_id") REFERENCES "trainers" ("id") ON DELETE CASCADE`,
		}},
		{model: (*domain.Plan)(nil), foreignKeys: []string{
			`("trainer_id") REFERENCES "trainers" ("id") ON DELETE CASCADE`,
			`("student_id") REFERENCES "students" ("id") ON DELETE SET NULL`,
		}},
		{model: (*domain.PlanDay)(nil), foreignKeys: []string{
			`("plan_id") REFERENCES "plans" ("id") ON DELETE CASCADE`,
		}},
		{model: (*domain.PlanBlock)(nil), foreignKeys: []string{
			`("day_id") REFERENCES "plan_days" ("id") ON DELETE CASCADE`,
		}},
		{model: (*domain.PlanItem)(nil), foreignKeys: []string{
			`("block_id") REFERENCES "plan_blocks" ("id") ON DELETE CASCADE`,
		}},
		{model: (*domain.Payment)(nil), foreignKeys: []string{
			`("trainer_id") REFERENCES "trainers" ("id") ON DELETE CASCADE`,
			`("student_id") REFERENCES "students" ("id") ON DELETE CASCADE`,
			`("plan_id") REFERENCES "plans" ("id") ON DELETE SET NULL`,
		}},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", t.model, err)
		}
	}

	indexes := []struct {
		model   interface{}
		name    string
		columns []string
	}{
		{(*domain.Student)(nil), "students_trainer_name_idx", []string{"trainer_id", "name"}},
		{(*domain.Plan)(nil), "plans_trainer_student_idx", []string{"trainer_id", "student_id"}},
		{(*domain.PlanDay)(nil), "plan_days_plan_idx", []string{"plan_id", "position"}},
		{(*domain.PlanBlock)(nil), "plan_blocks_day_idx", []string{"day_id", "position"}},
		{(*domain.PlanItem)(nil), "plan_items_block_idx", []string{"block_id", "position"}},
		{(*domain.Payment)(nil), "payments_trainer_due_idx", []string{"trainer_id", "due_date"}},
		{(*domain.Payment)(nil), "payments_trainer_status_idx", []string{"trainer_id", "status"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists().Exec(ctx)
		if err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}
	return nil
}

// validID reports whether id can be compared against a uuid column. Anything else makes
// PostgreSQL fail the whole statement with invalid_text_representation.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// notFound maps sql.ErrNoRows, and ids PostgreSQL cannot parse (22P02), to the repository sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) && pgErr.Field('C') == "22P02" {
		return repository.ErrNotFound
	}
	return err
}

// isUniqueViolation reports a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

// mustAffect turns "no rows touched" into ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return notFound(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// paginate applies limit/offset unless the page is unbounded.
func paginate(q *bun.SelectQuery, p domain.Page) *bun.SelectQuery {
	if p.Unbounded() {
		return q
	}
	return q.Limit(p.Size).Offset(p.Offset())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds an ILIKE substring pattern, escaping the wildcards in s.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

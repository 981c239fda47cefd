package persistence

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/pkg/composables"
)

//go:embed schema/orgnav-schema.sql
var schemaSQL string

const (
	selectUnitsSQL       = `SELECT id, name, short_name, parent_id, kind FROM orgnav_units ORDER BY id`
	selectPositionsSQL   = `SELECT id, unit_id, name FROM orgnav_positions ORDER BY id`
	selectPeopleSQL      = `SELECT id, first_name, last_name1, last_name2, doc_number FROM orgnav_people ORDER BY id`
	selectAssignmentsSQL = `SELECT person_id, position_id FROM orgnav_assignments ORDER BY id`
	truncateSQL          = `TRUNCATE orgnav_assignments, orgnav_people, orgnav_positions, orgnav_units RESTART IDENTITY`
)

// EntityRepository reads the navigation dataset from Postgres.
// It uses the transaction or pool found in the context, falling back to its own pool.
type EntityRepository struct {
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

func (r *EntityRepository) withPool(ctx context.Context) context.Context {
	if _, err := composables.UsePool(ctx); err == nil || r.pool == nil {
		return ctx
	}
	return composables.WithPool(ctx, r.pool)
}

func (r *EntityRepository) EnsureSchema(ctx context.Context) error {
	tx, err := composables.UseTx(r.withPool(ctx))
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply orgnav schema")
	}
	return nil
}

func (r *EntityRepository) LoadDataset(ctx context.Context) (*entities.Dataset, error) {
	tx, err := composables.UseTx(r.withPool(ctx))
	if err != nil {
		return nil, err
	}

	units, err := queryAll(ctx, tx, selectUnitsSQL, func(row pgx.CollectableRow) (entities.Unit, error) {
		var u entities.Unit
		var kind int16
		err := row.Scan(&u.ID, &u.Name, &u.ShortName, &u.ParentID, &kind)
		u.Kind = entities.UnitKind(kind)
		return u, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "load units")
	}
	positions, err := queryAll(ctx, tx, selectPositionsSQL, func(row pgx.CollectableRow) (entities.Position, error) {
		var p entities.Position
		err := row.Scan(&p.ID, &p.UnitID, &p.Name)
		return p, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "load positions")
	}
	people, err := queryAll(ctx, tx, selectPeopleSQL, func(row pgx.CollectableRow) (entities.Person, error) {
		var p entities.Person
		err := row.Scan(&p.ID, &p.FirstName, &p.LastName1, &p.LastName2, &p.DocNumber)
		return p, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "load people")
	}
	assignments, err := queryAll(ctx, tx, selectAssignmentsSQL, func(row pgx.CollectableRow) (entities.Assignment, error) {
		var a entities.Assignment
		err := row.Scan(&a.PersonID, &a.PositionID)
		return a, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "load assignments")
	}

	return validated(entities.NewDataset(units, positions, people, assignments))
}

func queryAll[T any](ctx context.Context, tx composables.Tx, sql string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}

// ReplaceDataset swaps the stored dataset for d in one transaction.
func (r *EntityRepository) ReplaceDataset(ctx context.Context, d *entities.Dataset) error {
	if _, err := validated(d); err != nil {
		return err
	}
	return composables.InTx(r.withPool(ctx), func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(txCtx, truncateSQL); err != nil {
			return errors.Wrap(err, "truncate orgnav tables")
		}
		if err := copyRows(txCtx, tx, "orgnav_units", []string{"id", "name", "short_name", "parent_id", "kind"}, d.Units, func(u entities.Unit) []any {
			return []any{u.ID, u.Name, u.ShortName, u.ParentID, int16(u.Kind)}
		}); err != nil {
			return err
		}
		if err := copyRows(txCtx, tx, "orgnav_positions", []string{"id", "unit_id", "name"}, d.Positions, func(p entities.Position) []any {
			return []any{p.ID, p.UnitID, p.Name}
		}); err != nil {
			return err
		}
		if err := copyRows(txCtx, tx, "orgnav_people", []string{"id", "first_name", "last_name1", "last_name2", "doc_number"}, d.People, func(p entities.Person) []any {
			return []any{p.ID, p.FirstName, p.LastName1, p.LastName2, p.DocNumber}
		}); err != nil {
			return err
		}
		return copyRows(txCtx, tx, "orgnav_assignments", []string{"person_id", "position_id"}, d.Assignments, func(a entities.Assignment) []any {
			return []any{a.PersonID, a.PositionID}
		})
	})
}

func copyRows[T any](ctx context.Context, tx composables.Tx, table string, columns []string, items []T, row func(T) []any) error {
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
		return row(items[i]), nil
	}))
	if err != nil {
		return errors.Wrapf(err, "copy %s", table)
	}
	if int(n) != len(items) {
		return fmt.Errorf("copy %s: wrote %d of %d rows", table, n, len(items))
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
)

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// table provides account-scoped CRUD for one entity table.
// Every statement carries account_id = scope.
type table[T any] struct {
	txm    *TxManager
	name   string
	entity string
	cols   []string
}

func newTable[T any](txm *TxManager, name, entity string) table[T] {
	return table[T]{txm: txm, name: name, entity: entity, cols: ExtractDBColumns[T]()}
}

func (t table[T]) querier(ctx context.Context) Querier {
	return t.txm.GetQuerier(ctx)
}

func (t table[T]) scoped(scope account.Scope) squirrel.Eq {
	return squirrel.Eq{"account_id": scope.ID()}
}

func (t table[T]) selectScoped(scope account.Scope) squirrel.SelectBuilder {
	return Builder().Select(t.cols...).From(t.name).Where(t.scoped(scope))
}

// insert writes every tagged column of v. account_id comes from scope.
func (t table[T]) insert(ctx context.Context, scope account.Scope, v *T) error {
	data := StructToMap(v)
	data["account_id"] = scope.ID()

	sql, args, err := Builder().Insert(t.name).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := t.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return t.translate(err, fmt.Sprintf("insert %s", t.name))
	}
	return nil
}

// update overwrites every tagged column except id, account_id and skip.
func (t table[T]) update(ctx context.Context, scope account.Scope, id string, v *T, skip ...string) error {
	data := StructToMap(v)
	delete(data, "id")
	delete(data, "account_id")
	for _, col := range skip {
		delete(data, col)
	}

	return t.exec(ctx, Builder().Update(t.name).SetMap(data).
		Where(t.scoped(scope)).
		Where(squirrel.Eq{"id": id}), id)
}

// exec runs an UPDATE or DELETE that must hit exactly one row.
func (t table[T]) exec(ctx context.Context, q squirrel.Sqlizer, id string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	tag, err := t.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return t.translate(err, fmt.Sprintf("write %s", t.name))
	}
	if tag.RowsAffected() == 0 {
		return t.notFound(id)
	}
	return nil
}

func (t table[T]) set(ctx context.Context, scope account.Scope, id string, values map[string]any) error {
	return t.exec(ctx, Builder().Update(t.name).SetMap(values).
		Where(t.scoped(scope)).
		Where(squirrel.Eq{"id": id}), id)
}

func (t table[T]) deleteByID(ctx context.Context, scope account.Scope, id string) error {
	return t.exec(ctx, Builder().Delete(t.name).
		Where(t.scoped(scope)).
		Where(squirrel.Eq{"id": id}), id)
}

func (t table[T]) notFound(id string) error {
	return apperror.NewNotFound(t.entity, id)
}

func (t table[T]) get(ctx context.Context, scope account.Scope, id string) (*T, error) {
	return t.getWhere(ctx, scope, squirrel.Eq{"id": id}, id)
}

func (t table[T]) getWhere(ctx context.Context, scope account.Scope, where squirrel.Sqlizer, key string) (*T, error) {
	sql, args, err := t.selectScoped(scope).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entity := new(T)
	if err := pgxscan.Get(ctx, t.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", t.entity, err)
	}
	return entity, nil
}

// list returns one page and the total count of rows matching conds.
func (t table[T]) list(ctx context.Context, scope account.Scope, conds []squirrel.Sqlizer, orderBy []string, f domain.ListFilter) ([]*T, int64, error) {
	f = f.Normalize()

	total, err := t.count(ctx, scope, conds...)
	if err != nil {
		return nil, 0, err
	}

	q := t.selectScoped(scope)
	for _, c := range conds {
		q = q.Where(c)
	}
	sql, args, err := q.OrderBy(orderBy...).
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var rows []*T
	if err := pgxscan.Select(ctx, t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.name, err)
	}
	return rows, total, nil
}

// all returns every row matching conds in the given order.
func (t table[T]) all(ctx context.Context, scope account.Scope, conds []squirrel.Sqlizer, orderBy ...string) ([]*T, error) {
	q := t.selectScoped(scope)
	for _, c := range conds {
		q = q.Where(c)
	}
	sql, args, err := q.OrderBy(orderBy...).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []*T
	if err := pgxscan.Select(ctx, t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return rows, nil
}

func (t table[T]) count(ctx context.Context, scope account.Scope, conds ...squirrel.Sqlizer) (int64, error) {
	q := Builder().Select("COUNT(*)").From(t.name).Where(t.scoped(scope))
	for _, c := range conds {
		q = q.Where(c)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := t.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

// latestNumber returns col of the most recently created row, or "".
func (t table[T]) latestNumber(ctx context.Context, scope account.Scope, col string) (string, error) {
	sql, args, err := Builder().Select(col).From(t.name).
		Where(t.scoped(scope)).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}
	var numbers []string
	if err := pgxscan.Select(ctx, t.querier(ctx), &numbers, sql, args...); err != nil {
		return "", fmt.Errorf("latest %s number: %w", t.entity, err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

type moneyByKey struct {
	Key   string      `db:"key"`
	Total types.Money `db:"total"`
}

// sumBy runs a grouped money aggregate. q must select "key" and "total".
func (t table[T]) sumBy(ctx context.Context, q squirrel.SelectBuilder) (map[string]types.Money, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build aggregate: %w", err)
	}
	var rows []moneyByKey
	if err := pgxscan.Select(ctx, t.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", t.name, err)
	}
	out := make(map[string]types.Money, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Total
	}
	return out, nil
}

// translate maps constraint violations onto application errors.
func (t table[T]) translate(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return apperror.NewConflict(t.entity + " already exists").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case "23514": // check_violation
			return apperror.NewValidation(t.entity+" violates "+pgErr.ConstraintName).WithCause(err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// search builds an ILIKE match over cols, or nil for an empty search.
func search(s string, cols ...string) squirrel.Sqlizer {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	pattern := "%" + likeEscaper.Replace(s) + "%"
	or := make(squirrel.Or, 0, len(cols))
	for _, c := range cols {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// conds collects non-nil conditions.
type conds []squirrel.Sqlizer

func (c *conds) add(s squirrel.Sqlizer) {
	if s != nil {
		*c = append(*c, s)
	}
}

func (c *conds) eqIf(col, v string) {
	if v != "" {
		*c = append(*c, squirrel.Eq{col: v})
	}
}

func (c *conds) rangeOf(col string, r domain.DateRange) {
	if r.From != nil {
		*c = append(*c, squirrel.GtOrEq{col: *r.From})
	}
	if r.To != nil {
		*c = append(*c, squirrel.LtOrEq{col: *r.To})
	}
}

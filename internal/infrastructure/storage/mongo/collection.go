package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain"
)

// collection is one account-partitioned collection of T. Every write
// registers its inverse on the compensation journal.
type collection[T any] struct {
	c      *mongo.Collection
	entity string
}

func newCollection[T any](db *mongo.Database, name, entity string) collection[T] {
	return collection[T]{c: db.Collection(name), entity: entity}
}

func scoped(scope account.Scope, f bson.M) bson.M {
	out := bson.M{"account_id": scope.ID()}
	for k, v := range f {
		out[k] = v
	}
	return out
}

func byID(scope account.Scope, id string) bson.M {
	return bson.M{"_id": id, "account_id": scope.ID()}
}

func (c collection[T]) notFound(id string) error {
	return apperror.NewNotFound(c.entity, id)
}

func (c collection[T]) translate(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperror.NewConflict(c.entity + " already exists").WithCause(err)
	}
	return fmt.Errorf("%s %s: %w", op, c.entity, err)
}

// toDoc encodes v through its bson tags into a mutable document.
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c collection[T]) insert(ctx context.Context, scope account.Scope, id string, v *T) error {
	doc, err := toDoc(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.entity, err)
	}
	doc["account_id"] = scope.ID()

	if _, err := c.c.InsertOne(ctx, doc); err != nil {
		return c.translate(err, "insert")
	}
	tx.OnRollback(ctx, "delete "+c.entity, func(ctx context.Context) error {
		_, err := c.c.DeleteOne(ctx, byID(scope, id))
		return err
	})
	return nil
}

func (c collection[T]) findOne(ctx context.Context, filter bson.M, key string, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	v := new(T)
	if err := c.c.FindOne(ctx, filter, opts...).Decode(v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, c.notFound(key)
		}
		return nil, fmt.Errorf("get %s: %w", c.entity, err)
	}
	return v, nil
}

func (c collection[T]) get(ctx context.Context, scope account.Scope, id string) (*T, error) {
	return c.findOne(ctx, byID(scope, id), id)
}

// replace swaps the whole document and registers a restore of the previous one.
func (c collection[T]) replace(ctx context.Context, scope account.Scope, id string, v *T) error {
	doc, err := toDoc(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.entity, err)
	}
	doc["account_id"] = scope.ID()

	var old bson.M
	err = c.c.FindOneAndReplace(ctx, byID(scope, id), doc,
		options.FindOneAndReplace().SetReturnDocument(options.Before)).Decode(&old)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.notFound(id)
	}
	if err != nil {
		return c.translate(err, "replace")
	}
	tx.OnRollback(ctx, "restore "+c.entity, func(ctx context.Context) error {
		_, err := c.c.ReplaceOne(ctx, byID(scope, id), old)
		return err
	})
	return nil
}

// patch sets every field of v except skip. Skipped fields are counters
// that only move through inc, so concurrent increments survive the write.
func (c collection[T]) patch(ctx context.Context, scope account.Scope, id string, v *T, skip ...string) error {
	doc, err := toDoc(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.entity, err)
	}
	strip := func(d bson.M) bson.M {
		delete(d, "_id")
		delete(d, "account_id")
		for _, f := range skip {
			delete(d, f)
		}
		return d
	}

	var old bson.M
	err = c.c.FindOneAndUpdate(ctx, byID(scope, id), bson.M{"$set": strip(doc)},
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&old)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.notFound(id)
	}
	if err != nil {
		return c.translate(err, "update")
	}
	tx.OnRollback(ctx, "restore "+c.entity, func(ctx context.Context) error {
		_, err := c.c.UpdateOne(ctx, byID(scope, id), bson.M{"$set": strip(old)})
		return err
	})
	return nil
}

// set overwrites one field and registers the restore of its previous value.
func (c collection[T]) set(ctx context.Context, scope account.Scope, id, field string, value any) error {
	var old bson.M
	err := c.c.FindOneAndUpdate(ctx, byID(scope, id), bson.M{"$set": bson.M{field: value}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.Before).
			SetProjection(bson.M{field: 1})).Decode(&old)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.notFound(id)
	}
	if err != nil {
		return c.translate(err, "set")
	}
	tx.OnRollback(ctx, "restore "+c.entity+" "+field, func(ctx context.Context) error {
		_, err := c.c.UpdateOne(ctx, byID(scope, id), bson.M{"$set": bson.M{field: old[field]}})
		return err
	})
	return nil
}

// inc atomically adds delta to field. The inverse is an opposite $inc, so
// rollback stays correct when other units moved the same counter meanwhile.
func (c collection[T]) inc(ctx context.Context, scope account.Scope, id, field string, delta int64) error {
	res, err := c.c.UpdateOne(ctx, byID(scope, id), bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return c.translate(err, "increment")
	}
	if res.MatchedCount == 0 {
		return c.notFound(id)
	}
	tx.OnRollback(ctx, "undo "+c.entity+" increment", func(ctx context.Context) error {
		_, err := c.c.UpdateOne(ctx, byID(scope, id), bson.M{"$inc": bson.M{field: -delta}})
		return err
	})
	return nil
}

func (c collection[T]) remove(ctx context.Context, scope account.Scope, id string) error {
	var old bson.M
	err := c.c.FindOneAndDelete(ctx, byID(scope, id)).Decode(&old)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c.notFound(id)
	}
	if err != nil {
		return c.translate(err, "delete")
	}
	tx.OnRollback(ctx, "restore "+c.entity, func(ctx context.Context) error {
		_, err := c.c.InsertOne(ctx, old)
		return err
	})
	return nil
}

// caseInsensitive sorts strings the way lower(col) does.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type sortSpec struct {
	keys    bson.D
	collate bool
}

func byNewest() sortSpec {
	return sortSpec{keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}
}

func byName() sortSpec {
	return sortSpec{keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, collate: true}
}

func (c collection[T]) find(ctx context.Context, filter bson.M, s sortSpec, limit, skip int64) ([]*T, error) {
	opts := options.Find()
	if len(s.keys) > 0 {
		opts.SetSort(s.keys)
	}
	if s.collate {
		opts.SetCollation(caseInsensitive)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cur, err := c.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.entity, err)
	}
	var rows []T
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.entity, err)
	}
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (c collection[T]) list(ctx context.Context, filter bson.M, s sortSpec, f domain.ListFilter) ([]*T, int64, error) {
	f = f.Normalize()
	total, err := c.count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	rows, err := c.find(ctx, filter, s, int64(f.Limit), int64(f.Offset))
	return rows, total, err
}

func (c collection[T]) count(ctx context.Context, filter bson.M) (int64, error) {
	n, err := c.c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.entity, err)
	}
	return n, nil
}

// latest returns field of the most recently created document, or "".
func (c collection[T]) latest(ctx context.Context, scope account.Scope, field string) (string, error) {
	var doc bson.M
	err := c.c.FindOne(ctx, scoped(scope, nil), options.FindOne().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{field: 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest %s: %w", c.entity, err)
	}
	s, _ := doc[field].(string)
	return s, nil
}

type moneyGroup struct {
	Key   string `bson:"_id"`
	Total int64  `bson:"total"`
}

// sumBy runs pipeline, whose last stage must group into {_id, total}.
func (c collection[T]) sumBy(ctx context.Context, pipeline mongo.Pipeline) (map[string]types.Money, error) {
	cur, err := c.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", c.entity, err)
	}
	var rows []moneyGroup
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s aggregate: %w", c.entity, err)
	}
	out := make(map[string]types.Money, len(rows))
	for _, r := range rows {
		out[r.Key] = types.Money(r.Total)
	}
	return out, nil
}

// total sums one field over the documents matching filter.
func (c collection[T]) total(ctx context.Context, filter bson.M, field string) (int64, error) {
	sums, err := c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": "", "total": bson.M{"$sum": "$" + field}}}},
	})
	if err != nil {
		return 0, err
	}
	return int64(sums[""]), nil
}

// search matches any field containing s, case-insensitively.
func search(filter bson.M, s string, fields ...string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	re := bson.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	filter["$or"] = or
}

// op merges a query operator into field, so several bounds can share one field.
func op(filter bson.M, field, operator string, value any) {
	cur, ok := filter[field].(bson.M)
	if !ok {
		cur = bson.M{}
		filter[field] = cur
	}
	cur[operator] = value
}

func eqIf(filter bson.M, field, value string) {
	if value != "" {
		filter[field] = value
	}
}

func rangeOf(filter bson.M, field string, r domain.DateRange) {
	if r.From != nil {
		op(filter, field, "$gte", *r.From)
	}
	if r.To != nil {
		op(filter, field, "$lte", *r.To)
	}
}

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
	"weavebooks/internal/core/tx"
	"weavebooks/internal/core/types"
	"weavebooks/internal/domain/catalogs/category"
	"weavebooks/internal/domain/catalogs/customer"
	"weavebooks/internal/domain/catalogs/item"
	"weavebooks/internal/domain/catalogs/weaver"
	"weavebooks/internal/domain/registers/stock"
)

func activeOnly(filter bson.M, include bool, inactive string) {
	if !include {
		filter["status"] = bson.M{"$ne": inactive}
	}
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	c collection[customer.Customer]
}

func (r *CustomerRepo) Create(ctx context.Context, scope account.Scope, c *customer.Customer) error {
	return r.c.insert(ctx, scope, c.ID, c)
}

func (r *CustomerRepo) Get(ctx context.Context, scope account.Scope, id string) (*customer.Customer, error) {
	return r.c.get(ctx, scope, id)
}

func (r *CustomerRepo) Update(ctx context.Context, scope account.Scope, c *customer.Customer) error {
	return r.c.patch(ctx, scope, c.ID, c, "current_balance", "created_at")
}

func (r *CustomerRepo) List(ctx context.Context, scope account.Scope, f customer.ListFilter) ([]*customer.Customer, int64, error) {
	filter := scoped(scope, nil)
	activeOnly(filter, f.IncludeInactive, customer.StatusInactive)
	search(filter, f.Search, "name", "code", "mobile_number", "contact_number")
	return r.c.list(ctx, filter, byName(), f.ListFilter)
}

func (r *CustomerRepo) AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error {
	return r.c.inc(ctx, scope, id, "current_balance", int64(delta))
}

func (r *CustomerRepo) SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error {
	return r.c.set(ctx, scope, id, "current_balance", int64(value))
}

func (r *CustomerRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "code")
}

func (r *CustomerRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	c collection[category.Category]
}

func (r *CategoryRepo) Create(ctx context.Context, scope account.Scope, c *category.Category) error {
	return r.c.insert(ctx, scope, c.ID, c)
}

func (r *CategoryRepo) Get(ctx context.Context, scope account.Scope, id string) (*category.Category, error) {
	return r.c.get(ctx, scope, id)
}

func (r *CategoryRepo) Update(ctx context.Context, scope account.Scope, c *category.Category) error {
	return r.c.patch(ctx, scope, c.ID, c, "created_at")
}

func (r *CategoryRepo) Delete(ctx context.Context, scope account.Scope, id string) error {
	return r.c.remove(ctx, scope, id)
}

func (r *CategoryRepo) List(ctx context.Context, scope account.Scope, f category.ListFilter) ([]*category.Category, int64, error) {
	filter := scoped(scope, nil)
	eqIf(filter, "status", f.Status)
	search(filter, f.Search, "name", "description")
	return r.c.list(ctx, filter, byName(), f.ListFilter)
}

func (r *CategoryRepo) ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error) {
	filter := scoped(scope, nil)
	filter["name"] = exactName(name)
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.c.count(ctx, filter)
	return n > 0, err
}

// exactName matches name case-insensitively, ignoring surrounding blanks.
func exactName(name string) bson.Regex {
	return bson.Regex{Pattern: `^\s*` + regexp.QuoteMeta(strings.TrimSpace(name)) + `\s*$`, Options: "i"}
}

// WeaverRepo implements weaver.Repository.
type WeaverRepo struct {
	c collection[weaver.Weaver]
}

func (r *WeaverRepo) Create(ctx context.Context, scope account.Scope, w *weaver.Weaver) error {
	return r.c.insert(ctx, scope, w.ID, w)
}

func (r *WeaverRepo) Get(ctx context.Context, scope account.Scope, id string) (*weaver.Weaver, error) {
	return r.c.get(ctx, scope, id)
}

func (r *WeaverRepo) Update(ctx context.Context, scope account.Scope, w *weaver.Weaver) error {
	return r.c.patch(ctx, scope, w.ID, w, "current_balance", "created_at")
}

func (r *WeaverRepo) List(ctx context.Context, scope account.Scope, f weaver.ListFilter) ([]*weaver.Weaver, int64, error) {
	filter := scoped(scope, nil)
	activeOnly(filter, f.IncludeInactive, weaver.StatusInactive)
	search(filter, f.Search, "name", "code", "contact_number")

	order := byName()
	if f.Newest {
		order = byNewest()
	}
	return r.c.list(ctx, filter, order, f.ListFilter)
}

func (r *WeaverRepo) AdjustBalance(ctx context.Context, scope account.Scope, id string, delta types.Money) error {
	return r.c.inc(ctx, scope, id, "current_balance", int64(delta))
}

func (r *WeaverRepo) SetBalance(ctx context.Context, scope account.Scope, id string, value types.Money) error {
	return r.c.set(ctx, scope, id, "current_balance", int64(value))
}

func (r *WeaverRepo) TotalActiveBalance(ctx context.Context, scope account.Scope) (types.Money, error) {
	filter := scoped(scope, nil)
	activeOnly(filter, false, weaver.StatusInactive)
	total, err := r.c.total(ctx, filter, "current_balance")
	return types.Money(total), err
}

func (r *WeaverRepo) LatestNumber(ctx context.Context, scope account.Scope) (string, error) {
	return r.c.latest(ctx, scope, "code")
}

func (r *WeaverRepo) CountAll(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, scoped(scope, nil))
}

// ItemRepo implements item.Repository and the stock ledger's item store.
type ItemRepo struct {
	c collection[item.Item]
}

func (r *ItemRepo) active(scope account.Scope) bson.M {
	filter := scoped(scope, nil)
	activeOnly(filter, false, item.StatusInactive)
	return filter
}

func (r *ItemRepo) Create(ctx context.Context, scope account.Scope, i *item.Item) error {
	return r.c.insert(ctx, scope, i.ID, i)
}

func (r *ItemRepo) Get(ctx context.Context, scope account.Scope, id string) (*item.Item, error) {
	return r.c.get(ctx, scope, id)
}

func (r *ItemRepo) Update(ctx context.Context, scope account.Scope, i *item.Item) error {
	return r.c.patch(ctx, scope, i.ID, i, "current_stock", "created_at")
}

func (r *ItemRepo) List(ctx context.Context, scope account.Scope, f item.ListFilter) ([]*item.Item, int64, error) {
	filter := scoped(scope, nil)
	activeOnly(filter, f.IncludeInactive, item.StatusInactive)
	eqIf(filter, "category", f.Category)
	if f.LowStockOnly {
		filter["$expr"] = bson.M{"$lte": bson.A{"$current_stock", "$reorder_level"}}
	}
	search(filter, f.Search, "name", "sku")

	order := byName()
	if f.Newest {
		order = byNewest()
	}
	return r.c.list(ctx, filter, order, f.ListFilter)
}

func (r *ItemRepo) CountActive(ctx context.Context, scope account.Scope) (int64, error) {
	return r.c.count(ctx, r.active(scope))
}

func (r *ItemRepo) Summary(ctx context.Context, scope account.Scope) (item.Summary, error) {
	items, err := r.c.find(ctx, r.active(scope), sortSpec{}, 0, 0)
	if err != nil {
		return item.Summary{}, err
	}
	var sum item.Summary
	for _, i := range items {
		sum.ActiveCount++
		if i.IsLowStock() {
			sum.LowStockCount++
		}
		sum.StockValue += i.StockValue()
	}
	return sum, nil
}

func (r *ItemRepo) ExistsByName(ctx context.Context, scope account.Scope, name, excludeID string) (bool, error) {
	filter := r.active(scope)
	filter["name"] = exactName(name)
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.c.count(ctx, filter)
	return n > 0, err
}

func (r *ItemRepo) SetStock(ctx context.Context, scope account.Scope, id string, value types.Quantity) error {
	return r.c.set(ctx, scope, id, "current_stock", int64(value))
}

type levelDoc struct {
	ID      string         `bson:"_id"`
	Name    string         `bson:"name"`
	Current types.Quantity `bson:"current_stock"`
}

func (d levelDoc) level() stock.Level {
	return stock.Level{ItemID: d.ID, Name: d.Name, Current: d.Current}
}

var levelProjection = bson.M{"name": 1, "current_stock": 1}

func (r *ItemRepo) StockLevels(ctx context.Context, scope account.Scope, itemIDs []string) (map[string]stock.Level, error) {
	out := make(map[string]stock.Level, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	cur, err := r.c.c.Find(ctx, scoped(scope, bson.M{"_id": bson.M{"$in": itemIDs}}),
		options.Find().SetProjection(levelProjection))
	if err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}
	var docs []levelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock levels: %w", err)
	}
	for _, d := range docs {
		out[d.ID] = d.level()
	}
	return out, nil
}

// AdjustStock guards the $inc with current_stock >= -delta in the same filter.
func (r *ItemRepo) AdjustStock(ctx context.Context, scope account.Scope, itemID string, delta types.Quantity) (stock.Level, bool, error) {
	filter := byID(scope, itemID)
	filter["current_stock"] = bson.M{"$gte": -int64(delta)}

	var doc levelDoc
	err := r.c.c.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"current_stock": int64(delta)}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(levelProjection)).Decode(&doc)

	switch {
	case err == nil:
		tx.OnRollback(ctx, "revert stock "+itemID, func(ctx context.Context) error {
			_, err := r.c.c.UpdateOne(ctx, byID(scope, itemID), bson.M{"$inc": bson.M{"current_stock": -int64(delta)}})
			return err
		})
		return doc.level(), true, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return stock.Level{}, false, fmt.Errorf("adjust stock: %w", err)
	}

	levels, err := r.StockLevels(ctx, scope, []string{itemID})
	if err != nil {
		return stock.Level{}, false, err
	}
	lvl, ok := levels[itemID]
	if !ok {
		return stock.Level{}, false, r.c.notFound(itemID)
	}
	return lvl, false, nil
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	c collection[stock.Transaction]
}

func (r *StockRepo) Insert(ctx context.Context, scope account.Scope, t *stock.Transaction) error {
	return r.c.insert(ctx, scope, t.ID, t)
}

func (r *StockRepo) ListByItem(ctx context.Context, scope account.Scope, itemID string, limit int) ([]*stock.Transaction, error) {
	return r.c.find(ctx, scoped(scope, bson.M{"item_id": itemID}), byNewest(), int64(limit), 0)
}

func (r *StockRepo) CountByItem(ctx context.Context, scope account.Scope, itemID string) (int64, error) {
	return r.c.count(ctx, scoped(scope, bson.M{"item_id": itemID}))
}

func (r *StockRepo) NetByItem(ctx context.Context, scope account.Scope) (map[string]types.Quantity, error) {
	signed := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$direction", string(stock.DirectionOut)}},
		bson.M{"$multiply": bson.A{"$quantity", -1}},
		"$quantity",
	}}
	sums, err := r.c.sumBy(ctx, mongo.Pipeline{
		{{Key: "$match", Value: scoped(scope, nil)}},
		{{Key: "$group", Value: bson.M{"_id": "$item_id", "total": bson.M{"$sum": signed}}}},
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.Quantity, len(sums))
	for id, v := range sums {
		out[id] = types.Quantity(v)
	}
	return out, nil
}

var (
	_ customer.Repository = (*CustomerRepo)(nil)
	_ weaver.Repository   = (*WeaverRepo)(nil)
	_ item.Repository     = (*ItemRepo)(nil)
	_ stock.Repository    = (*StockRepo)(nil)
)

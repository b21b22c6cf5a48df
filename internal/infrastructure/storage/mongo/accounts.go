package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"weavebooks/internal/core/account"
	"weavebooks/internal/core/apperror"
	"weavebooks/internal/core/numerator"
	"weavebooks/internal/domain/plan"
)

// AccountRepo implements plan.AccountRepository.
type AccountRepo struct {
	c *mongo.Collection
}

func (r *AccountRepo) Create(ctx context.Context, a *plan.Account) error {
	if _, err := r.c.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.NewConflict("account already exists").WithDetail("id", a.ID)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, scope account.Scope) (*plan.Account, error) {
	var a plan.Account
	if err := r.c.FindOne(ctx, bson.M{"_id": scope.ID()}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NewNotFound("account", scope.ID())
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) ListIDs(ctx context.Context) ([]string, error) {
	cur, err := r.c.Find(ctx, bson.M{}, options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (r *AccountRepo) SetPlan(ctx context.Context, scope account.Scope, key string) error {
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": scope.ID()}, bson.M{"$set": bson.M{"subscription_type": key}})
	if err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NewNotFound("account", scope.ID())
	}
	return nil
}

// Counter implements numerator.Counter on sys_counters. Increments register
// no inverse: a number consumed by a failed unit of work is skipped.
type Counter struct {
	c *mongo.Collection
}

func counterKey(scope account.Scope, key string) bson.M {
	return bson.M{"account_id": scope.ID(), "key": key}
}

func (c *Counter) Next(ctx context.Context, scope account.Scope, key string) (int64, error) {
	var doc struct {
		Value int64 `bson:"current_val"`
	}
	err := c.c.FindOneAndUpdate(ctx, counterKey(scope, key),
		bson.M{"$inc": bson.M{"current_val": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, numerator.ErrNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("numerator next: %w", err)
	}
	return doc.Value, nil
}

func (c *Counter) Init(ctx context.Context, scope account.Scope, key string, value int64) error {
	_, err := c.c.UpdateOne(ctx, counterKey(scope, key),
		bson.M{"$setOnInsert": bson.M{"current_val": value}},
		options.UpdateOne().SetUpsert(true))
	// Two concurrent upserts race on the unique index; the loser's counter exists.
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("numerator init: %w", err)
	}
	return nil
}

var (
	_ plan.AccountRepository = (*AccountRepo)(nil)
	_ numerator.Counter      = (*Counter)(nil)
)

// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// collectionIndexes pairs a collection with the indexes it should carry.
type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

// all lists every index the console relies on.
//
// orders and products are read by created_at range for the dashboard, so both
// lead with created_at. The stats path never needs more than that.
func all() []collectionIndexes {
	return []collectionIndexes{
		{"orders", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
				Options: options.Index().SetName("idx_orders_createdat_id"),
			},
			{
				Keys:    bson.D{{Key: "buyer_name_ci", Value: 1}},
				Options: options.Index().SetName("idx_orders_buyernameci"),
			},
			{
				Keys:    bson.D{{Key: "phone", Value: 1}},
				Options: options.Index().SetName("idx_orders_phone"),
			},
		}},
		{"products", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_products_createdat"),
			},
			{
				// In-stock listing per category.
				Keys:    bson.D{{Key: "category_id", Value: 1}, {Key: "is_selling", Value: 1}},
				Options: options.Index().SetName("idx_products_category_isselling"),
			},
		}},
		{"categories", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "order", Value: 1}, {Key: "name_ci", Value: 1}},
				Options: options.Index().SetName("idx_categories_order_nameci"),
			},
		}},
		{"users", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
			},
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_users_nameci_id"),
			},
		}},
	}
}

/*
EnsureAll is called at startup. Reconciling is idempotent.
Problems are aggregated so every failing collection shows up in one error
and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, ci := range all() {
		if err := ensureIndexSet(ctx, db.Collection(ci.collection), ci.models); err != nil {
			problems = append(problems, ci.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(p *bool) bool {
	return p != nil && *p
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// listExisting maps key signature to the index currently on coll.
func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		if err := ensureIndex(ctx, coll, m, existing); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, existing map[string]existingIndex) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()

	fields := []zap.Field{
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", boolVal(unique)),
	}

	if ex, ok := existing[sig]; ok {
		if boolVal(unique) == boolVal(ex.Unique) {
			zap.L().Debug("reusing existing index", append(fields, zap.String("existing_name", ex.Name))...)
			return nil
		}
		// Options changed (e.g. upgrading to unique): drop and recreate.
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), name, err)
		}
	}

	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
		if isDuplicateKeyErr(err) && boolVal(unique) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	zap.L().Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	return nil
}

// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Paginate returns *options.FindOptions with skip/limit given a 1-based page.
func Paginate(limit, page int64) *options.FindOptions {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	sk := (page - 1) * limit
	return options.Find().SetLimit(limit).SetSkip(sk)
}

// Contains returns a regex matching s anywhere in a field, with s taken literally.
// Callers fold s first when matching against a *_ci field.
func Contains(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s)}
}

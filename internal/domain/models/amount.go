// internal/domain/models/amount.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Amount is a currency value in VND.
//
// Price fields in the shop's collections were written by several clients over
// the years, so a stored price may be a double, an int32/int64, a decimal128,
// a numeric string, or absent. Amount accepts all of them on decode and always
// writes decimal128. Anything it cannot read as a number decodes to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromInt returns the amount for a whole number of dong.
func AmountFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

// ParseAmount parses a user-supplied amount such as "1500000" or "1500000.00".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, err
	}
	return Amount{Decimal: d}, nil
}

// MarshalBSONValue stores the amount as decimal128.
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(a.Decimal.String())
	if err != nil {
		return 0, nil, err
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue reads any numeric representation; malformed values become zero.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	a.Decimal = decimal.Zero

	switch t {
	case bsontype.Double:
		if f, ok := raw.DoubleOK(); ok {
			a.Decimal = decimal.NewFromFloat(f)
		}
	case bsontype.Int32:
		if i, ok := raw.Int32OK(); ok {
			a.Decimal = decimal.NewFromInt32(i)
		}
	case bsontype.Int64:
		if i, ok := raw.Int64OK(); ok {
			a.Decimal = decimal.NewFromInt(i)
		}
	case bsontype.Decimal128:
		if d128, ok := raw.Decimal128OK(); ok {
			if d, err := decimal.NewFromString(d128.String()); err == nil {
				a.Decimal = d
			}
		}
	case bsontype.String:
		if s, ok := raw.StringValueOK(); ok {
			if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
				a.Decimal = d
			}
		}
	}
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted numeric string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

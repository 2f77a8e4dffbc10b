package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type priced struct {
	Price Amount `bson:"price"`
}

func TestAmount_UnmarshalBSONValue(t *testing.T) {
	d128, _ := primitive.ParseDecimal128("1999000.50")

	tests := []struct {
		name string
		doc  bson.M
		want string
	}{
		{name: "double", doc: bson.M{"price": 1500000.0}, want: "1500000"},
		{name: "int32", doc: bson.M{"price": int32(250000)}, want: "250000"},
		{name: "int64", doc: bson.M{"price": int64(32000000)}, want: "32000000"},
		{name: "decimal128", doc: bson.M{"price": d128}, want: "1999000.5"},
		{name: "numeric string", doc: bson.M{"price": " 2000000 "}, want: "2000000"},
		{name: "garbage string", doc: bson.M{"price": "call me"}, want: "0"},
		{name: "null", doc: bson.M{"price": nil}, want: "0"},
		{name: "missing", doc: bson.M{"other": 1}, want: "0"},
		{name: "boolean", doc: bson.M{"price": true}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var got priced
			if err := bson.Unmarshal(raw, &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if got.Price.String() != tt.want {
				t.Errorf("Price = %s, want %s", got.Price.String(), tt.want)
			}
		})
	}
}

func TestAmount_MarshalBSONValue(t *testing.T) {
	raw, err := bson.Marshal(priced{Price: AmountFromInt(3000000)})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	v := bson.Raw(raw).Lookup("price")
	d, ok := v.Decimal128OK()
	if !ok {
		t.Fatalf("price stored as %v, want decimal128", v.Type)
	}
	if d.String() != "3000000" {
		t.Errorf("stored price = %s, want 3000000", d.String())
	}

	var back priced
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Price.Equal(decimal.NewFromInt(3000000)) {
		t.Errorf("decoded price = %s, want 3000000", back.Price.String())
	}
}

func TestAmount_JSON(t *testing.T) {
	b, err := json.Marshal(priced{Price: AmountFromInt(1500000)})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(b) != `{"Price":1500000}` {
		t.Errorf("json = %s, want %s", b, `{"Price":1500000}`)
	}

	for _, in := range []string{`{"Price":750000}`, `{"Price":"750000"}`} {
		var got priced
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("json.Unmarshal(%s) error = %v", in, err)
		}
		if !got.Price.Equal(decimal.NewFromInt(750000)) {
			t.Errorf("json.Unmarshal(%s) = %s, want 750000", in, got.Price.String())
		}
	}
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount(" 1200000 ")
	if err != nil {
		t.Fatalf("ParseAmount() error = %v", err)
	}
	if !a.Equal(decimal.NewFromInt(1200000)) {
		t.Errorf("ParseAmount() = %s, want 1200000", a.String())
	}

	if _, err := ParseAmount("abc"); err == nil {
		t.Error("ParseAmount(abc) should fail")
	}
}

func TestOrder_Revenue(t *testing.T) {
	o := Order{Items: []LineItem{
		{Price: AmountFromInt(1000000)},
		{Price: AmountFromInt(2000000)},
		{}, // missing price counts as zero
	}}
	if got := o.Revenue(); !got.Equal(decimal.NewFromInt(3000000)) {
		t.Errorf("Revenue() = %s, want 3000000", got.String())
	}

	if got := (Order{}).Revenue(); !got.IsZero() {
		t.Errorf("Revenue() of empty order = %s, want 0", got.String())
	}
}

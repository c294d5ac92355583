package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Amount is a currency value kept in the textual form it was stored in.
// Parsing is deferred to Decimal so that one malformed record can be
// skipped without failing the decode of the whole result set.
type Amount string

// NewAmount returns the Amount for a decimal string such as "1250.00".
func NewAmount(s string) Amount { return Amount(s) }

// AmountFrom returns the Amount for d.
func AmountFrom(d decimal.Decimal) Amount { return Amount(d.String()) }

// IsZero reports whether the amount was absent in the stored document.
func (a Amount) IsZero() bool { return a == "" }

// Decimal parses the stored value. An absent amount is zero.
func (a Amount) Decimal() (decimal.Decimal, error) {
	if a == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed amount %q: %w", string(a), err)
	}
	return d, nil
}

// UnmarshalJSON accepts numbers, numeric strings and Mongo extended JSON
// ({"$numberDecimal": "12.50"}) as exported by mongoexport.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*a = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
	case b[0] == '{':
		var ext struct {
			NumberDecimal string `json:"$numberDecimal"`
		}
		if err := json.Unmarshal(b, &ext); err != nil {
			return err
		}
		if ext.NumberDecimal == "" {
			// Keep the raw object so Decimal reports it as malformed.
			*a = Amount(b)
			return nil
		}
		*a = Amount(ext.NumberDecimal)
	default:
		*a = Amount(b)
	}
	return nil
}

// MarshalJSON writes parseable amounts as JSON numbers and anything else
// as a string, so a round trip preserves malformed values verbatim.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	if _, err := decimal.NewFromString(string(a)); err == nil {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalBSONValue decodes Decimal128, double, int32, int64 and string
// BSON values, and embedded {"$numberDecimal": "..."} documents left by
// extended-JSON imports. Any other type is kept as a marker that Decimal
// rejects, so the record is dropped instead of failing the whole batch.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = ""
	case bsontype.Decimal128:
		*a = Amount(v.Decimal128().String())
	case bsontype.Double:
		*a = Amount(strconv.FormatFloat(v.Double(), 'f', -1, 64))
	case bsontype.Int32:
		*a = Amount(strconv.FormatInt(int64(v.Int32()), 10))
	case bsontype.Int64:
		*a = Amount(strconv.FormatInt(v.Int64(), 10))
	case bsontype.String:
		*a = Amount(v.StringValue())
	case bsontype.EmbeddedDocument:
		if nd, ok := v.Document().Lookup("$numberDecimal").StringValueOK(); ok {
			*a = Amount(nd)
			return nil
		}
		*a = Amount(fmt.Sprintf("<bson %s>", t))
	default:
		*a = Amount(fmt.Sprintf("<bson %s>", t))
	}
	return nil
}

// MarshalBSONValue stores the amount as Decimal128 when it parses, and as
// a string otherwise.
func (a Amount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if a == "" {
		return bsontype.Null, nil, nil
	}
	d, err := primitive.ParseDecimal128(string(a))
	if err != nil {
		return bson.MarshalValue(string(a))
	}
	return bson.MarshalValue(d)
}

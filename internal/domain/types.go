package domain

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// --- Shared Custom Types ---

// ProductID is the stable identity of a product.
// The storefront API emits it either as a JSON number or as a JSON string,
// both decode to the same value. It always encodes as a string.
type ProductID string

func (p ProductID) String() string {
	return string(p)
}

func (p ProductID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

func (p *ProductID) UnmarshalJSON(data []byte) error {
	if p == nil {
		return errors.New("ProductID: UnmarshalJSON on nil pointer")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductID(s)
		return nil
	}
	text := string(data)
	n, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return errors.New("ProductID: expected string or number")
	}
	*p = ProductID(numericID(text, n))
	return nil
}

// maxExactInt is the largest magnitude below which every integer survives a
// float64 round trip.
const maxExactInt = 1 << 53

// numericID keeps integer literals digit for digit. Other numbers that hold
// an exact integer (42.0, 4.2e1) collapse to it so they match "42"; the rest
// keep their literal text.
func numericID(text string, n float64) string {
	if !strings.ContainsAny(text, ".eE") {
		if text == "-0" {
			return "0"
		}
		return text
	}
	if n == math.Trunc(n) && math.Abs(n) <= maxExactInt {
		return strconv.FormatInt(int64(n), 10)
	}
	return text
}

// RawJSON is a helper for handling raw JSON bytes (like json.RawMessage).
// Display metadata the sync layer does not interpret (color variants) is
// carried through untouched.
type RawJSON []byte

// MarshalJSON returns j as the JSON encoding of j.
func (j RawJSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON sets *j to a copy of data.
func (j *RawJSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("RawJSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// ListResponse is the envelope the storefront API wraps lists in.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

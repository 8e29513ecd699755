package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// FlexString decodes from either a JSON string or a JSON number, keeping the
// literal text. Clients send ticket tiers and user ids both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("flexstring: want string or number")
	}
	*f = FlexString(canonicalNumber(n))
	return nil
}

// canonicalNumber renders n the way a JSON number reads as an object key in
// a browser: 3800.0 and 3.8e3 both become "3800".
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if fl, err := n.Float64(); err == nil {
		return strconv.FormatFloat(fl, 'f', -1, 64)
	}
	return n.String()
}

func (f FlexString) String() string { return string(f) }

// Int64 parses the value as a base-10 integer.
func (f FlexString) Int64() (int64, error) {
	return strconv.ParseInt(string(f), 10, 64)
}

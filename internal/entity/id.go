package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque gateway identifier. The gateway emits ids as JSON numbers
// in some payloads and as strings in others; both decode to the same value.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

// GraphQLValue returns the id as an int when it is numeric so it satisfies
// `Int!` arguments, and as the raw string otherwise.
func (id ID) GraphQLValue() interface{} {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return n
	}
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entity: id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

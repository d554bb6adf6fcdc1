package models

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// Snowflake is a Discord ID. Older documents stored IDs as JSON numbers, so
// both numbers and strings decode; it always encodes as a string.
type Snowflake string

// UnmarshalJSON accepts "123", 123 and null.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Snowflake(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return err
	}
	*s = Snowflake(n.String())
	return nil
}

package dto

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID accepts a JSON number or a numeric string, as sent by form-based
// clients. Zero means absent.
type ID uint

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	data = bytes.Trim(data, `"`)
	if len(data) == 0 {
		*id = 0
		return nil
	}

	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(v)
	return nil
}

// SPDX-License-Identifier: MIT

package normalize

import (
	"encoding/json"
	"strconv"
)

// FlexString decodes from a JSON string or number; the backend is not
// consistent about which it sends for identifiers.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexInt decodes from a JSON number or a numeric string, defaulting to zero
// on null or garbage.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(data) == 0 || raw == "null" {
		*i = 0
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if v == "" {
			*i = 0
			return nil
		}
		if n, err := strconv.Atoi(v); err == nil {
			*i = FlexInt(n)
			return nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*i = FlexInt(int(f))
			return nil
		}
		*i = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*i = FlexInt(int(f))
	return nil
}

// flex_number.go
//
// IT asset and software license tracking service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of itassetdb.
// itassetdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// itassetdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with itassetdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// unquote strips one level of JSON string quoting so numbers sent as
// strings parse the same as bare numbers.
func unquote(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}

// FlexUint64 is a uint64 that can be unmarshaled from either a JSON number or a JSON string.
// Row versions and ids travel in this form.
type FlexUint64 uint64

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("FlexUint64: unexpected type, expected number or string")
	}
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("FlexUint64: invalid uint64 %q: %w", s, err)
	}
	*f = FlexUint64(val)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts FlexUint64 back to uint64.
func (f FlexUint64) Uint64() uint64 {
	return uint64(f)
}

// IDPtr converts an optional FlexUint64 to an optional row id. Zero is treated as absent.
func IDPtr(f *FlexUint64) *uint {
	if f == nil || *f == 0 {
		return nil
	}
	id := uint(*f)
	return &id
}

// FlexInt is an int that can be unmarshaled from either a JSON number or a JSON string.
type FlexInt int

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("FlexInt: unexpected type, expected number or string")
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("FlexInt: invalid int %q: %w", s, err)
	}
	*f = FlexInt(val)
	return nil
}

// IntPtr converts an optional FlexInt to *int
func IntPtr(f *FlexInt) *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

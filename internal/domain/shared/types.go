// Package shared holds wire types used by more than one backend resource.
package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ID accepts string or numeric identifiers from the backend and always
// re-encodes as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// ParseTime reads the timestamp layouts the backend emits. Empty input
// yields the zero time and no error.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Upload is a binary attachment sent as a multipart file part.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// FormField is one text part of a multipart body. Order is preserved.
type FormField struct {
	Name  string
	Value string
}

// Form is a multipart payload: text fields plus optional file parts keyed
// by field name.
type Form struct {
	Fields []FormField
	Files  map[string]*Upload
}

func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, FormField{Name: name, Value: value})
}

func (f *Form) AddInt(name string, v int64) {
	f.Add(name, strconv.FormatInt(v, 10))
}

func (f *Form) AttachFile(name string, u *Upload) {
	if u == nil {
		return
	}
	if f.Files == nil {
		f.Files = make(map[string]*Upload)
	}
	f.Files[name] = u
}

// MessageResponse is the {message} body most mutating endpoints return.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
}

// MessageOr returns the backend message or fallback.
func (r *MessageResponse) MessageOr(fallback string) string {
	if r == nil || r.Message == "" {
		return fallback
	}
	return r.Message
}

// DecodeList reads either a bare JSON array or an object wrapping the array
// under the first present key. Absent or null input yields an empty slice.
func DecodeList[T any](b []byte, keys ...string) ([]T, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return []T{}, nil
	}
	if b[0] == '[' {
		var out []T
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if raw, ok := obj[k]; ok {
			return DecodeList[T](raw)
		}
	}
	return []T{}, nil
}

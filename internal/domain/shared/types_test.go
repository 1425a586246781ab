package shared

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"u1","b":1234,"c":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "u1" || v.B != "1234" || v.C != "" {
		t.Fatalf("unexpected ids %+v", v)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"u1","b":"1234","c":""}` {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{"2025-03-01T10:00:00Z", "2025-03-01T10:00:00.123Z", "2025-03-01T10:00:00", "2025-03-01"} {
		if ts, err := ParseTime(in); err != nil || ts.IsZero() {
			t.Fatalf("ParseTime(%q) = %v, %v", in, ts, err)
		}
	}
	if ts, err := ParseTime(""); err != nil || !ts.IsZero() {
		t.Fatalf("empty input should be zero time")
	}
	if _, err := ParseTime("next tuesday"); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestMessageOr(t *testing.T) {
	var nilResp *MessageResponse
	if nilResp.MessageOr("fallback") != "fallback" {
		t.Fatalf("nil response should use fallback")
	}
	if (&MessageResponse{Message: "Registered!"}).MessageOr("fallback") != "Registered!" {
		t.Fatalf("expected backend message")
	}
}

func TestDecodeList(t *testing.T) {
	type item struct {
		ID ID `json:"id"`
	}
	cases := []struct {
		in   string
		want int
	}{
		{`[{"id":1},{"id":"b"}]`, 2},
		{`{"results":[{"id":1}]}`, 1},
		{`{"data":[{"id":1},{"id":2},{"id":3}]}`, 3},
		{`{"other":[{"id":1}]}`, 0},
		{`null`, 0},
		{``, 0},
	}
	for _, tc := range cases {
		got, err := DecodeList[item]([]byte(tc.in), "results", "data")
		if err != nil {
			t.Fatalf("DecodeList(%s): %v", tc.in, err)
		}
		if got == nil || len(got) != tc.want {
			t.Fatalf("DecodeList(%s) = %#v, want %d items", tc.in, got, tc.want)
		}
	}
	if _, err := DecodeList[item]([]byte(`"nope"`)); err == nil {
		t.Fatalf("expected error for a bare string")
	}
}

package jsonutil

import (
	"strings"
	"testing"
)

func TestMarshalNoEscapeKeepsAngleBrackets(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"k": "<a> & <b>"})
	if err != nil {
		t.Fatalf("MarshalNoEscape: %v", err)
	}
	if strings.Contains(string(out), `\u003c`) {
		t.Fatalf("angle brackets were escaped: %s", out)
	}
}

func TestMarshalIndentNoEscape(t *testing.T) {
	out, err := MarshalIndentNoEscape(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("MarshalIndentNoEscape: %v", err)
	}
	if !strings.Contains(string(out), "\n  ") {
		t.Fatalf("expected indented output, got %s", out)
	}
	if strings.HasSuffix(string(out), "\n") {
		t.Fatalf("trailing newline not trimmed: %q", out)
	}
}

func TestUnmarshalFlexDirect(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := UnmarshalFlex([]byte(`{"name":"supervisor"}`), &v); err != nil {
		t.Fatalf("UnmarshalFlex: %v", err)
	}
	if v.Name != "supervisor" {
		t.Fatalf("got %q", v.Name)
	}
}

func TestUnmarshalFlexStringWrappedJSON(t *testing.T) {
	var v struct {
		Score float64 `json:"score"`
	}
	// Payload is a JSON string containing JSON, a shape some models emit.
	raw := []byte(`"{\"score\": 7.5}"`)
	if err := UnmarshalFlex(raw, &v); err != nil {
		t.Fatalf("UnmarshalFlex: %v", err)
	}
	if v.Score != 7.5 {
		t.Fatalf("got %v", v.Score)
	}
}

// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Doc: close({
	name?:  string & !=""
	count?: int & >=0
})
`

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	m, err := DecodeMap(testSchema, []byte(`name: "x"
count: 2`), "#Doc")
	if err != nil {
		t.Fatalf("DecodeMap() error = %v", err)
	}
	if m["name"] != "x" {
		t.Errorf("name = %v, want x", m["name"])
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []string
	}{
		{"syntax", `name: "x`, []string{"doc.cue:"}},
		{"constraint", `count: -1`, []string{"doc.cue:", "count"}},
		{"closed", `extra: 1`, []string{"doc.cue:", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Validate(testSchema, []byte(tt.data), "#Doc", WithFilename("doc.cue"))
			if err == nil {
				t.Fatal("Validate() error = nil")
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q missing %q", err, want)
				}
			}
		})
	}
}

func TestValidate_MaxFileSize(t *testing.T) {
	t.Parallel()

	_, err := Validate(testSchema, []byte(`name: "abcdef"`), "#Doc", WithMaxFileSize(4), WithFilename("big.cue"))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("Validate() error = %v, want size error", err)
	}
}

func TestValidate_Concrete(t *testing.T) {
	t.Parallel()

	schema := `#Doc: {name: string}`
	if _, err := Validate(schema, []byte(`{}`), "#Doc", WithConcrete(true)); err == nil {
		t.Error("incomplete document accepted with WithConcrete(true)")
	}
	if _, err := Validate(schema, []byte(`{}`), "#Doc", WithConcrete(false)); err != nil {
		t.Errorf("incomplete document rejected with WithConcrete(false): %v", err)
	}
}

func TestValidate_MissingDefinition(t *testing.T) {
	t.Parallel()

	if _, err := Validate(testSchema, []byte(`{}`), "#Nope"); err == nil {
		t.Error("missing definition accepted")
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "f") != nil {
		t.Error("FormatError(nil) != nil")
	}
	base := errors.New("plain")
	if err := FormatError(base, "f.cue"); !errors.Is(err, base) || !strings.HasPrefix(err.Error(), "f.cue: ") {
		t.Errorf("FormatError(plain) = %v", err)
	}
}

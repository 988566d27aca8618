package workflow

import (
	"fmt"
	"math"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/message"
)

func TestValidateReportsEachRule(t *testing.T) {
	t.Parallel()

	schema := MustSchema(
		Field{Name: "code", Kind: KindString, Required: true, MaxLength: 2},
		Field{Name: "note", Kind: KindString, MaxLength: 3},
		Field{Name: "count", Kind: KindNumber, Required: true},
		Field{Name: "categoryId", Kind: KindNumber, Required: true, Positive: true, RequiredKey: KeyCategoryRequired},
		Field{Name: "flag", Kind: KindBool, Required: true},
	)

	tests := []struct {
		name  string
		draft Draft
		want  FieldErrors
	}{
		{
			name:  "valid",
			draft: Draft{"code": "AB", "note": "", "count": float64(0), "categoryId": float64(4), "flag": false},
			want:  nil,
		},
		{
			name:  "all missing",
			draft: Draft{},
			want: FieldErrors{
				"code":       {"Field is required"},
				"count":      {"Field is required"},
				"categoryId": {"Activity category must be chosen"},
				"flag":       {"Field is required"},
			},
		},
		{
			name:  "type and length violations",
			draft: Draft{"code": "ABC", "note": "long", "count": "x", "categoryId": float64(0), "flag": "maybe"},
			want: FieldErrors{
				"code":       {"Max length is 2 characters"},
				"note":       {"Max length is 3 characters"},
				"count":      {"Must be a number"},
				"categoryId": {"Activity category must be chosen"},
				"flag":       {"Must be true or false"},
			},
		},
		{
			name:  "non-finite numbers",
			draft: Draft{"code": "AB", "count": math.NaN(), "categoryId": math.Inf(1), "flag": true},
			want: FieldErrors{
				"count":      {"Must be a number"},
				"categoryId": {"Must be a number"},
			},
		},
		{
			name:  "length counts runes",
			draft: Draft{"code": "éé", "count": float64(1), "categoryId": float64(1), "flag": true},
			want:  nil,
		},
	}
	for _, tc := range tests {
		got := Validate(schema, tc.draft, nil)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: field errors mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	t.Parallel()

	draft := Draft{"yardCode": ""}
	first := Validate(yardSchema, draft, nil)
	second := Validate(yardSchema, draft, nil)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("validation differs between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"latitude", "parentYardId", "yardCode", "yardName"}, first.Fields()); diff != "" {
		t.Fatalf("invalid fields mismatch (-want +got):\n%s", diff)
	}
}

type prefixLocalizer struct{}

func (prefixLocalizer) Sprintf(key message.Reference, args ...any) string {
	return fmt.Sprintf("id:%v%v", key, args)
}

func TestValidateUsesLocalizer(t *testing.T) {
	t.Parallel()

	schema := MustSchema(Field{Name: "code", Kind: KindString, Required: true, MaxLength: 1})
	got := Validate(schema, Draft{"code": "AB"}, prefixLocalizer{})
	want := FieldErrors{"code": {"id:core.validation.max_length[1]"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestFailureMessage(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("update yard: %w", &upstreamErr{messages: []string{" a ", "", "b"}})
	if got := FailureMessage(wrapped, nil); got != "a, b" {
		t.Fatalf("FailureMessage = %q, want %q", got, "a, b")
	}
	if got := FailureMessage(fmt.Errorf("boom"), nil); got != "Unknown Error!" {
		t.Fatalf("FailureMessage = %q, want Unknown Error!", got)
	}
}

func TestValidateRejectsNonFiniteFormInput(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"NaN", "Inf", "-Infinity", "+inf"} {
		draft := ParseForm(yardSchema, url.Values{"latitude": {raw}})
		got := Validate(yardSchema, draft, nil)
		if diff := cmp.Diff([]string{"Must be a number"}, got["latitude"]); diff != "" {
			t.Fatalf("latitude %q errors mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

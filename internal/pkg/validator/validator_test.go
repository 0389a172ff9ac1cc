package validator

import (
	"strings"
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmployeeID(t *testing.T) {
	valid := []string{"E01", "1024", "emp.007", "A-b_c"}
	invalid := []string{"", " E01", "-E01", "E 01", "E01/2", strings.Repeat("a", 65)}
	for _, id := range valid {
		if !IsValidEmployeeID(id) {
			t.Errorf("IsValidEmployeeID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidEmployeeID(id) {
			t.Errorf("IsValidEmployeeID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"2024-06-03", true},
		{"2024-02-30", false},
		{"03-06-2024", false},
		{"", false},
	}
	for _, c := range cases {
		_, got := IsValidDate(c.input)
		if got != c.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"entrada", "salida"}
	if !IsInSlice("salida", slice) {
		t.Errorf("IsInSlice(salida) = false, want true")
	}
	if IsInSlice("break", slice) {
		t.Errorf("IsInSlice(break) = true, want false")
	}
}

func TestParseDateTime(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)

	got, ok := ParseDateTime("2024-06-03T08:05:00Z", loc)
	if !ok || !got.Equal(time.Date(2024, 6, 3, 8, 5, 0, 0, time.UTC)) {
		t.Errorf("ParseDateTime(RFC3339) = %v, %v", got, ok)
	}

	got, ok = ParseDateTime("2024-06-03 08:05:00", loc)
	if !ok || !got.Equal(time.Date(2024, 6, 3, 8, 5, 0, 0, loc)) {
		t.Errorf("ParseDateTime(local) = %v, %v", got, ok)
	}

	got, ok = ParseDateTime("2024-06-03T08:05", loc)
	if !ok || !got.Equal(time.Date(2024, 6, 3, 8, 5, 0, 0, loc)) {
		t.Errorf("ParseDateTime(minutes) = %v, %v", got, ok)
	}

	for _, bad := range []string{"", "yesterday", "2024-13-01T00:00:00Z"} {
		if _, ok := ParseDateTime(bad, loc); ok {
			t.Errorf("ParseDateTime(%q) = ok, want failure", bad)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employee_id", Message: "required"},
		{Field: "kind", Message: "invalid"},
	}
	want := "employee_id: required; kind: invalid"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employee_id", Message: "required"},
		{Field: "kind", Message: "invalid"},
	}
	m := errs.ToMap()
	if len(m) != 2 || m["employee_id"] != "required" || m["kind"] != "invalid" {
		t.Errorf("ToMap() = %v", m)
	}
}

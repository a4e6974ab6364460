package validation

import "testing"

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	if v["name"] != "required" {
		t.Fatalf("expected required violation, got %v", v)
	}
	v2 := Violations{}
	Required("name", "Jan", v2)
	if !v2.Empty() {
		t.Fatalf("expected no violations, got %v", v2)
	}
}

func TestMaxLen(t *testing.T) {
	v := Violations{}
	MaxLen("comment", "abcdef", 5, v)
	if v["comment"] != "too_long" {
		t.Fatalf("expected too_long, got %v", v)
	}
}

func TestChecked(t *testing.T) {
	v := Violations{}
	Checked("agreed", false, v)
	if v["agreed"] != "must_be_accepted" {
		t.Fatalf("expected must_be_accepted, got %v", v)
	}
}

func TestEmail(t *testing.T) {
	v := Violations{}
	Email("email", "not-an-email", v)
	if v["email"] != "invalid_email" {
		t.Fatalf("expected invalid_email, got %v", v)
	}
	v2 := Violations{}
	Email("email", "jan@voorbeeld.nl", v2)
	Email("email", "", v2) // optional field, empty is fine
	if !v2.Empty() {
		t.Fatalf("expected no violations, got %v", v2)
	}
}

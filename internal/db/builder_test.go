package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("listings-idx").
		Prefix("listing:").
		Tag("status").
		Numeric("price").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "listings-idx" {
		t.Errorf("name = %q, want listings-idx", idx.Name)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "status" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want status TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "price" || idx.Fields[1].Type != IndexFieldNumeric {
		t.Errorf("field[1] = %+v, want price NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_SortableAppliesToLastField(t *testing.T) {
	idx := NewIndex("idx").
		Numeric("rating").Sortable().
		Numeric("seq").
		MustBuild()

	if !idx.Fields[0].Sortable {
		t.Error("rating must be sortable")
	}
	if idx.Fields[1].Sortable {
		t.Error("seq must not be sortable")
	}
}

func TestIndexBuilder_GeoField(t *testing.T) {
	idx := NewIndex("idx").Geo("geo").MustBuild()
	if idx.Fields[0].Type != IndexFieldGeo {
		t.Errorf("field type = %v, want GEO", idx.Fields[0].Type)
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		def  IndexDefinition
	}{
		{"empty name", IndexDefinition{Fields: []IndexField{{Name: "a"}}}},
		{"bad name", IndexDefinition{Name: "bad name", Fields: []IndexField{{Name: "a"}}}},
		{"no fields", IndexDefinition{Name: "idx"}},
		{"empty field name", IndexDefinition{Name: "idx", Fields: []IndexField{{}}}},
		{"duplicate field", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "a"}, {Name: "a"}}}},
		{"sortable geo", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "g", Type: IndexFieldGeo, Sortable: true}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.def.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("listings-idx").
		Prefix("listing:").
		Tag("status").
		Text("search_text").
		Tag("title_key").Sortable().
		Geo("geo").
		MustBuild()

	s := idx.String()
	for _, want := range []string{
		"FT.CREATE listings-idx ON HASH",
		"PREFIX listing:",
		"status TAG",
		"search_text TEXT",
		"title_key TAG SORTABLE",
		"geo GEO",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "listings-idx", "a_b:c", "X9"}
	invalid := []string{"", "has space", "semi;colon", "слова"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true, want false", s)
		}
	}
}

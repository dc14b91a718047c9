package normalize

import (
	"reflect"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"accents and case", "Descripción del Ítem", "descripcion del item"},
		{"punctuation", "Precio Total (IVA incluido)", "precio total iva incluido"},
		{"enye", "Año Ñandú", "ano nandu"},
		{"collapse runs", "u/m  --  x", "u m x"},
		{"nbsp", "precio\u00a0total", "precio total"},
		{"digits kept", "Item Nº 12", "item n 12"},
		{"leading symbols", "**total**", "total"},
		{"non latin dropped", "日本 total", "total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{
		"", "Descripción", "  PRECIO   total ", "u.m.", "Ç'est la vie!", "1.234,56 Gs.", "\t\ncantidad\t",
	}
	for _, in := range inputs {
		once := Text(in)
		if twice := Text(once); twice != once {
			t.Errorf("Text not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, ""},
		{"Cantidad", "cantidad"},
		{1.0, "1"},
		{2.5, "2 5"},
		{7, "7"},
		{int64(8), "8"},
		{true, "true"},
		{struct{}{}, ""},
	}
	for _, tt := range tests {
		if got := Value(tt.input); got != tt.expected {
			t.Errorf("Value(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTokensAndSet(t *testing.T) {
	got := Tokens("Pintura látex, blanca pintura")
	want := []string{"pintura", "latex", "blanca", "pintura"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokens() = %v, want %v", got, want)
	}
	if set := Set(got); !reflect.DeepEqual(set, []string{"pintura", "latex", "blanca"}) {
		t.Errorf("Set() = %v", set)
	}
	if Tokens("  ") != nil {
		t.Error("expected nil tokens for blank input")
	}
}

func TestAll(t *testing.T) {
	got := All([]string{"Descripción", "", "  ", "Desc."})
	want := []string{"descripcion", "desc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
}

package language

import (
	"context"
	"testing"
)

func TestWhatlangDetector_English(t *testing.T) {
	d := NewDetector()
	text := "A good manager listens carefully to the team, sets clear goals for every quarter, " +
		"and gives honest feedback so that people can grow into their new responsibilities."
	if got := d.Detect(text); got != "en" {
		t.Errorf("Detect = %q, want en", got)
	}
}

func TestWhatlangDetector_Other(t *testing.T) {
	d := NewDetector()
	text := "Un buen gerente escucha atentamente a su equipo, establece objetivos claros para cada " +
		"trimestre y ofrece comentarios honestos para que las personas puedan crecer."
	if got := d.Detect(text); got != "es" {
		t.Errorf("Detect = %q, want es", got)
	}
}

func TestWhatlangDetector_Fallback(t *testing.T) {
	d := NewDetector(WithFallback("hi"))
	if got := d.Detect("12345 !!! ###"); got != "hi" {
		t.Errorf("Detect = %q, want fallback hi", got)
	}
	d = NewDetector(WithFallback(""))
	if got := d.Detect(""); got != Undetermined {
		t.Errorf("Detect = %q, want %q", got, Undetermined)
	}
}

func TestWhatlangDetector_MinConfidence(t *testing.T) {
	d := NewDetector(WithFallback("xx"), WithMinConfidence(1.01))
	if got := d.Detect("This sentence is clearly written in plain English for everyone."); got != "xx" {
		t.Errorf("Detect = %q, want fallback when confidence threshold is unreachable", got)
	}
}

func TestPassthrough(t *testing.T) {
	got, err := Passthrough{}.Translate(context.Background(), "नमस्ते", "hi", "en")
	if err != nil || got != "नमस्ते" {
		t.Errorf("Translate = %q, %v", got, err)
	}
}

package fsrs45

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestGradeValues(t *testing.T) {
	if Again != 1 || Hard != 2 || Good != 3 || Easy != 4 {
		t.Errorf("grades = %d %d %d %d, want 1 2 3 4", Again, Hard, Good, Easy)
	}
}

func TestGradeString(t *testing.T) {
	tests := []struct {
		g    Grade
		want string
	}{
		{Again, "Again"},
		{Hard, "Hard"},
		{Good, "Good"},
		{Easy, "Easy"},
		{Grade(0), "Grade(0)"},
		{Grade(5), "Grade(5)"},
	}
	for _, tt := range tests {
		if got := tt.g.String(); got != tt.want {
			t.Errorf("Grade(%d).String() = %q, want %q", int(tt.g), got, tt.want)
		}
	}
}

func TestGradeIsValid(t *testing.T) {
	for _, g := range Grades {
		if !g.IsValid() {
			t.Errorf("Grade(%d).IsValid() = false, want true", int(g))
		}
	}
	for _, g := range []Grade{0, -1, 5, 100} {
		if g.IsValid() {
			t.Errorf("Grade(%d).IsValid() = true, want false", int(g))
		}
	}
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		in   string
		want Grade
	}{
		{"Again", Again},
		{"again", Again},
		{" HARD ", Hard},
		{"good", Good},
		{"Easy", Easy},
		{"1", Again},
		{"2", Hard},
		{"3", Good},
		{"4", Easy},
	}
	for _, tt := range tests {
		got, err := ParseGrade(tt.in)
		if err != nil {
			t.Fatalf("ParseGrade(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseGrade(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseGradeInvalid(t *testing.T) {
	for _, in := range []string{"", "0", "5", "ok", "Goodish"} {
		if _, err := ParseGrade(in); !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("ParseGrade(%q) err = %v, want ErrInvalidGrade", in, err)
		}
	}
}

func TestGradeMarshalJSON(t *testing.T) {
	for _, g := range Grades {
		got, err := json.Marshal(g)
		if err != nil {
			t.Fatalf("json.Marshal(%v): %v", g, err)
		}
		if want := `"` + g.String() + `"`; string(got) != want {
			t.Errorf("json.Marshal(%v) = %s, want %s", g, got, want)
		}
	}
	if _, err := json.Marshal(Grade(0)); err == nil {
		t.Error("json.Marshal(Grade(0)) should return error")
	}
}

func TestGradeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Grade
	}{
		{`"Again"`, Again},
		{`"hard"`, Hard},
		{`"Good"`, Good},
		{`"Easy"`, Easy},
		{`1`, Again},
		{`4`, Easy},
	}
	for _, tt := range tests {
		var got Grade
		if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
			t.Fatalf("json.Unmarshal(%s): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("json.Unmarshal(%s) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGradeUnmarshalJSONInvalid(t *testing.T) {
	for _, input := range []string{`"Unknown"`, `""`, `42`, `0`, `null`, `true`} {
		var g Grade
		if err := json.Unmarshal([]byte(input), &g); err == nil {
			t.Errorf("json.Unmarshal(%s) should return error", input)
		}
	}
}

func TestGradeTextRoundTrip(t *testing.T) {
	for _, g := range Grades {
		text, err := g.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", g, err)
		}
		var got Grade
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != g {
			t.Errorf("round-trip: got %v, want %v", got, g)
		}
	}
}

package embedding

import (
	"reflect"
	"testing"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Python advanced 3years", []string{"python", "advanced", "3years"}},
		{"Java  3.5years", []string{"java", "5years"}},
		{"C# / C++", nil},
		{"  Node.js  ", []string{"node", "js"}},
		{"Straße Führung", []string{"straße", "führung"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := SplitWords(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitWords(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNGrams(t *testing.T) {
	got := NGrams([]string{"a1", "b2", "c3"}, 1, 2)
	want := []string{"a1", "b2", "c3", "a1 b2", "b2 c3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NGrams = %v, want %v", got, want)
	}
	if got := NGrams([]string{"solo"}, 1, 2); !reflect.DeepEqual(got, []string{"solo"}) {
		t.Errorf("single token: %v", got)
	}
	if got := NGrams([]string{"aa", "bb"}, 2, 2); !reflect.DeepEqual(got, []string{"aa bb"}) {
		t.Errorf("bigrams only: %v", got)
	}
	if NGrams(nil, 1, 2) != nil {
		t.Error("no tokens should give nil")
	}
}

func TestAnalyzer_Terms(t *testing.T) {
	a := NewAnalyzer(1, 2)
	got := a.Terms("SQL expert 10years")
	want := []string{"sql", "expert", "10years", "sql expert", "expert 10years"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms = %v, want %v", got, want)
	}

	fallback := NewAnalyzer(0, 0)
	if fallback.NgramMin != 1 || fallback.NgramMax != 1 {
		t.Errorf("fallback analyzer: %+v", fallback)
	}
}

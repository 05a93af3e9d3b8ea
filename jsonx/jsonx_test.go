package jsonx

import "testing"

type item struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"kind":"question"}]`, `[{"kind":"question"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"plain fence", "```\n{}\n```", "{}"},
		{"surrounding whitespace", "  \n```json\n[]\n```  ", "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairMissingOpeningQuote(t *testing.T) {
	in := `{"kind": "question", text": "Décrivez votre approche"}`
	want := `{"kind": "question", "text": "Décrivez votre approche"}`
	if got := Repair(in); got != want {
		t.Errorf("Repair(%q) = %q, want %q", in, got, want)
	}
}

func TestRepairLeavesValidJSONAlone(t *testing.T) {
	in := `[{"kind": "question", "text": "ok"}]`
	if got := Repair(in); got != in {
		t.Errorf("Repair(%q) = %q, want unchanged", in, got)
	}
}

func TestDecodeList(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		items, err := DecodeList[item]("```json\n[{\"kind\":\"question\",\"text\":\"a\"},{\"kind\":\"condition\",\"text\":\"b\"}]\n```")
		if err != nil {
			t.Fatalf("DecodeList returned error: %v", err)
		}
		if len(items) != 2 || items[0].Kind != "question" || items[1].Text != "b" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("bare object becomes one-element list", func(t *testing.T) {
		items, err := DecodeList[item](`{"kind":"condition","text":"c"}`)
		if err != nil {
			t.Fatalf("DecodeList returned error: %v", err)
		}
		if len(items) != 1 || items[0].Kind != "condition" {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("garbage fails", func(t *testing.T) {
		if _, err := DecodeList[item]("Voici les résultats:"); err == nil {
			t.Error("expected error for non-JSON input")
		}
	})
}

func TestDecode(t *testing.T) {
	type report struct {
		QualityScore int    `json:"qualityScore"`
		Summary      string `json:"summary"`
	}
	got, err := Decode[report]("```json\n{\"qualityScore\": 85, \"summary\": \"Bonne couverture\"}\n```")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if got.QualityScore != 85 || got.Summary != "Bonne couverture" {
		t.Errorf("unexpected report: %+v", got)
	}
}

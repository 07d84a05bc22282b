package query

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

const quietSample = `0.912 src/auth/login.go:10-42
  10: func Login(w http.ResponseWriter, r *http.Request) {
  11: 	token := r.Header.Get("Authorization")

.789 src/auth/token.go:5-9
   5: type Token struct {
`

func TestParseQuiet(t *testing.T) {
	results := ParseQuiet(quietSample, zerolog.Nop())
	if len(results) != 2 {
		t.Fatalf("parsed %d results, want 2", len(results))
	}

	first := results[0]
	if first.FilePath != "src/auth/login.go" || first.StartLine != 10 || first.EndLine != 42 {
		t.Errorf("first location = %s:%d-%d", first.FilePath, first.StartLine, first.EndLine)
	}
	if first.Score != 0.912 || first.RawScore != "0.912" {
		t.Errorf("first score = %v (%q)", first.Score, first.RawScore)
	}
	if first.Content != "  10: func Login(w http.ResponseWriter, r *http.Request) {\n  11: \ttoken := r.Header.Get(\"Authorization\")" {
		t.Errorf("first content = %q", first.Content)
	}

	second := results[1]
	if second.RawScore != ".789" || second.Score != 0.789 {
		t.Errorf("leading-zero-less score parsed as %v (%q)", second.Score, second.RawScore)
	}
}

func TestParseQuietEncounterOrder(t *testing.T) {
	raw := ".2 low.go:1-1\n\n.9 high.go:1-1\n\n.5 mid.go:1-1\n"
	results := ParseQuiet(raw, zerolog.Nop())
	var files []string
	for _, r := range results {
		files = append(files, r.FilePath)
	}
	want := []string{"low.go", "high.go", "mid.go"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("encounter order = %v, want %v", files, want)
	}
}

func TestParseQuietDropsInvalidRanges(t *testing.T) {
	cases := []string{
		"0.5 a.go:0-3\n", // start < 1
		"0.5 a.go:9-3\n", // end < start
	}
	for _, raw := range cases {
		if got := ParseQuiet(raw, zerolog.Nop()); len(got) != 0 {
			t.Errorf("ParseQuiet(%q) = %v, want empty", raw, got)
		}
	}
}

func TestParseQuietIgnoresStrayContent(t *testing.T) {
	raw := "stray line before any header\n0.5 a.go:1-2\n   1: ok\n"
	results := ParseQuiet(raw, zerolog.Nop())
	if len(results) != 1 || results[0].Content != "   1: ok" {
		t.Errorf("results = %+v", results)
	}
}

func TestQuietRoundTrip(t *testing.T) {
	results := ParseQuiet(quietSample, zerolog.Nop())
	rendered := RenderQuiet(results)
	if rendered != quietSample {
		t.Errorf("round trip mismatch:\n--- got ---\n%s\n--- want ---\n%s", rendered, quietSample)
	}
}

func TestRenderQuietEmpty(t *testing.T) {
	if got := RenderQuiet(nil); got != "" {
		t.Errorf("RenderQuiet(nil) = %q, want empty", got)
	}
}

package service

import (
	"strings"
	"testing"
)

func TestParseSlides_FencedJSON(t *testing.T) {
	raw := "```json\n" +
		`{"slides": [{"title": "The Water Cycle", "body": "An overview", "imagePrompt": null}, {"title": "Evaporation", "body": "- Heat from the sun\n- Water turns to vapor", "imagePrompt": "sun heating the ocean"}]}` +
		"\n```"

	var parser SlideParser
	slides, err := parser.ParseSlides(raw)
	if err != nil {
		t.Fatalf("ParseSlides: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	if slides[0].Title != "The Water Cycle" {
		t.Errorf("unexpected title slide: %q", slides[0].Title)
	}
	if slides[1].ImagePrompt != "sun heating the ocean" {
		t.Errorf("unexpected image prompt: %q", slides[1].ImagePrompt)
	}
	if !strings.Contains(slides[1].Body, "\n") {
		t.Errorf("bullet body should keep newlines: %q", slides[1].Body)
	}
}

func TestParseSlides_JSONWrappedInProse(t *testing.T) {
	raw := `Sure! Here is your presentation: {"slides": [{"title": "Volcanoes", "body": "Intro"}]} Hope it helps.`

	var parser SlideParser
	slides, err := parser.ParseSlides(raw)
	if err != nil {
		t.Fatalf("ParseSlides: %v", err)
	}
	if len(slides) != 1 || slides[0].Title != "Volcanoes" {
		t.Fatalf("unexpected slides: %+v", slides)
	}
}

func TestParseSlides_NoJSON(t *testing.T) {
	var parser SlideParser
	if _, err := parser.ParseSlides("I cannot do that right now."); err == nil {
		t.Fatal("expected error for output without JSON")
	}
}

func TestParseSlides_EmptySlideList(t *testing.T) {
	var parser SlideParser
	if _, err := parser.ParseSlides(`{"slides": []}`); err == nil {
		t.Fatal("expected error for empty slide list")
	}
}

func TestParseSlides_EmptyTitleRejected(t *testing.T) {
	var parser SlideParser
	if _, err := parser.ParseSlides(`{"slides": [{"title": "  ", "body": "x"}]}`); err == nil {
		t.Fatal("expected error for slide with blank title")
	}
}

func TestCleanLLMJSONResponse_StripsFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"\uFEFF{\"a\":1}":         `{"a":1}`,
	}
	for in, want := range cases {
		if got := CleanLLMJSONResponse(in); got != want {
			t.Errorf("CleanLLMJSONResponse(%q) = %q, want %q", in, got, want)
		}
	}
}

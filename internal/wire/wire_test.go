package wire

import (
	"testing"

	"github.com/tsawler/snaptable"
	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/tables"
)

func TestSelectionRect(t *testing.T) {
	got := Selection{X: 40, Y: 30, Width: -30, Height: -20}.Rect()
	if want := model.NewRect(10, 10, 40, 30); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestSelectionMatchesModel(t *testing.T) {
	tests := []Selection{
		{X: 40, Y: 30, Width: -30, Height: -20},
		{X: 0, Y: 0, Width: 12.5, Height: 7},
		{X: 5, Y: 5, Width: 0, Height: -5},
	}

	for _, s := range tests {
		m := s.Model()
		if m.Anchor != (model.Point{X: s.X, Y: s.Y}) || m.Width != s.Width || m.Height != s.Height {
			t.Errorf("Expected model selection to keep %+v, got %+v", s, m)
		}
		if s.Rect() != m.Rect() {
			t.Errorf("Expected %+v, got %+v", m.Rect(), s.Rect())
		}
	}
}

func TestThresholdsApply(t *testing.T) {
	gap := 25.0
	got := Thresholds{ColumnGap: &gap}.Apply(tables.DefaultConfig())

	if got.ColumnGap != 25 || got.RowTolerance != tables.DefaultRowTolerance || got.WordGap != tables.DefaultWordGap {
		t.Errorf("Unexpected config %+v", got)
	}
}

func TestFragmentsRequestValidate(t *testing.T) {
	ok := FragmentsRequest{Selection: &Selection{}}
	if err := ok.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}

	both := FragmentsRequest{Selection: &Selection{}, Selections: []Selection{{}}}
	if err := both.Validate(); err == nil {
		t.Error("Expected error when both selection and selections are set")
	}
}

func TestNewTable(t *testing.T) {
	result := &snaptable.Result{Table: &model.Table{Rows: [][]string{{"a", "b"}}}, Fragments: 2}
	got := NewTable(result, []snaptable.Warning{{Message: "skipped", Text: "x"}}, model.SourceOCR)

	if !got.Found || got.Columns != 2 || got.Fragments != 2 || got.Source != "ocr" {
		t.Errorf("Unexpected table %+v", got)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != `skipped: "x"` {
		t.Errorf("Unexpected warnings %v", got.Warnings)
	}

	missing := NewTable(&snaptable.Result{}, nil, model.SourceUnknown)
	if missing.Found || missing.Message != NotFoundMessage || missing.Source != "" {
		t.Errorf("Unexpected not-found table %+v", missing)
	}
}

func TestNewTablesGroupsWarnings(t *testing.T) {
	results := []*snaptable.Result{{}, {}}
	warnings := []snaptable.Warning{
		{Message: "first", Selection: 0},
		{Message: "second", Selection: 1},
		{Message: "stray", Selection: 7},
	}

	got := NewTables(results, warnings, model.SourceTextLayer)
	if len(got.Tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(got.Tables))
	}
	if len(got.Tables[0].Warnings) != 1 || got.Tables[0].Warnings[0] != "first" {
		t.Errorf("Unexpected warnings for selection 0: %v", got.Tables[0].Warnings)
	}
	if len(got.Tables[1].Warnings) != 1 || got.Tables[1].Warnings[0] != "second" {
		t.Errorf("Unexpected warnings for selection 1: %v", got.Tables[1].Warnings)
	}
}

func TestModelFragments(t *testing.T) {
	req := FragmentsRequest{Fragments: []Fragment{{Text: "a", X: 1, Y: 2, Width: 3, Height: 4}}}
	got := req.ModelFragments()
	if len(got) != 1 || got[0].Box != model.NewBBox(1, 2, 3, 4) || got[0].Text != "a" {
		t.Errorf("Unexpected fragments %+v", got)
	}
}

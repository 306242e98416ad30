package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/fieldedit/internal/engine/buffer"
	"github.com/dshills/fieldedit/internal/engine/history"
	"github.com/dshills/fieldedit/internal/engine/page"
)

// testSink records every notification and can push records onto a stack.
type testSink struct {
	NopSink
	stack    *history.Stack
	records  []Record
	changes  []string
	carets   int
	sels     int
	loads    []int
	unloads  []int
	accept   func(candidate string) bool
	onChange func(prev string)
}

func (s *testSink) OnTextChanged(prev string) {
	s.changes = append(s.changes, prev)
	if s.onChange != nil {
		s.onChange(prev)
	}
}

func (s *testSink) OnCaretChanged()    { s.carets++ }
func (s *testSink) OnSelChanged()      { s.sels++ }
func (s *testSink) OnPageLoad(i int)   { s.loads = append(s.loads, i) }
func (s *testSink) OnPageUnload(i int) { s.unloads = append(s.unloads, i) }

func (s *testSink) OnAddUndoRecord(rec Record) {
	s.records = append(s.records, rec)
	if s.stack != nil {
		s.stack.Push(rec)
	}
}

func (s *testSink) OnValidate(candidate string) bool {
	if s.accept == nil {
		return true
	}
	return s.accept(candidate)
}

func newTestEngine(t *testing.T, p Params, text string) (*Engine, *testSink) {
	t.Helper()
	sink := &testSink{stack: history.NewStack(0)}
	e := New(WithParams(p), WithSink(sink))
	if err := e.SetText(text); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	return e, sink
}

// checkParagraphs verifies that paragraphs partition the buffer, each
// ending in exactly one terminator, and that the cached line count matches
// a fresh layout.
func checkParagraphs(t *testing.T, e *Engine) {
	t.Helper()
	next := 0
	lines := 0
	for i := 0; i < e.CountParagraphs(); i++ {
		r, err := e.Paragraph(i)
		if err != nil {
			t.Fatalf("Paragraph(%d): %v", i, err)
		}
		if r.Start != next {
			t.Errorf("paragraph %d starts at %d, want %d", i, r.Start, next)
		}
		text := e.buf.Range(r.Start, r.Count)
		if text[len(text)-1] != '\n' {
			t.Errorf("paragraph %d does not end in a terminator: %q", i, string(text))
		}
		if strings.ContainsRune(string(text[:len(text)-1]), '\n') {
			t.Errorf("paragraph %d holds an inner terminator: %q", i, string(text))
		}
		lines += len(e.lb.Break(text))
		next = r.End()
	}
	if next != e.TextLength()+1 {
		t.Errorf("paragraphs cover %d chars, want %d", next, e.TextLength()+1)
	}
	if e.LineCount() != lines {
		t.Errorf("line count %d, fresh layout %d", e.LineCount(), lines)
	}
}

// ============================================================================
// Basic Operations
// ============================================================================

func TestNew(t *testing.T) {
	e := New()
	if e.TextLength() != 0 {
		t.Errorf("expected empty engine, got len %d", e.TextLength())
	}
	if e.Text() != "" {
		t.Errorf("expected empty text, got %q", e.Text())
	}
	if e.CountParagraphs() != 1 {
		t.Errorf("expected 1 paragraph, got %d", e.CountParagraphs())
	}
	if e.CountPages() != 1 {
		t.Errorf("expected 1 page, got %d", e.CountPages())
	}
	if diff := cmp.Diff(Caret{Index: 0, Before: true}, e.Caret()); diff != "" {
		t.Errorf("caret (-want +got):\n%s", diff)
	}
	if e.State() != Idle {
		t.Errorf("expected idle, got %v", e.State())
	}
}

func TestNewIgnoresInvalidParams(t *testing.T) {
	p := DefaultParams()
	p.LinesPerPage = 0
	e := New(WithParams(p))
	if e.Params().LinesPerPage != DefaultLinesPerPage {
		t.Errorf("expected default lines per page, got %d", e.Params().LinesPerPage)
	}
}

func TestSetParamsInvalid(t *testing.T) {
	e := New()
	p := DefaultParams()
	p.FontSize = 0
	if err := e.SetParams(p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestParamsCheck(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		ok     bool
	}{
		{"defaults", func(*Params) {}, true},
		{"validate flag", func(p *Params) { p.Validate = true }, true},
		{"no lines per page", func(p *Params) { p.LinesPerPage = 0 }, false},
		{"zero font size", func(p *Params) { p.FontSize = 0 }, false},
		{"zero line space", func(p *Params) { p.LineSpace = 0 }, false},
		{"negative tab width", func(p *Params) { p.TabWidth = -1 }, false},
		{"negative plate", func(p *Params) { p.PlateHeight = -1 }, false},
		{"negative limit", func(p *Params) { p.CharacterLimit = -1 }, false},
		{"wrap without width", func(p *Params) { p.AutoLineWrap = true }, false},
		{"wrap with width", func(p *Params) { p.AutoLineWrap = true; p.PlateWidth = 40 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			err := p.Check()
			if tt.ok && err != nil {
				t.Errorf("expected valid params, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestInsertMovesCaret(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "")

	n, err := e.Insert("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 chars inserted, got %d", n)
	}
	if e.Text() != "hello" {
		t.Errorf("expected %q, got %q", "hello", e.Text())
	}
	if e.Caret().Index != 5 {
		t.Errorf("expected caret 5, got %v", e.Caret())
	}
	if len(sink.records) != 1 || sink.records[0].Kind() != history.KindInsert {
		t.Fatalf("expected one insert record, got %v", sink.records)
	}
	if diff := cmp.Diff([]string{""}, sink.changes); diff != "" {
		t.Errorf("change notifications (-want +got):\n%s", diff)
	}
	checkParagraphs(t, e)
}

func TestInsertReplacesSelection(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "ab\ncd")

	if err := e.AddSelRange(0, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if _, err := e.Insert("X"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if e.Text() != "X\ncd" {
		t.Errorf("expected %q, got %q", "X\ncd", e.Text())
	}
	if e.Caret().Index != 1 {
		t.Errorf("expected caret 1, got %v", e.Caret())
	}
	if e.HasSelection() {
		t.Error("expected selection to be cleared")
	}
	if len(sink.records) != 2 {
		t.Fatalf("expected delete and insert records, got %d", len(sink.records))
	}
	del, ins := sink.records[0], sink.records[1]
	if del.Kind() != history.KindDelete || !del.Selected() || del.Text() != "ab" {
		t.Errorf("unexpected delete record %v", del)
	}
	if del.Group() != ins.Group() {
		t.Error("expected records of one edit to share a group")
	}
	checkParagraphs(t, e)
}

func TestInsertReplacesSeveralRanges(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abcdefgh")
	if err := e.AddSelRange(5, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.AddSelRange(1, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}

	if _, err := e.Insert("X"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if e.Text() != "aXdeh" {
		t.Errorf("expected 'aXdeh', got %q", e.Text())
	}
	if e.Caret().Index != 2 {
		t.Errorf("expected caret 2, got %v", e.Caret())
	}
	if len(sink.records) != 3 {
		t.Errorf("expected 3 records, got %d", len(sink.records))
	}
}

func TestInsertCharacterLimit(t *testing.T) {
	p := DefaultParams()
	p.CharacterLimit = 3
	e, _ := newTestEngine(t, p, "")

	n, err := e.Insert("abcdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 || e.Text() != "abc" {
		t.Errorf("expected 3 chars %q, got %d %q", "abc", n, e.Text())
	}

	if _, err := e.Insert("x"); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}

	// Selected characters count as free room.
	if err := e.AddSelRange(0, 1); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	n, err = e.Insert("xy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || e.Text() != "xbc" {
		t.Errorf("expected 1 char %q, got %d %q", "xbc", n, e.Text())
	}
}

func TestSetTextTruncatesToLimit(t *testing.T) {
	p := DefaultParams()
	p.CharacterLimit = 4
	e, sink := newTestEngine(t, p, "abcdefgh")
	if e.Text() != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", e.Text())
	}
	if len(sink.records) != 0 || len(sink.changes) != 0 {
		t.Error("expected SetText to emit no records or notifications")
	}
}

func TestSingleLineDropsTerminators(t *testing.T) {
	p := DefaultParams()
	p.Multiline = false
	e, _ := newTestEngine(t, p, "a\r\nb")
	if e.Text() != "ab" {
		t.Errorf("expected %q, got %q", "ab", e.Text())
	}
	if _, err := e.Insert("c\nd"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if e.Text() != "cdab" {
		t.Errorf("expected %q, got %q", "cdab", e.Text())
	}
	if e.CountParagraphs() != 1 {
		t.Errorf("expected 1 paragraph, got %d", e.CountParagraphs())
	}
}

// ============================================================================
// Line Endings
// ============================================================================

func TestLineEndingsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		want buffer.LineEnding
		len  int
	}{
		{"lf", "a\nb\nc", buffer.LineEndingLF, 5},
		{"crlf", "a\r\nb\r\nc", buffer.LineEndingCRLF, 5},
		{"cr", "a\rb", buffer.LineEndingCR, 3},
		{"none", "abc", buffer.LineEndingAuto, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, DefaultParams(), tt.text)
			if e.Text() != tt.text {
				t.Errorf("expected %q, got %q", tt.text, e.Text())
			}
			if e.TextLength() != tt.len {
				t.Errorf("expected length %d, got %d", tt.len, e.TextLength())
			}
			if e.LineEnding() != tt.want {
				t.Errorf("expected %v, got %v", tt.want, e.LineEnding())
			}
			checkParagraphs(t, e)
		})
	}
}

func TestCRLFIsOneCharacter(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "ab\r\ncd")

	if got := e.GetText(2, 1); got != "\r\n" {
		t.Errorf("expected %q, got %q", "\r\n", got)
	}
	if err := e.SetCaretPos(3, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Text() != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", e.Text())
	}
	checkParagraphs(t, e)
}

func TestGetTextClamps(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "hello")

	tests := []struct {
		start, count int
		want         string
	}{
		{0, -1, "hello"},
		{1, 3, "ell"},
		{3, 100, "lo"},
		{-4, 2, "he"},
		{9, 2, ""},
	}
	for _, tt := range tests {
		if got := e.GetText(tt.start, tt.count); got != tt.want {
			t.Errorf("GetText(%d, %d) = %q, want %q", tt.start, tt.count, got, tt.want)
		}
	}
}

func TestDisplayTextPassword(t *testing.T) {
	p := DefaultParams()
	p.Password = true
	e, _ := newTestEngine(t, p, "ab\ncd")

	if got := e.DisplayText(0, -1); got != "**\n**" {
		t.Errorf("expected %q, got %q", "**\n**", got)
	}
	if e.Text() != "ab\ncd" {
		t.Errorf("expected real text, got %q", e.Text())
	}
}

// ============================================================================
// Delete
// ============================================================================

func TestDelete(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abc")

	if err := e.SetCaretPos(0, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Errorf("backspace at start: %v", err)
	}
	if err := e.Delete(false); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Text() != "bc" {
		t.Errorf("expected %q, got %q", "bc", e.Text())
	}

	if err := e.SetCaretPos(2, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if err := e.Delete(false); err != nil {
		t.Errorf("delete at end: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Text() != "b" {
		t.Errorf("expected %q, got %q", "b", e.Text())
	}
	if e.Caret().Index != 1 {
		t.Errorf("expected caret 1, got %v", e.Caret())
	}
	if len(sink.records) != 2 {
		t.Errorf("expected 2 records, got %d", len(sink.records))
	}
}

func TestDeleteGraphemeCluster(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "ae\u0301x")

	if err := e.SetCaretPos(3, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Text() != "ax" {
		t.Errorf("expected %q, got %q", "ax", e.Text())
	}
	if err := e.MoveCaretPos(Right, false); err != nil {
		t.Fatalf("MoveCaretPos: %v", err)
	}
	if e.Caret().Index != 2 {
		t.Errorf("expected caret 2, got %v", e.Caret())
	}
}

func TestDeleteJoinsParagraphs(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "ab\ncd\nef")

	if err := e.SetCaretPos(3, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Text() != "abcd\nef" {
		t.Errorf("expected %q, got %q", "abcd\nef", e.Text())
	}
	if e.CountParagraphs() != 2 {
		t.Errorf("expected 2 paragraphs, got %d", e.CountParagraphs())
	}
	checkParagraphs(t, e)

	if err := e.DeleteRange(1, 5); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if e.Text() != "af" {
		t.Errorf("expected %q, got %q", "af", e.Text())
	}
	checkParagraphs(t, e)
}

func TestDeleteMultipleRanges(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abcdef")

	if err := e.AddSelRange(0, 1); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.AddSelRange(3, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.Delete(false); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if e.Text() != "bcf" {
		t.Errorf("expected %q, got %q", "bcf", e.Text())
	}
	if e.Caret().Index != 0 {
		t.Errorf("expected caret 0, got %v", e.Caret())
	}
	if e.HasSelection() {
		t.Error("expected selection to be cleared")
	}
	if len(sink.records) != 2 || sink.records[0].Group() != sink.records[1].Group() {
		t.Errorf("expected two grouped records, got %v", sink.records)
	}
}

func TestDeleteRangeOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "abc")
	if err := e.DeleteRange(2, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := e.DeleteRange(-1, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestClearText(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "one\ntwo")
	if err := e.ClearText(); err != nil {
		t.Fatalf("ClearText: %v", err)
	}
	if e.TextLength() != 0 || e.CountParagraphs() != 1 {
		t.Errorf("expected empty document, got %q with %d paragraphs", e.Text(), e.CountParagraphs())
	}
	if len(sink.records) != 1 {
		t.Errorf("expected 1 record, got %d", len(sink.records))
	}

	if err := e.ClearText(); err != nil {
		t.Fatalf("ClearText on empty: %v", err)
	}
	if len(sink.records) != 1 {
		t.Errorf("expected no record for an empty document, got %d", len(sink.records))
	}
}

func TestReplace(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "hello world")

	if err := e.Replace(6, 5, "there"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if e.Text() != "hello there" {
		t.Errorf("expected %q, got %q", "hello there", e.Text())
	}
	if e.Caret().Index != 11 {
		t.Errorf("expected caret 11, got %v", e.Caret())
	}
	if err := sink.stack.Undo(e); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.Text() != "hello world" {
		t.Errorf("expected %q after undo, got %q", "hello world", e.Text())
	}
	if err := e.Replace(3, 20, "x"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

// ============================================================================
// Validation and Area Limits
// ============================================================================

func TestValidationRejects(t *testing.T) {
	p := DefaultParams()
	p.Validate = true
	e, sink := newTestEngine(t, p, "a\r\nb")

	var candidates []string
	sink.accept = func(candidate string) bool {
		candidates = append(candidates, candidate)
		return !strings.Contains(candidate, "!")
	}

	if err := e.SetCaretPos(3, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if _, err := e.Insert("c"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := e.Insert("!"); !errors.Is(err, ErrInvalidated) {
		t.Errorf("expected ErrInvalidated, got %v", err)
	}
	if e.Text() != "a\r\nbc" {
		t.Errorf("expected %q, got %q", "a\r\nbc", e.Text())
	}
	if len(sink.records) != 1 {
		t.Errorf("expected only the accepted edit to be recorded, got %d", len(sink.records))
	}
	if diff := cmp.Diff([]string{"a\r\nbc", "a\r\nbc!"}, candidates); diff != "" {
		t.Errorf("candidates (-want +got):\n%s", diff)
	}

	sink.accept = func(string) bool { return false }
	if err := e.Delete(true); !errors.Is(err, ErrInvalidated) {
		t.Errorf("expected ErrInvalidated from Delete, got %v", err)
	}
}

func TestAreaLimitHorizontal(t *testing.T) {
	p := DefaultParams()
	p.LimitAreaHorizontal = true
	p.PlateWidth = 20
	e, _ := newTestEngine(t, p, "")

	n, err := e.Insert("abcdef")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n != 4 || e.Text() != "abcd" {
		t.Errorf("expected 4 chars %q, got %d %q", "abcd", n, e.Text())
	}

	_, err = e.Insert("z")
	if !errors.Is(err, ErrAreaOverflow) {
		t.Errorf("expected ErrAreaOverflow, got %v", err)
	}
	if !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrAreaOverflow to wrap ErrFull, got %v", err)
	}
}

func TestAreaLimitVertical(t *testing.T) {
	p := DefaultParams()
	p.LimitAreaVertical = true
	p.LinesPerPage = 2
	e, _ := newTestEngine(t, p, "")

	n, err := e.Insert("a\nb\nc")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n != 3 || e.Text() != "a\nb" {
		t.Errorf("expected 3 chars %q, got %d %q", "a\nb", n, e.Text())
	}
}

// ============================================================================
// Locking
// ============================================================================

func TestReentrantCallIsLocked(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "")

	var inner error
	var state State
	sink.onChange = func(string) {
		state = e.State()
		_, inner = e.Insert("again")
	}
	if _, err := e.Insert("x"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !errors.Is(inner, ErrLocked) {
		t.Errorf("expected ErrLocked from re-entrant call, got %v", inner)
	}
	if state != LayingOut {
		t.Errorf("expected LayingOut during callback, got %v", state)
	}
	if e.IsLocked() {
		t.Error("expected engine to unlock after the call")
	}
	if e.Text() != "x" {
		t.Errorf("expected %q, got %q", "x", e.Text())
	}
}

// ============================================================================
// Layout and Pages
// ============================================================================

func TestLayoutPagination(t *testing.T) {
	p := DefaultParams()
	p.LinesPerPage = 1
	e, _ := newTestEngine(t, p, "line1\nline2\nline3")

	if err := e.Layout(); err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if e.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", e.LineCount())
	}
	if e.CountPages() != 3 {
		t.Errorf("expected 3 pages, got %d", e.CountPages())
	}

	pg, err := e.Page(1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if pg.CharStart() != 6 || pg.CharCount() != 6 {
		t.Errorf("expected page 1 at [6, 12), got start %d count %d", pg.CharStart(), pg.CharCount())
	}
	if _, err := e.Page(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestPagesFollowEdits(t *testing.T) {
	p := DefaultParams()
	p.LinesPerPage = 2
	e, _ := newTestEngine(t, p, "a")

	if _, err := e.Insert("\n\n\n"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if e.CountPages() != 2 {
		t.Errorf("expected 2 pages, got %d", e.CountPages())
	}
	if e.CaretPage() != 1 {
		t.Errorf("expected caret on page 1, got %d", e.CaretPage())
	}
	if err := e.DeleteRange(0, -1); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if e.CountPages() != 1 {
		t.Errorf("expected 1 page, got %d", e.CountPages())
	}
	checkParagraphs(t, e)
}

func TestWrapLineCount(t *testing.T) {
	p := DefaultParams()
	p.AutoLineWrap = true
	p.PlateWidth = 20
	e, _ := newTestEngine(t, p, "aaaa bbbb")

	if e.LineCount() != 2 {
		t.Errorf("expected 2 lines, got %d", e.LineCount())
	}
	checkParagraphs(t, e)
}

func TestWithPageNotifies(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abc")
	sink.loads, sink.unloads = nil, nil

	var lines int
	if err := e.WithPage(0, func(pg *page.Page) { lines = pg.LineCount() }); err != nil {
		t.Fatalf("WithPage: %v", err)
	}
	if lines != 1 {
		t.Errorf("expected 1 line, got %d", lines)
	}
	if diff := cmp.Diff([]int{0}, sink.loads); diff != "" {
		t.Errorf("loads (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, sink.unloads); diff != "" {
		t.Errorf("unloads (-want +got):\n%s", diff)
	}
	if err := e.WithPage(5, func(*page.Page) {}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestCaretRect(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "abc")

	if diff := cmp.Diff(Rect{Left: 0, Top: 0, Width: 1, Height: 10}, e.CaretRect()); diff != "" {
		t.Errorf("caret rect at 0 (-want +got):\n%s", diff)
	}
	if err := e.SetCaretPos(3, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if diff := cmp.Diff(Rect{Left: 14, Top: 0, Width: 1, Height: 10}, e.CaretRect()); diff != "" {
		t.Errorf("caret rect at end (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Caret Movement
// ============================================================================

func TestSetCaretPosClamps(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abc")

	if err := e.SetCaretPos(50, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if e.Caret().Index != 3 {
		t.Errorf("expected caret 3, got %v", e.Caret())
	}
	if err := e.SetCaretPos(1, false); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if diff := cmp.Diff(Caret{Index: 2, Before: true}, e.Caret()); diff != "" {
		t.Errorf("caret (-want +got):\n%s", diff)
	}
	if sink.carets != 2 {
		t.Errorf("expected 2 caret notifications, got %d", sink.carets)
	}
}

func TestMoveCaretPos(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "abc\ndef")

	steps := []struct {
		dir  Direction
		want int
	}{
		{Right, 1},
		{Down, 5},
		{Up, 1},
		{Up, 1},
		{LineEnd, 3},
		{Right, 4},
		{LineEnd, 7},
		{LineStart, 4},
		{Left, 3},
		{ParagraphStart, 0},
		{ParagraphEnd, 3},
		{DocumentEnd, 7},
		{DocumentStart, 0},
		{Left, 0},
	}
	for i, s := range steps {
		if err := e.MoveCaretPos(s.dir, false); err != nil {
			t.Fatalf("step %d %v: %v", i, s.dir, err)
		}
		if e.Caret().Index != s.want {
			t.Errorf("step %d %v: expected caret %d, got %v", i, s.dir, s.want, e.Caret())
		}
	}
}

func TestMoveCaretAcrossPages(t *testing.T) {
	p := DefaultParams()
	p.LinesPerPage = 1
	e, _ := newTestEngine(t, p, "a\nb")

	if err := e.SetCaretPos(2, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if e.CaretPage() != 1 {
		t.Fatalf("expected caret on page 1, got %d", e.CaretPage())
	}
	if err := e.MoveCaretPos(Up, false); err != nil {
		t.Fatalf("MoveCaretPos: %v", err)
	}
	if e.Caret().Index != 0 || e.CaretPage() != 0 {
		t.Errorf("expected caret 0 on page 0, got %v on page %d", e.Caret(), e.CaretPage())
	}
	if err := e.MoveCaretPos(Down, false); err != nil {
		t.Fatalf("MoveCaretPos: %v", err)
	}
	if e.Caret().Index != 2 || e.CaretPage() != 1 {
		t.Errorf("expected caret 2 on page 1, got %v on page %d", e.Caret(), e.CaretPage())
	}
}

func TestMoveCaretExtendsSelection(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abcdef")

	for i := 0; i < 2; i++ {
		if err := e.MoveCaretPos(Right, true); err != nil {
			t.Fatalf("MoveCaretPos: %v", err)
		}
	}
	r, err := e.SelRange(0)
	if err != nil {
		t.Fatalf("SelRange: %v", err)
	}
	if diff := cmp.Diff(Range{Start: 0, Count: 2}, r); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	if e.CountSelRanges() != 1 {
		t.Errorf("expected 1 range, got %d", e.CountSelRanges())
	}

	if err := e.MoveCaretPos(Left, true); err != nil {
		t.Fatalf("MoveCaretPos: %v", err)
	}
	r, _ = e.SelRange(0)
	if diff := cmp.Diff(Range{Start: 0, Count: 1}, r); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}

	if err := e.MoveCaretPos(Right, false); err != nil {
		t.Fatalf("MoveCaretPos: %v", err)
	}
	if e.HasSelection() {
		t.Error("expected selection to be cleared")
	}
	if sink.sels != 4 {
		t.Errorf("expected 4 selection notifications, got %d", sink.sels)
	}
}

// ============================================================================
// Selection
// ============================================================================

func TestSelectionRanges(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "abcdefgh")

	if err := e.AddSelRange(1, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.AddSelRange(3, 1); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.AddSelRange(6, -1); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	want := []Range{{Start: 1, Count: 3}, {Start: 6, Count: 2}}
	if diff := cmp.Diff(want, e.sel.All()); diff != "" {
		t.Errorf("ranges (-want +got):\n%s", diff)
	}
	for idx, want := range map[int]bool{0: false, 1: true, 3: true, 4: false, 6: true, 7: true, 8: false} {
		if e.IsSelected(idx) != want {
			t.Errorf("IsSelected(%d): expected %v", idx, want)
		}
	}

	if err := e.AddSelRange(7, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := e.RemoveSelRange(1, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected partial remove to fail, got %v", err)
	}
	if err := e.RemoveSelRange(1, 3); err != nil {
		t.Errorf("RemoveSelRange: %v", err)
	}
	if _, err := e.SelRange(1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	if err := e.SelectAll(); err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if diff := cmp.Diff([]Range{{Start: 0, Count: 8}}, e.sel.All()); diff != "" {
		t.Errorf("ranges (-want +got):\n%s", diff)
	}
	if err := e.ClearSelection(); err != nil {
		t.Fatalf("ClearSelection: %v", err)
	}
	if e.HasSelection() {
		t.Error("expected no selection")
	}
}

func TestSelectionRects(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "abcdef")
	if err := e.AddSelRange(1, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	rects, err := e.SelectionRects(0)
	if err != nil {
		t.Fatalf("SelectionRects: %v", err)
	}
	want := []Rect{{Left: 5, Top: 0, Width: 10, Height: 10}}
	if diff := cmp.Diff(want, rects); diff != "" {
		t.Errorf("rects (-want +got):\n%s", diff)
	}
}

func TestWordAt(t *testing.T) {
	e, _ := newTestEngine(t, DefaultParams(), "hello brave\nworld")

	tests := []struct {
		index, start, count int
	}{
		{0, 0, 5},
		{3, 0, 5},
		{5, 5, 1},
		{8, 6, 5},
		{11, 11, 0},
		{14, 12, 5},
	}
	for _, tt := range tests {
		start, count := e.WordAt(tt.index)
		if start != tt.start || count != tt.count {
			t.Errorf("WordAt(%d) = (%d, %d), want (%d, %d)", tt.index, start, count, tt.start, tt.count)
		}
	}
}

// ============================================================================
// Undo and Redo
// ============================================================================

func TestUndoRedoSymmetry(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "hello")

	if err := e.SetCaretPos(5, true); err != nil {
		t.Fatalf("SetCaretPos: %v", err)
	}
	if _, err := e.Insert(" world\nagain"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.AddSelRange(0, 5); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if _, err := e.Insert("HELLO"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	final := e.Text()
	if final != "HELL world\nagain" {
		t.Fatalf("expected %q, got %q", "HELL world\nagain", final)
	}
	if sink.stack.UndoCount() != 3 {
		t.Fatalf("expected 3 undo entries, got %d", sink.stack.UndoCount())
	}

	states := []string{"HELLO world\nagain", "hello world\nagain", "hello"}
	for i, want := range states {
		if err := sink.stack.Undo(e); err != nil {
			t.Fatalf("Undo %d: %v", i, err)
		}
		if e.Text() != want {
			t.Errorf("after undo %d: expected %q, got %q", i, want, e.Text())
		}
		checkParagraphs(t, e)
	}
	if e.Caret().Index != 5 {
		t.Errorf("expected caret 5 after undoing everything, got %v", e.Caret())
	}

	for sink.stack.CanRedo() {
		if err := sink.stack.Redo(e); err != nil {
			t.Fatalf("Redo: %v", err)
		}
		checkParagraphs(t, e)
	}
	if e.Text() != final {
		t.Errorf("expected %q after redo, got %q", final, e.Text())
	}
}

func TestUndoRestoresSelection(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "abcdef")

	if err := e.AddSelRange(0, 1); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.AddSelRange(3, 2); err != nil {
		t.Fatalf("AddSelRange: %v", err)
	}
	if err := e.Delete(true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := sink.stack.Undo(e); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.Text() != "abcdef" {
		t.Errorf("expected %q, got %q", "abcdef", e.Text())
	}
	want := []Range{{Start: 0, Count: 1}, {Start: 3, Count: 2}}
	if diff := cmp.Diff(want, e.sel.All()); diff != "" {
		t.Errorf("restored selection (-want +got):\n%s", diff)
	}
}

func TestUndoOutOfRange(t *testing.T) {
	e, sink := newTestEngine(t, DefaultParams(), "")
	if _, err := e.Insert("abc"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	rec := sink.records[0]
	if err := e.SetText(""); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := e.Undo(rec); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestEditSequenceKeepsInvariants(t *testing.T) {
	p := DefaultParams()
	p.AutoLineWrap = true
	p.PlateWidth = 30
	p.LinesPerPage = 2
	e, _ := newTestEngine(t, p, "")

	edits := []func() error{
		func() error { _, err := e.Insert("the quick brown fox"); return err },
		func() error { return e.SetCaretPos(4, true) },
		func() error { _, err := e.Insert("\n\n"); return err },
		func() error { return e.DeleteRange(2, 6) },
		func() error { _, err := e.Insert("jumps\nover"); return err },
		func() error { return e.MoveCaretPos(DocumentStart, false) },
		func() error { return e.Delete(false) },
		func() error { return e.Replace(0, 3, "a\nb\nc") },
		func() error { return e.Layout() },
	}
	for i, edit := range edits {
		if err := edit(); err != nil {
			t.Fatalf("edit %d: %v", i, err)
		}
		checkParagraphs(t, e)
		if got := strings.Count(e.Text(), "\n") + 1; got != e.CountParagraphs() {
			t.Errorf("edit %d: %d paragraphs for %d terminators", i, e.CountParagraphs(), got-1)
		}
		if e.Caret().Index > e.TextLength() {
			t.Errorf("edit %d: caret %v past end %d", i, e.Caret(), e.TextLength())
		}
	}
}

func TestCompactPacksChunks(t *testing.T) {
	e := New(WithChunkSize(4))
	if err := e.SetText(strings.Repeat("a", 12)); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	// 12 characters plus the end-of-text terminator.
	if e.ChunkCount() != 4 {
		t.Errorf("expected 4 chunks, got %d", e.ChunkCount())
	}

	if err := e.DeleteRange(0, 8); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	e.Compact()

	if e.ChunkCount() != 2 {
		t.Errorf("expected 2 chunks after compact, got %d", e.ChunkCount())
	}
	if e.Text() != "aaaa" {
		t.Errorf("expected 'aaaa', got %q", e.Text())
	}
	checkParagraphs(t, e)
}

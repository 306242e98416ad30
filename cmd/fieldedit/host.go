package main

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/fieldedit/internal/engine"
	"github.com/dshills/fieldedit/internal/engine/history"
	"github.com/dshills/fieldedit/internal/engine/page"
	"github.com/dshills/fieldedit/internal/script"
)

// errQuit ends the event loop normally.
var errQuit = errors.New("quit")

// reloadEvent carries reloaded settings onto the event loop.
type reloadEvent struct {
	tcell.EventTime
	params engine.Params
	err    error
}

// host owns the terminal, the engine and the undo stack. It is the
// engine's event sink.
type host struct {
	engine.NopSink

	screen    tcell.Screen
	e         *engine.Engine
	undo      *history.Stack
	validator *script.Validator
	logger    *zap.Logger

	status  string
	pasting bool
	paste   []rune
}

func newHost(screen tcell.Screen, params engine.Params, validator *script.Validator, logger *zap.Logger) *host {
	h := &host{
		screen:    screen,
		undo:      history.NewStack(history.DefaultMaxEntries),
		validator: validator,
		logger:    logger,
	}
	h.e = engine.New(
		engine.WithParams(params),
		engine.WithSink(h),
		engine.WithLogger(logger),
	)
	return h
}

func (h *host) OnAddUndoRecord(rec history.Record) {
	h.undo.Push(rec)
}

func (h *host) OnValidate(candidate string) bool {
	if h.validator == nil {
		return true
	}
	return h.validator.Accept(candidate)
}

func (h *host) OnTextChanged(prev string) {
	h.logger.Debug("text changed",
		zap.Int("from", len([]rune(prev))),
		zap.Int("to", h.e.TextLength()))
}

// Run draws the field and dispatches events until the user quits.
func (h *host) Run() error {
	for {
		h.draw()
		if err := h.handleEvent(h.screen.PollEvent()); err != nil {
			return err
		}
	}
}

func (h *host) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case nil, *tcell.EventInterrupt:
		return errQuit
	case *tcell.EventResize:
		h.screen.Sync()
	case *tcell.EventPaste:
		if ev.Start() {
			h.pasting, h.paste = true, h.paste[:0]
		} else if ev.End() {
			h.pasting = false
			h.report(h.insert(string(h.paste)))
		}
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *reloadEvent:
		if ev.err == nil {
			ev.err = h.e.SetParams(ev.params)
		}
		if ev.err != nil {
			h.status = fmt.Sprintf("reload: %v", ev.err)
		} else {
			h.status = "settings reloaded"
		}
	}
	return nil
}

func (h *host) handleKey(ev *tcell.EventKey) error {
	if h.pasting {
		switch ev.Key() {
		case tcell.KeyRune:
			h.paste = append(h.paste, ev.Rune())
		case tcell.KeyEnter:
			h.paste = append(h.paste, '\n')
		case tcell.KeyTab:
			h.paste = append(h.paste, '\t')
		}
		return nil
	}

	extend := ev.Modifiers()&tcell.ModShift != 0
	ctrl := ev.Modifiers()&tcell.ModCtrl != 0
	h.status = ""

	var err error
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return errQuit
	case tcell.KeyLeft:
		err = h.e.MoveCaretPos(engine.Left, extend)
	case tcell.KeyRight:
		err = h.e.MoveCaretPos(engine.Right, extend)
	case tcell.KeyUp:
		if ctrl {
			err = h.e.MoveCaretPos(engine.ParagraphStart, extend)
		} else {
			err = h.e.MoveCaretPos(engine.Up, extend)
		}
	case tcell.KeyDown:
		if ctrl {
			err = h.e.MoveCaretPos(engine.ParagraphEnd, extend)
		} else {
			err = h.e.MoveCaretPos(engine.Down, extend)
		}
	case tcell.KeyHome:
		if ctrl {
			err = h.e.MoveCaretPos(engine.DocumentStart, extend)
		} else {
			err = h.e.MoveCaretPos(engine.LineStart, extend)
		}
	case tcell.KeyEnd:
		if ctrl {
			err = h.e.MoveCaretPos(engine.DocumentEnd, extend)
		} else {
			err = h.e.MoveCaretPos(engine.LineEnd, extend)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		err = h.e.Delete(true)
	case tcell.KeyDelete:
		err = h.e.Delete(false)
	case tcell.KeyCtrlZ:
		err = h.undo.Undo(h.e)
	case tcell.KeyCtrlY:
		err = h.undo.Redo(h.e)
	case tcell.KeyCtrlA:
		err = h.e.SelectAll()
	case tcell.KeyCtrlW:
		err = h.selectWord()
	case tcell.KeyEnter:
		err = h.insert("\n")
	case tcell.KeyTab:
		err = h.insert("\t")
	case tcell.KeyRune:
		err = h.insert(string(ev.Rune()))
	}
	h.report(err)
	return nil
}

func (h *host) insert(text string) error {
	n, err := h.e.Insert(text)
	if err == nil && n < len([]rune(text)) {
		h.status = fmt.Sprintf("clipped to %d characters", n)
	}
	return err
}

func (h *host) selectWord() error {
	start, count := h.e.WordAt(h.e.Caret().Index)
	if count == 0 {
		return nil
	}
	if err := h.e.ClearSelection(); err != nil {
		return err
	}
	return h.e.AddSelRange(start, count)
}

// report shows an edit error on the status line.
func (h *host) report(err error) {
	if err == nil {
		return
	}
	h.status = err.Error()
	if !errors.Is(err, history.ErrNothingToUndo) && !errors.Is(err, history.ErrNothingToRedo) {
		h.logger.Debug("edit failed", zap.Error(err))
	}
}

// draw renders the caret's page, the selection, the caret and a status line.
func (h *host) draw() {
	s := h.screen
	s.Clear()
	_, height := s.Size()

	p := h.e.Params()
	cell := p.FontSize / 2
	normal := tcell.StyleDefault
	selected := normal.Reverse(true)

	pageIdx := h.e.CaretPage()
	_ = h.e.WithPage(pageIdx, func(pg *page.Page) {
		start := pg.CharStart()
		for row, ln := range pg.Lines() {
			if row >= height-1 {
				break
			}
			for i := ln.Start; i < ln.Start+ln.Count; i++ {
				r := []rune(h.e.DisplayText(i, 1))
				if len(r) == 0 || r[0] == '\n' || r[0] == '\r' {
					continue
				}
				if r[0] == '\t' {
					r[0] = ' '
				}
				rect, _ := pg.CharRect(i-start, p.CombText)
				style := normal
				if h.e.IsSelected(i) {
					style = selected
				}
				s.SetContent(column(rect.Left, cell), row, r[0], nil, style)
			}
		}
	})

	caret := h.e.CaretRect()
	s.ShowCursor(column(caret.Left, cell), int(caret.Top/p.LineSpace))

	status := fmt.Sprintf(" page %d/%d  caret %d  length %d  undo %d ",
		pageIdx+1, h.e.CountPages(), h.e.Caret().Index, h.e.TextLength(), h.undo.UndoCount())
	if at, ok := h.undo.LastEdit(); ok {
		status += "edited " + at.Format(time.TimeOnly) + " "
	}
	if h.status != "" {
		status += " " + h.status
	}
	bar := normal.Reverse(true)
	x := 0
	for _, r := range status {
		s.SetContent(x, height-1, r, nil, bar)
		x++
	}
	s.Show()
}

// column converts a layout x coordinate into a terminal column.
func column(x, cell float64) int {
	if cell <= 0 {
		return int(x)
	}
	return int(math.Round(x / cell))
}

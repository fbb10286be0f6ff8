// Package undo provides command-pattern editing history. Commands
// replay through the engine, so undoing an edit recalculates
// dependents the same way the original edit did.
package undo

import (
	"fmt"

	"github.com/gregoriobaldi/tesi/internal/cell"
)

// Editor is the engine surface commands act on.
type Editor interface {
	SetCell(addr cell.Address, raw string) error
	GetRawText(addr cell.Address) string
}

// Command is one undoable edit.
type Command interface {
	Execute() error
	Undo() error
	Description() string
}

// SetCell builds a command that writes raw text to a cell, capturing
// the current text for undo.
func SetCell(ed Editor, addr cell.Address, raw string) Command {
	return &setCellCommand{
		ed:   ed,
		addr: addr,
		new:  raw,
		old:  ed.GetRawText(addr),
	}
}

type setCellCommand struct {
	ed   Editor
	addr cell.Address
	new  string
	old  string
}

func (c *setCellCommand) Execute() error {
	return c.ed.SetCell(c.addr, c.new)
}

func (c *setCellCommand) Undo() error {
	return c.ed.SetCell(c.addr, c.old)
}

func (c *setCellCommand) Description() string {
	return fmt.Sprintf("set %s", c.addr)
}

// Macro groups commands into one undo step. Execute rolls back the
// already-applied commands when a later one fails.
func Macro(description string, cmds ...Command) Command {
	return &macroCommand{desc: description, cmds: cmds}
}

type macroCommand struct {
	desc string
	cmds []Command
}

func (m *macroCommand) Execute() error {
	for i, cmd := range m.cmds {
		if err := cmd.Execute(); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = m.cmds[j].Undo()
			}
			return fmt.Errorf("%s: %w", cmd.Description(), err)
		}
	}
	return nil
}

func (m *macroCommand) Undo() error {
	for i := len(m.cmds) - 1; i >= 0; i-- {
		if err := m.cmds[i].Undo(); err != nil {
			return fmt.Errorf("%s: %w", m.cmds[i].Description(), err)
		}
	}
	return nil
}

func (m *macroCommand) Description() string {
	return m.desc
}

// History is a bounded undo stack with a redo stack that clears on
// every new command.
type History struct {
	limit int
	undo  []Command
	redo  []Command
}

// NewHistory caps the undo stack at limit commands; zero or negative
// means 100.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 100
	}
	return &History{limit: limit}
}

// Do executes a command and records it. Failed commands are not
// recorded.
func (h *History) Do(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	h.undo = append(h.undo, cmd)
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
	return nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo reverts the most recent command. A failed undo keeps the
// command on the stack.
func (h *History) Undo() error {
	if !h.CanUndo() {
		return fmt.Errorf("nothing to undo")
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Undo(); err != nil {
		return err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	return nil
}

// Redo reapplies the most recently undone command.
func (h *History) Redo() error {
	if !h.CanRedo() {
		return fmt.Errorf("nothing to redo")
	}
	cmd := h.redo[len(h.redo)-1]
	if err := cmd.Execute(); err != nil {
		return err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cmd)
	return nil
}

// PeekUndo describes the command Undo would revert.
func (h *History) PeekUndo() (string, bool) {
	if !h.CanUndo() {
		return "", false
	}
	return h.undo[len(h.undo)-1].Description(), true
}

// PeekRedo describes the command Redo would reapply.
func (h *History) PeekRedo() (string, bool) {
	if !h.CanRedo() {
		return "", false
	}
	return h.redo[len(h.redo)-1].Description(), true
}

// Clear drops all history.
func (h *History) Clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

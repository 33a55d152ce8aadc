package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ganttline/ganttline/engine"
	"github.com/ganttline/ganttline/models"
)

// RunEditSession starts the interactive timeline editor over an engine that
// has already loaded the project. The save callback runs once on exit with
// the final project state; push, when non-nil, runs after every applied
// change set.
func RunEditSession(eng *engine.Engine, save func(models.Project) error, push func(models.Project)) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("the edit session requires a TTY")
	}

	model := newEditModel(eng)
	model.push = push
	program := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	m, ok := finalModel.(*editModel)
	if !ok {
		return nil
	}
	if m.dirty && save != nil {
		if err := save(eng.Project()); err != nil {
			return fmt.Errorf("save project on exit: %w", err)
		}
	}
	return nil
}

type editModel struct {
	eng      *engine.Engine
	sel      int // lane of the selected task
	status   string
	linkFrom string // pending dependency source task id
	showHelp bool
	dirty    bool
	width    int
	adding   bool
	input    textinput.Model
	push     func(models.Project)
}

func newEditModel(eng *engine.Engine) *editModel {
	input := textinput.New()
	input.Placeholder = "task name"
	input.CharLimit = 20
	input.Width = 24
	return &editModel{eng: eng, width: 100, input: input}
}

func (m *editModel) Init() tea.Cmd {
	return nil
}

// selected returns the task occupying the selection lane.
func (m *editModel) selected() (models.Task, bool) {
	for _, t := range m.eng.All() {
		if t.Lane == m.sel {
			return t, true
		}
	}
	return models.Task{}, false
}

func (m *editModel) clampSelection() {
	count := len(m.eng.All())
	if count == 0 {
		m.sel = 0
		return
	}
	if m.sel >= count {
		m.sel = count - 1
	}
	if m.sel < 0 {
		m.sel = 0
	}
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *editModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.handleAddKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "a":
		m.adding = true
		m.input.SetValue("")
		m.status = ""
		return m, m.input.Focus()
	case "h", "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "up", "k":
		m.sel--
		m.clampSelection()
		m.status = ""
		return m, nil
	case "down", "j":
		m.sel++
		m.clampSelection()
		m.status = ""
		return m, nil
	case "left":
		m.shiftSelected(-1)
		return m, nil
	case "right":
		m.shiftSelected(1)
		return m, nil
	case "+", "=":
		m.resizeSelected(1)
		return m, nil
	case "-":
		m.resizeSelected(-1)
		return m, nil
	case "K", "shift+up":
		m.moveSelectedLane(-1)
		return m, nil
	case "J", "shift+down":
		m.moveSelectedLane(1)
		return m, nil
	case "d":
		m.toggleDependency()
		return m, nil
	case "u":
		if cs := m.eng.Undo(); cs != nil {
			m.afterChange(*cs, "undone")
		} else {
			m.status = "nothing to undo"
		}
		return m, nil
	case "r":
		if cs := m.eng.Redo(); cs != nil {
			m.afterChange(*cs, "redone")
		} else {
			m.status = "nothing to redo"
		}
		return m, nil
	}
	return m, nil
}

// handleAddKey routes keys to the name input while a new task is being
// entered.
func (m *editModel) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.adding = false
		m.input.Blur()
		m.status = ""
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		if name == "" {
			m.status = "task name cannot be empty"
			return m, nil
		}
		start := engine.Today(time.Now())
		task, err := m.eng.CreateTask(models.KindTask, name, start, start+4, len(m.eng.All()))
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.sel = task.Lane
		m.dirty = true
		if m.push != nil {
			m.push(m.eng.Project())
		}
		m.status = fmt.Sprintf("added %q", task.Name)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *editModel) shiftSelected(days int64) {
	t, ok := m.selected()
	if !ok {
		return
	}
	cs, err := m.eng.MoveOrResize(t.ID, t.Lane, t.Start+days, t.End+days)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.afterChange(cs, fmt.Sprintf("moved %q", t.Name))
}

func (m *editModel) resizeSelected(days int64) {
	t, ok := m.selected()
	if !ok {
		return
	}
	end := t.End + days
	if end < t.Start {
		end = t.Start
	}
	cs, err := m.eng.MoveOrResize(t.ID, t.Lane, t.Start, end)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.afterChange(cs, fmt.Sprintf("resized %q", t.Name))
}

func (m *editModel) moveSelectedLane(delta int) {
	t, ok := m.selected()
	if !ok {
		return
	}
	lane := t.Lane + delta
	if lane < 0 || lane >= len(m.eng.All()) {
		return
	}
	cs, err := m.eng.MoveOrResize(t.ID, lane, t.Start, t.End)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.sel = lane
	m.afterChange(cs, fmt.Sprintf("moved %q to lane %d", t.Name, lane))
}

// toggleDependency arms the link on first press and toggles the edge from
// the armed task to the current selection on the second.
func (m *editModel) toggleDependency() {
	t, ok := m.selected()
	if !ok {
		return
	}
	if m.linkFrom == "" {
		m.linkFrom = t.ID
		m.status = fmt.Sprintf("linking from %q, select the dependent task and press d", t.Name)
		return
	}
	from := m.linkFrom
	m.linkFrom = ""
	cs, err := m.eng.ToggleEdge(from, t.ID)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.afterChange(cs, fmt.Sprintf("toggled dependency onto %q", t.Name))
}

func (m *editModel) afterChange(cs engine.ChangeSet, action string) {
	m.dirty = true
	m.clampSelection()
	if m.push != nil {
		m.push(m.eng.Project())
	}
	if cs.Reload {
		m.status = fmt.Sprintf("%s, timeline window shifted, %d task(s) updated", action, len(cs.IDs))
		return
	}
	m.status = fmt.Sprintf("%s, %d task(s) updated", action, len(cs.IDs))
}

func (m *editModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("ganttline: %s", m.eng.Project().Name)))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(helpText())
		return b.String()
	}

	b.WriteString(renderTimeline(m.eng.All(), m.eng.Window(), m.width, m.sel))
	b.WriteString("\n")

	if m.adding {
		b.WriteString("New task: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(StyleFooter.Render("arrows move | +/- resize | J/K lane | a add | d link | u undo | r redo | h help | q quit"))
	b.WriteString("\n")
	return b.String()
}

func helpText() string {
	return StyleText.Render(`Keyboard Shortcuts

  up/k, down/j   Select task
  a              Add a task starting today
  left, right    Shift task by one day (dependents follow)
  +, -           Grow or shrink the task by one day
  K, J           Move task one lane up or down
  d              Arm a dependency link, press again on the target
  u              Undo
  r              Redo
  h, ?           Toggle this help
  q, ctrl+c      Quit and save
`)
}

package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/cfgconv/lang"
	"github.com/ardnew/cfgconv/log"
)

// editDoneMsg is sent when an edit produced a new session.
type editDoneMsg struct{ session *lang.Session }

// editCancelledMsg is sent when the user emptied the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to fix a parse error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit failed for a reason other than parsing.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	contPrompt = "… "
	ctrlPrompt = " :"

	// queryPrefix marks an eval-mode line as a query expression.
	queryPrefix = "?"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this help
  list     List constants and dictionaries
  doc      Print the session document
  edit     Edit the session source in $EDITOR
  reset    Discard the session
  clear    Clear screen
  quit     Exit REPL

Usage:
  Declare constants and dictionaries as in a source file:
    15 -> a;
    begin server
      port := @[a 8000 +];
    end;
  Type a value such as @[a 2 *] or {1.2.3} to evaluate it
  Prefix a line with ? to run a query, e.g. ?server.port + 1
  Press Tab / Shift-Tab to cycle through completions
  Press Esc to toggle between eval and command modes
  Use Up/Down for history, Shift+Up/Shift+Down within the current mode
  Press Ctrl+C on an empty line or Ctrl+D to exit`

// inputMode is the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *lang.Session
	opts         []lang.Option
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	saved        [2]struct {
		text   string
		cursor int
	} // input of the inactive mode, indexed by inputMode
}

// Run starts the REPL on an interactive terminal. A non-empty source is
// loaded into the session first and must parse.
func Run(
	ctx context.Context,
	source string,
	cacheDir string,
	logger log.Logger,
	opts ...lang.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts = append([]lang.Option{lang.WithLogger(logger)}, opts...)

	session, err := lang.NewSessionFrom(ctx, source, opts...)
	if err != nil {
		return err
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("dictionaries", session.Document().Len()),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", history.path),
			slog.String("error", err.Error()),
		)
	}

	p := tea.NewProgram(newModel(ctx, session, history, logger, opts...), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	session *lang.Session,
	history *History,
	logger log.Logger,
	opts ...lang.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		opts:       opts,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.session = msg.session
		m.input.Prompt = m.prompt()

		return m, tea.Println(resultStyle.Render("✔ session updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())))

	case strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render(m.hint()))

	case call.inCall && m.mode == modeEval && len(m.matches) == 0:
		if params, ok := signatureOf(call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

// hint is shown below an empty input line.
func (m model) hint() string {
	switch {
	case m.mode == modeCtrl:
		return "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"

	case m.session.Pending():
		return "Inside dictionary (depth " + strconv.Itoa(m.session.Depth()) +
			"), close it with end;"

	default:
		return "Type a declaration, a value, ?query, or press Esc for commands"
	}
}

// prompt returns the styled prompt for the current mode and session state.
func (m model) prompt() string {
	switch {
	case m.mode == modeCtrl:
		return ctrlPromptStyle.Render(ctrlPrompt)

	case m.session.Pending():
		return promptStyle.Render(contPrompt)

	default:
		return promptStyle.Render(evalPrompt)
	}
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(+1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(+1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space ends tab-cycling and keeps the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirming a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the candidate selection by step, starting tab-cycling if
// needed. A single candidate is completed and confirmed at once.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with replacement
// and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))

	m.wordEnd = m.wordStart + len(replacement)
}

// refreshMatches recomputes the matches for the current input. With
// autoConfirm, a sole candidate equal to the typed word is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		replaceCurrentWord(m, candidate)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()

	input := strings.TrimSpace(raw)
	if input == "" {
		return m, nil
	}

	prompt := m.input.Prompt

	m.saved = [2]struct {
		text   string
		cursor int
	}{}
	m.input.SetValue("")
	m.matches = nil

	_ = m.history.Add(input, m.mode)
	m.historyIdx = m.history.Len()

	echo := tea.Println(prompt + inputStyle.Render(raw))

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(echo, input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", input))

	out, err := m.evaluate(raw)

	m.input.Prompt = m.prompt()

	switch {
	case err != nil:
		m.logger.TraceContext(m.ctxFunc(), "repl eval error",
			slog.String("error", err.Error()))

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))

	case out == "":
		return m, echo

	default:
		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
	}
}

// evaluate runs one eval-mode line and returns the text to print.
func (m model) evaluate(raw string) (string, error) {
	ctx := m.ctxFunc()

	if q, ok := strings.CutPrefix(strings.TrimSpace(raw), queryPrefix); ok && !m.session.Pending() {
		result, err := m.session.Document().Query(ctx, q)
		if err != nil {
			return "", err
		}

		return lang.FormatResult(result), nil
	}

	r, err := m.session.Feed(ctx, raw)
	if err != nil {
		return "", err
	}

	m.logger.TraceContext(ctx, "repl eval result",
		slog.String("kind", r.Kind.String()),
		slog.String("name", r.Name),
	)

	switch r.Kind {
	case lang.ResultConstant:
		v, _ := m.session.Document().Constant(r.Name)

		return r.Name + " = " + v.String(), nil

	case lang.ResultDictionary:
		d, _ := m.session.Document().Get(r.Name)

		return "✔ " + r.Name + " " + preview(lang.Value{Kind: lang.KindDictionary, Dict: d}), nil

	case lang.ResultValue:
		return r.Value.String(), nil

	default:
		return "", nil
	}
}

func (m model) executeCommand(echo tea.Cmd, input string) (model, tea.Cmd) {
	parts := strings.Fields(input)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.list()))

	case "d", "doc":
		return m, tea.Sequence(echo, tea.Println(m.document()))

	case "r", "reset":
		m.session.Reset()

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("session cleared")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("unknown command: "+parts[0]+" (try 'help')"),
		))
	}
}

// list renders the constants and then the dictionaries of the session.
func (m model) list() string {
	var b strings.Builder

	doc := m.session.Document()

	for name, v := range doc.Constants() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render("= "+preview(v)))
	}

	for name, d := range doc.All() {
		v := lang.Value{Kind: lang.KindDictionary, Dict: d}
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(v)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (empty)")
	}

	return strings.TrimRight(b.String(), "\n")
}

// document renders the session document in the configuration language.
func (m model) document() string {
	var buf bytes.Buffer

	if err := m.session.Document().Format(m.ctxFunc(), &buf, 2); err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	if buf.Len() == 0 {
		return hintStyle.Render("(empty)")
	}

	return strings.TrimRight(buf.String(), "\n")
}

func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		source:  m.session.Source(),
		opts:    m.opts,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.session == nil:
			return editCancelledMsg{}

		default:
			return editDoneMsg{session: cmd.session}
		}
	})
}

// historyStep moves through history by dir (-1 older, +1 newer). With
// sameMode, entries from the other mode are skipped; otherwise the input
// mode follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, keeping the input of each mode separately.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode].text = m.input.Value()
	m.saved[m.mode].cursor = m.input.Position()

	m.mode = mode
	m.input.Prompt = m.prompt()
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)

	refreshMatches(&m, false)

	return m
}

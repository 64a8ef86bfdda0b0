// Package conversation holds the chat logic of the bot: the multi-step
// progress update flow, the status listing and the static menu and help
// responses. It is independent from the Telegram transport: it consumes
// events and produces replies, persisting per-chat state in a SessionStore.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agalitsyn/progress-bot/internal/model"
)

type EventKind int

const (
	EventCommand EventKind = iota
	EventCallback
	EventText
)

// Event is one inbound user interaction delivered by the transport.
type Event struct {
	ChatID int64
	Kind   EventKind

	// Command is the command name without the leading slash.
	Command string
	// Data is the callback payload of a button press.
	Data string
	// Text is the free-form message text.
	Text string
}

type Button struct {
	Label string
	Data  string
}

// Reply is what the transport should send back. An empty Text means no
// response is needed. How the reply is delivered (new message vs. edit of
// the triggering one) is the transport's choice.
type Reply struct {
	Text           string
	Keyboard       [][]Button
	HTML           bool
	DisablePreview bool
}

const (
	menuText = "🏗️ Project Progress Tracker Bot\n\nChoose a command:"

	helpText = "🤖 Bot Guide:\n\n" +
		"/start - Initialize the bot\n" +
		"/list - Show all project statuses\n" +
		"/update - Modify progress values\n\n" +
		"When updating:\n" +
		"1. Select a project\n" +
		"2. Enter ACTUAL progress (0%-100%)\n" +
		"3. Enter PLANNED progress (0%-100%)\n\n" +
		"Note: Values must be numbers between 0 and 100"

	selectProjectText = "🔧 Select project to update:"
	promptActualText  = "Enter new ACTUAL progress (0% - 100%):"
	promptPlannedText = "Enter new PLANNED progress (0% - 100%):"
	invalidValueText  = "❌ Invalid value! Must be number between 0 and 100\nTry again:"
	canceledText      = "⚠️ Update canceled."
	unknownText       = "Unknown command."
)

type Manager struct {
	projects model.ProjectRepository
	sessions model.SessionStore
	printer  *message.Printer
}

func New(projects model.ProjectRepository, sessions model.SessionStore) *Manager {
	return &Manager{
		projects: projects,
		sessions: sessions,
		printer:  message.NewPrinter(language.English),
	}
}

// Handle routes one event through the conversation state machine. The
// returned reply is always usable even when an error is reported: a
// collaborator failure is already rendered into user-facing text and the
// error is returned for logging only.
func (m *Manager) Handle(ctx context.Context, ev Event) (Reply, error) {
	switch ev.Kind {
	case EventCommand:
		return m.handleCommand(ctx, ev)
	case EventCallback:
		return m.handleCallback(ctx, ev)
	case EventText:
		return m.handleText(ctx, ev)
	default:
		return Reply{}, nil
	}
}

func (m *Manager) handleCommand(ctx context.Context, ev Event) (Reply, error) {
	switch ev.Command {
	case "start":
		return m.Menu(), nil
	case "help":
		return m.Help(), nil
	case "list":
		return m.StatusList(ctx)
	case "update":
		return m.startUpdate(ctx, ev.ChatID)
	case "cancel":
		return m.cancel(ctx, ev.ChatID)
	default:
		return Reply{Text: unknownText}, nil
	}
}

func (m *Manager) handleCallback(ctx context.Context, ev Event) (Reply, error) {
	// Menu buttons mirror the commands.
	switch ev.Data {
	case "cmd_start":
		return m.Menu(), nil
	case "cmd_help":
		return m.Help(), nil
	case "cmd_list":
		return m.StatusList(ctx)
	case "cmd_update":
		return m.startUpdate(ctx, ev.ChatID)
	}

	sess, err := m.sessions.FetchSession(ctx, ev.ChatID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return Reply{}, nil
		}
		return Reply{}, fmt.Errorf("could not fetch session: %w", err)
	}
	if sess.State != model.SessionStateSelectProject {
		// Stale button press from an old keyboard.
		return Reply{}, nil
	}
	return m.selectProject(ctx, sess, ev.Data)
}

func (m *Manager) handleText(ctx context.Context, ev Event) (Reply, error) {
	sess, err := m.sessions.FetchSession(ctx, ev.ChatID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return Reply{}, nil
		}
		return Reply{}, fmt.Errorf("could not fetch session: %w", err)
	}

	switch sess.State {
	case model.SessionStateInputActual:
		return m.inputActual(ctx, sess, ev.Text)
	case model.SessionStateInputPlanned:
		return m.inputPlanned(ctx, sess, ev.Text)
	default:
		return Reply{}, nil
	}
}

func (m *Manager) Menu() Reply {
	return Reply{
		Text: menuText,
		Keyboard: [][]Button{
			{{Label: "/start", Data: "cmd_start"}},
			{{Label: "/update", Data: "cmd_update"}},
			{{Label: "/list", Data: "cmd_list"}},
			{{Label: "/help", Data: "cmd_help"}},
		},
	}
}

func (m *Manager) Help() Reply {
	return Reply{Text: helpText}
}

// StatusList renders one block per sheet row. Formatting is best-effort per
// field: a malformed row never aborts the whole listing.
func (m *Manager) StatusList(ctx context.Context) (Reply, error) {
	projects, err := m.projects.FetchProjects(ctx)
	if err != nil {
		return Reply{Text: fmt.Sprintf("❌ Error fetching data: %s", err)}, fmt.Errorf("could not fetch projects: %w", err)
	}
	return Reply{Text: formatStatusList(projects), HTML: true, DisablePreview: true}, nil
}

func (m *Manager) startUpdate(ctx context.Context, chatID int64) (Reply, error) {
	names, err := m.projects.FetchProjectNames(ctx)
	if err != nil {
		// No conversation is started on a fetch failure.
		return Reply{Text: fmt.Sprintf("❌ Error: %s", err)}, fmt.Errorf("could not fetch project names: %w", err)
	}

	keyboard := make([][]Button, 0, len(names))
	for i, name := range names {
		keyboard = append(keyboard, []Button{{
			Label: fmt.Sprintf("%d. %s", i+1, name),
			Data:  strconv.Itoa(i + 1),
		}})
	}

	sess := model.NewSession(chatID)
	sess.State = model.SessionStateSelectProject
	if err := m.sessions.SaveSession(ctx, sess); err != nil {
		return Reply{Text: fmt.Sprintf("❌ Error: %s", err)}, fmt.Errorf("could not save session: %w", err)
	}

	return Reply{Text: selectProjectText, Keyboard: keyboard}, nil
}

func (m *Manager) selectProject(ctx context.Context, sess *model.Session, data string) (Reply, error) {
	idx, err := strconv.Atoi(data)
	if err != nil || idx < 1 {
		return Reply{}, nil
	}

	sess.ProjectRow = idx + 1 // +1 for header row
	sess.State = model.SessionStateInputActual
	if err := m.sessions.SaveSession(ctx, sess); err != nil {
		return m.abandon(ctx, sess.ChatID, fmt.Errorf("could not save session: %w", err))
	}

	return Reply{Text: promptActualText}, nil
}

func (m *Manager) inputActual(ctx context.Context, sess *model.Session, text string) (Reply, error) {
	value, ok := parsePercent(text)
	if !ok {
		return Reply{Text: invalidValueText}, nil
	}

	sess.PendingActual = value / 100.0
	sess.State = model.SessionStateInputPlanned
	if err := m.sessions.SaveSession(ctx, sess); err != nil {
		return m.abandon(ctx, sess.ChatID, fmt.Errorf("could not save session: %w", err))
	}

	return Reply{Text: promptPlannedText}, nil
}

func (m *Manager) inputPlanned(ctx context.Context, sess *model.Session, text string) (Reply, error) {
	value, ok := parsePercent(text)
	if !ok {
		return Reply{Text: invalidValueText}, nil
	}
	planned := value / 100.0

	if err := m.projects.UpdateProgress(ctx, sess.ProjectRow, sess.PendingActual, planned); err != nil {
		return m.abandon(ctx, sess.ChatID, fmt.Errorf("could not update progress: %w", err))
	}

	name, err := m.projects.FetchProjectName(ctx, sess.ProjectRow)
	if err != nil {
		return m.abandon(ctx, sess.ChatID, fmt.Errorf("could not fetch project name: %w", err))
	}

	m.clearSession(ctx, sess.ChatID)

	summary := fmt.Sprintf(
		"✅ Successfully updated <b>%s</b>:\n- New Actual: %s%%\n- New Planned: %s%%",
		name,
		m.printer.Sprintf("%.1f", sess.PendingActual*100),
		m.printer.Sprintf("%.1f", planned*100),
	)
	return Reply{Text: summary, HTML: true}, nil
}

func (m *Manager) cancel(ctx context.Context, chatID int64) (Reply, error) {
	m.clearSession(ctx, chatID)
	return Reply{Text: canceledText}, nil
}

// abandon terminates the conversation attempt after a collaborator failure.
// The cause is surfaced to the user, not retried.
func (m *Manager) abandon(ctx context.Context, chatID int64, err error) (Reply, error) {
	m.clearSession(ctx, chatID)
	return Reply{Text: fmt.Sprintf("❌ Update failed: %s", err)}, err
}

func (m *Manager) clearSession(ctx context.Context, chatID int64) {
	if err := m.sessions.DeleteSession(ctx, chatID); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		log.Printf("[WARN] could not delete session for chat %d: %s", chatID, err)
	}
}

func parsePercent(text string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	if !(value >= 0 && value <= 100) {
		return 0, false
	}
	return value, true
}

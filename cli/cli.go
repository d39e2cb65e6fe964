// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the Inquest engine.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/inquest/engine"
	"github.com/nathoo/inquest/engine/dialogue"
	"github.com/nathoo/inquest/engine/save"
	"github.com/nathoo/inquest/types"
)

// Session translates player commands into engine operations. It is the
// shared command processor behind the plain CLI and the TUI.
type Session struct {
	Engine *engine.Engine

	npcID    string             // NPC of the in-flight conversation
	lastNode dialogue.Presented // numeric choice input resolves against this
}

// NewSession creates a session over an engine.
func NewSession(eng *engine.Engine) *Session {
	return &Session{Engine: eng}
}

// Exec processes one player command and returns output lines.
func (s *Session) Exec(input string) []string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return []string{"What do you want to do?"}
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	// A bare number while in conversation is a choice pick.
	if s.Engine.InConversation() {
		if n, err := strconv.Atoi(verb); err == nil {
			return s.choose(n)
		}
	}

	var out []string
	switch verb {
	case "quests":
		out = s.cmdQuests()
	case "journal":
		out = s.cmdJournal(args)
	case "start":
		out = s.cmdStart(args)
	case "clue":
		out = s.cmdClue(args)
	case "objective":
		out = s.cmdObjective(args)
	case "note":
		out = s.cmdNote(args)
	case "done":
		out = s.cmdDone(args)
	case "talk":
		out = s.cmdTalk(args)
	case "leave":
		out = s.cmdLeave()
	case "trust":
		out = s.cmdTrust(args)
	case "go":
		out = s.cmdGo(args)
	case "time":
		out = s.cmdTime(args)
	default:
		if s.Engine.InConversation() {
			return []string{"Pick a numbered choice, or type leave."}
		}
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", verb)}
	}

	return append(out, s.eventLines()...)
}

func (s *Session) cmdQuests() []string {
	ids := s.Engine.ActiveQuests()
	if len(ids) == 0 {
		return []string{"No active investigations."}
	}
	var out []string
	for _, id := range ids {
		p, _ := s.Engine.Progress(id)
		title := id
		if def, ok := s.Engine.Catalog.Quest(id); ok {
			title = def.Title
		}
		out = append(out, fmt.Sprintf("%s — phase %s, evidence %s", title, p.CurrentPhase, p.Evidence))
	}
	return out
}

func (s *Session) cmdJournal(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: journal <quest>"}
	}
	questID := args[0]
	p, ok := s.Engine.Progress(questID)
	if !ok {
		return []string{"That investigation is not active."}
	}
	def, _ := s.Engine.Catalog.Quest(questID)

	out := []string{def.Title}
	if phase, ok := def.Phases[p.CurrentPhase]; ok {
		out = append(out, fmt.Sprintf("Phase: %s — %s", phase.Title, phase.Description))
	}
	out = append(out, fmt.Sprintf("Evidence: %s", p.Evidence))
	for _, clueID := range sortedKeys(p.Clues) {
		clue := def.Clues[clueID]
		found := p.Clues[clueID]
		out = append(out, fmt.Sprintf("  clue: %s (%s, %s)", clue.Name, found.Method, found.Location))
	}
	for _, obj := range sortedBoolKeys(p.CompletedObjectives) {
		out = append(out, fmt.Sprintf("  done: %s", obj))
	}
	for _, note := range p.Notes {
		out = append(out, "  note: "+note)
	}
	return out
}

func (s *Session) cmdStart(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: start <quest>"}
	}
	if err := s.Engine.StartQuest(args[0]); err != nil {
		return []string{errLine(err)}
	}
	return nil
}

func (s *Session) cmdClue(args []string) []string {
	if len(args) < 2 {
		return []string{"Usage: clue <quest> <clue>"}
	}
	out, err := s.Engine.RecordClue(args[0], args[1])
	if err != nil {
		return []string{errLine(err)}
	}
	if out.AlreadyKnown {
		return []string{"You already knew that."}
	}
	return nil
}

func (s *Session) cmdObjective(args []string) []string {
	if len(args) < 2 {
		return []string{"Usage: objective <quest> <objective>"}
	}
	if err := s.Engine.CompleteObjective(args[0], args[1]); err != nil {
		return []string{errLine(err)}
	}
	return nil
}

func (s *Session) cmdNote(args []string) []string {
	if len(args) < 2 {
		return []string{"Usage: note <quest> <text>"}
	}
	if err := s.Engine.AddNote(args[0], strings.Join(args[1:], " ")); err != nil {
		return []string{errLine(err)}
	}
	return []string{"Noted."}
}

func (s *Session) cmdDone(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: done <quest>"}
	}
	summary, err := s.Engine.CompleteQuest(args[0])
	if err != nil {
		return []string{errLine(err)}
	}
	return []string{fmt.Sprintf("Investigation closed with %s evidence.", summary.FinalEvidence)}
}

func (s *Session) cmdTalk(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: talk <npc> [mood]"}
	}
	mood := ""
	if len(args) > 1 {
		mood = args[1]
	}
	node, err := s.Engine.StartConversation(args[0], mood)
	if err != nil {
		return []string{errLine(err)}
	}
	s.npcID = args[0]
	return s.renderNode(node)
}

func (s *Session) choose(n int) []string {
	if n < 1 || n > len(s.lastNode.Choices) {
		return []string{"That's not one of the choices."}
	}
	choiceID := s.lastNode.Choices[n-1].ID
	node, err := s.Engine.Choose(choiceID)
	if err != nil {
		return []string{errLine(err)}
	}
	return append(s.renderNode(node), s.eventLines()...)
}

func (s *Session) cmdLeave() []string {
	if !s.Engine.InConversation() {
		return []string{"You're not talking to anyone."}
	}
	s.Engine.EndConversation()
	return []string{"You end the conversation."}
}

func (s *Session) cmdTrust(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: trust <npc>"}
	}
	npc, ok := s.Engine.Catalog.Npc(args[0])
	if !ok {
		return []string{errLine(engine.ErrUnknownNpc)}
	}
	value, level := s.Engine.Trust(args[0])
	return []string{fmt.Sprintf("%s: %d (%s)", npc.Name, value, level)}
}

func (s *Session) cmdGo(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: go <location>"}
	}
	s.Engine.SetLocation(args[0])
	return []string{"You make your way to the " + args[0] + "."}
}

func (s *Session) cmdTime(args []string) []string {
	if len(args) < 1 {
		return []string{"Usage: time <hour>"}
	}
	hour, err := strconv.Atoi(args[0])
	if err != nil || hour < 0 || hour > 23 {
		return []string{"Hour must be 0-23."}
	}
	s.Engine.SetHour(hour)
	return []string{fmt.Sprintf("It is now %02d:00.", hour)}
}

// renderNode formats a presented dialogue node with numbered choices.
func (s *Session) renderNode(node dialogue.Presented) []string {
	s.lastNode = node
	if node.Over {
		return []string{"The conversation ends."}
	}

	var out []string
	switch node.Speaker {
	case types.SpeakerNarrator:
		out = append(out, node.Text)
	default:
		out = append(out, fmt.Sprintf("%s: %s", s.speakerName(node.Speaker), node.Text))
	}
	for i, ch := range node.Choices {
		out = append(out, fmt.Sprintf("  %d) %s", i+1, ch.Text))
	}
	return out
}

func (s *Session) speakerName(speaker string) string {
	if speaker == types.SpeakerPlayer {
		return "You"
	}
	if npc, ok := s.Engine.Catalog.Npc(s.npcID); ok && npc.Name != "" {
		return npc.Name
	}
	return "They"
}

// eventLines drains the event feed into player-facing lines.
func (s *Session) eventLines() []string {
	var out []string
	for _, ev := range s.Engine.DrainEvents() {
		switch ev.Type {
		case "quest_started":
			out = append(out, fmt.Sprintf("[New investigation: %v]", ev.Data["quest"]))
		case "quest_completed":
			out = append(out, fmt.Sprintf("[Investigation closed: %v (%v evidence)]", ev.Data["quest"], ev.Data["evidence"]))
		case "quest_failed":
			out = append(out, fmt.Sprintf("[Investigation failed: %v]", ev.Data["quest"]))
		case "phase_advanced":
			out = append(out, fmt.Sprintf("[%v: %v -> %v]", ev.Data["quest"], ev.Data["from"], ev.Data["to"]))
		case "clue_discovered":
			out = append(out, fmt.Sprintf("[Clue discovered: %v (evidence now %v)]", ev.Data["clue"], ev.Data["evidence"]))
		case "objective_completed":
			out = append(out, fmt.Sprintf("[Objective complete: %v]", ev.Data["objective"]))
		case "trust_changed":
			out = append(out, fmt.Sprintf("[%v now %v you (%v)]", ev.Data["npc"], ev.Data["level"], ev.Data["trust"]))
		}
	}
	return out
}

func errLine(err error) string {
	switch err {
	case engine.ErrUnknownQuest:
		return "No such investigation."
	case engine.ErrUnknownClue:
		return "No such clue."
	case engine.ErrUnknownObjective:
		return "No such objective."
	case engine.ErrUnknownNpc:
		return "There's nobody by that name."
	case engine.ErrQuestNotActive:
		return "That investigation is not active."
	case engine.ErrAlreadyActive:
		return "You're already on that investigation."
	case engine.ErrInvalidChoice:
		return "That's not one of the choices."
	case engine.ErrNoConversation:
		return "They have nothing to say right now."
	case engine.ErrNoActiveConversation:
		return "You're not talking to anyone."
	case engine.ErrNotTerminalPhase:
		return "The investigation isn't ready to close yet."
	default:
		return err.Error()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *Session
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".inquest", "saves")
	return &CLI{
		Session: NewSession(eng),
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the interactive loop: prompt, input, dispatch, output.
func (c *CLI) Run() {
	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		for _, line := range c.Session.Exec(input) {
			c.printLine(line)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(c.Session.Engine.State)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}

	c.printSystem(fmt.Sprintf("Saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	loaded, err := save.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}

	c.Session.Engine.EndConversation()
	c.Session.Engine.State = loaded
	c.printSystem(fmt.Sprintf("Loaded from %s.", name))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  — Save progress (default: quicksave)",
		"  /load [name]  — Load progress (default: quicksave)",
		"  /quit         — Exit",
		"  /help         — Show this help",
		"  /state        — Debug: dump current state",
		"",
		"Investigation commands:",
		"  quests                      — List active investigations",
		"  journal <quest>             — Show clues, objectives, notes",
		"  start <quest>               — Take on an investigation",
		"  clue <quest> <clue>         — Record a discovered clue",
		"  objective <quest> <obj>     — Mark an objective done",
		"  note <quest> <text>         — Add a journal note",
		"  done <quest>                — Close a solved investigation",
		"  talk <npc> [mood]           — Start a conversation",
		"  <number>                    — Pick a dialogue choice",
		"  leave                       — End the conversation",
		"  trust <npc>                 — Check how an NPC regards you",
		"  go <location>               — Move to a location",
		"  time <hour>                 — Set the hour (0-23)",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	st := c.Session.Engine.State
	c.printSystem(fmt.Sprintf("Location: %s, hour %d", st.Location, st.Hour))
	c.printSystem(fmt.Sprintf("Active: %v", c.Session.Engine.ActiveQuests()))
	c.printSystem(fmt.Sprintf("Completed: %d, failed: %d", len(st.Completed), len(st.Failed)))
	if len(st.WorldFlags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", st.WorldFlags))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

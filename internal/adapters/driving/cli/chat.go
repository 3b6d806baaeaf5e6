package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with VerneBot in the terminal",
	Long: `Starts an interactive conversation. Each reply is grounded in passages
from the knowledge index and the recent conversation.

Commands:
  /new             Start a new chat (the current one is kept)
  /list            List chats
  /switch <n|id>   Continue an earlier chat
  /delete <n|id>   Delete a chat
  /help            Show commands
  /exit            Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

const chatHelp = `Commands:
  /new             Start a new chat
  /list            List chats
  /switch <n|id>   Continue an earlier chat
  /delete <n|id>   Delete a chat
  /help            Show this help
  /exit            Quit`

// errExitChat ends the REPL.
var errExitChat = errors.New("exit")

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if err := requireValidConfig(); err != nil {
		return err
	}
	store, err := sessions()
	if err != nil {
		return err
	}

	loadIndex(cmd)

	repl := &chatREPL{
		cmd:      cmd,
		chat:     chatService,
		sessions: store,
		persona:  chatService.Persona(),
	}
	return repl.run(cmd.InOrStdin())
}

// chatREPL reads user lines and prints replies until /exit or EOF.
type chatREPL struct {
	cmd      *cobra.Command
	chat     driving.ChatService
	sessions driving.SessionStore
	persona  domain.Persona
}

func (r *chatREPL) run(in io.Reader) error {
	reader := bufio.NewReader(in)
	r.greet()

	for {
		r.cmd.Print("You: ")
		line, err := reader.ReadString('\n')
		text := strings.TrimSpace(line)

		if text != "" {
			if herr := r.handle(text); herr != nil {
				if errors.Is(herr, errExitChat) {
					return nil
				}
				r.cmd.Printf("Error: %v\n", herr)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				r.cmd.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
	}
}

func (r *chatREPL) greet() {
	if r.sessions.Active().IsEmpty() && r.persona.Welcome != "" {
		r.cmd.Println(r.persona.Welcome)
		r.cmd.Println()
	}
	r.cmd.Println("Type /help for commands.")
	r.cmd.Println()
}

func (r *chatREPL) handle(text string) error {
	if !strings.HasPrefix(text, "/") {
		return r.ask(text)
	}

	name, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return errExitChat
	case "/help":
		r.cmd.Println(chatHelp)
	case "/new":
		r.cmd.Printf("Started chat %s\n\n", r.sessions.NewSession())
		r.greet()
	case "/list":
		r.list()
	case "/switch":
		id, err := r.resolve(arg)
		if err != nil {
			return err
		}
		if err := r.sessions.Switch(id); err != nil {
			return err
		}
		r.cmd.Printf("Switched to %s\n\n", id)
		r.replay()
	case "/delete":
		id, err := r.resolve(arg)
		if err != nil {
			return err
		}
		if err := r.sessions.Delete(id); err != nil {
			return err
		}
		r.cmd.Printf("Deleted %s\n", id)
	default:
		return fmt.Errorf("unknown command %s, type /help", name)
	}
	return nil
}

func (r *chatREPL) ask(text string) error {
	turn, err := r.chat.Answer(r.cmd.Context(), r.sessions, text)
	if err != nil {
		return err
	}
	r.cmd.Printf("%s: %s\n\n", r.label(), turn.Reply)
	return nil
}

func (r *chatREPL) list() {
	active := r.sessions.Active().ID
	for i, s := range r.sessions.List() {
		marker := " "
		if s.ID == active {
			marker = "*"
		}
		r.cmd.Printf("%s %d. %s  %s (%d messages)\n", marker, i+1, s.ID, s.Title(), len(s.Messages))
	}
	r.cmd.Println()
}

// replay prints the active session's messages.
func (r *chatREPL) replay() {
	for _, m := range r.sessions.Active().Messages {
		speaker := "You"
		if m.Role == domain.RoleAssistant {
			speaker = r.label()
		}
		r.cmd.Printf("%s: %s\n\n", speaker, m.Content)
	}
}

// resolve accepts a 1-based position from /list or a session id.
func (r *chatREPL) resolve(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("%w: session number or id required", domain.ErrInvalidInput)
	}
	list := r.sessions.List()
	if n := parseChoice(arg, len(list), 0); n > 0 {
		return list[n-1].ID, nil
	}
	return arg, nil
}

func (r *chatREPL) label() string {
	if r.persona.Name != "" {
		return r.persona.Name
	}
	return domain.RoleAssistant.Label()
}

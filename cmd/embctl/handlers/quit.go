package handlers

import (
	"regexp"

	"github.com/chzyer/readline"
)

// ErrQuit is returned by the QUIT command, the REPL stops on it.
var ErrQuit = errQuit{}

type errQuit struct{}

func (errQuit) Error() string { return "quit" }

var quitHandler = handler{
	Name:        "QUIT",
	Mnemonic:    "QUIT, Q or EXIT",
	Completer:   readline.PcItem("quit"),
	Parser:      regexp.MustCompile(`^(?i)(QUIT|Q|EXIT)$`),
	Description: "Exit the client.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		return ErrQuit
	},
}

package handlers

import (
	"github.com/evilsocket/islazy/tui"

	"github.com/chzyer/readline"
)

var helpHandler = handler{
	Name:        "HELP",
	Mnemonic:    "HELP",
	Completer:   readline.PcItem("help"),
	Description: "Show the available commands and their descriptions.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		rows := [][]string{}

		for _, h := range Handlers {
			rows = append(rows, []string{h.Mnemonic, h.Description})
		}

		tui.Table(Output, []string{"command", "description"}, rows)

		return nil
	},
}

package handlers

import (
	"github.com/evilsocket/meepo/storage"

	"github.com/evilsocket/islazy/tui"

	"github.com/chzyer/readline"
)

var infoHandler = handler{
	Name:        "INFO",
	Mnemonic:    "INFO",
	Completer:   readline.PcItem("info"),
	Description: "Display table information.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		rows, err := table.Info()
		if err != nil {
			return err
		}

		tui.Table(Output, []string{"name", "value"}, rows)

		return nil
	},
}

var capsHandler = handler{
	Name:        "CAPS",
	Mnemonic:    "CAPS",
	Completer:   readline.PcItem("caps"),
	Description: "List the operations the backend supports.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		rows := [][]string{}
		for _, op := range storage.Ops() {
			supported := tui.Red("no")
			if table.Supports(op) {
				supported = tui.Green("yes")
			}
			rows = append(rows, []string{op.String(), supported})
		}

		tui.Table(Output, []string{"operation", "supported"}, rows)

		return nil
	},
}

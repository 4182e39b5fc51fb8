package handlers

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chzyer/readline"
)

var eraseHandler = handler{
	Name:        "ERASE",
	Mnemonic:    "ERASE or DEL <KEYS>",
	Completer:   readline.PcItem("erase"),
	Parser:      regexp.MustCompile(`^(?i)(ERASE|DEL)\s+([^\s]+)$`),
	Description: "Remove the comma separated <KEYS>, missing ones are ignored.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, err := parseKeys(args[0])
		if err != nil {
			return err
		} else if err = table.Erase(keys); err != nil {
			return err
		}

		fmt.Fprintf(Output, "%d keys erased\n", len(keys))

		return nil
	},
}

var expireHandler = handler{
	Name:        "EXPIRE",
	Mnemonic:    "EXPIRE <PATTERN> <THRESHOLD>",
	Completer:   readline.PcItem("expire"),
	Parser:      regexp.MustCompile(`^(?i)(EXPIRE)\s+([^\s]+)\s+(\d+)$`),
	Description: "Remove every key carrying all the bits of <PATTERN> whose score is below <THRESHOLD>.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		threshold, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}

		n, err := table.Expire(args[0], threshold)
		if err != nil {
			return err
		}

		fmt.Fprintf(Output, "%d entries expired\n", n)

		return nil
	},
}

var clearHandler = handler{
	Name:        "CLEAR",
	Mnemonic:    "CLEAR",
	Completer:   readline.PcItem("clear"),
	Description: "Remove every entry from the table.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		return table.Clear()
	},
}

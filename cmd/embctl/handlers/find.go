package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evilsocket/islazy/tui"

	"github.com/chzyer/readline"
)

var findHandler = handler{
	Name:        "FIND",
	Mnemonic:    "FIND or F <KEYS>",
	Completer:   readline.PcItem("find"),
	Parser:      regexp.MustCompile(`^(?i)(FIND|F)\s+([^\s]+)$`),
	Description: "Show rows and scores of the comma separated <KEYS>.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, err := parseKeys(args[0])
		if err != nil {
			return err
		}

		entries, exists, err := table.Find(keys)
		if err != nil {
			return err
		}

		found := []Entry{}
		missing := []string{}
		for i, e := range entries {
			if exists[i] {
				found = append(found, e)
			} else {
				missing = append(missing, e.Key)
			}
		}

		if len(found) > 0 {
			tui.Table(Output, []string{"key", "row", "score"}, entriesRows(found, nil, "", ""))
		}
		if len(missing) > 0 {
			fmt.Fprintf(Output, "%s %s\n", tui.Yellow("missing:"), strings.Join(missing, ","))
		}

		return nil
	},
}

var containsHandler = handler{
	Name:        "CONTAINS",
	Mnemonic:    "CONTAINS or C <KEYS>",
	Completer:   readline.PcItem("contains"),
	Parser:      regexp.MustCompile(`^(?i)(CONTAINS|C)\s+([^\s]+)$`),
	Description: "Tell which of the comma separated <KEYS> are stored.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, err := parseKeys(args[0])
		if err != nil {
			return err
		}

		exists, err := table.Contains(keys)
		if err != nil {
			return err
		}

		rows := [][]string{}
		for i, key := range keys {
			rows = append(rows, []string{key, fmt.Sprintf("%v", exists[i])})
		}

		tui.Table(Output, []string{"key", "stored"}, rows)

		return nil
	},
}

// exportMaxBatch bounds the page a single EXPORT can request.
const exportMaxBatch = 1000

var exportHandler = handler{
	Name:        "EXPORT",
	Mnemonic:    "EXPORT [LIMIT] [OFFSET]",
	Completer:   readline.PcItem("export"),
	Parser:      regexp.MustCompile(`^(?i)(EXPORT|LIST|LS)(?:\s+(\d+))?(?:\s+(\d+))?$`),
	Description: "List up to <LIMIT> entries (default 25) starting at <OFFSET>.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		limit, err := parseInt(args[0], 25)
		if err != nil {
			return err
		} else if limit > exportMaxBatch {
			return fmt.Errorf("at most %d entries can be exported at once", exportMaxBatch)
		}

		offset, err := parseInt(args[1], 0)
		if err != nil {
			return err
		}

		entries, err := table.Export(limit, offset)
		if err != nil {
			return err
		} else if len(entries) == 0 {
			fmt.Fprintf(Output, "no entries\n")
			return nil
		}

		tui.Table(Output, []string{"key", "row", "score"}, entriesRows(entries, nil, "", ""))
		if len(entries) == limit {
			fmt.Fprintf(Output, "next page: EXPORT %d %d\n", limit, offset+limit)
		}

		return nil
	},
}

package handlers

import (
	"fmt"
	"regexp"

	"github.com/evilsocket/islazy/tui"

	"github.com/chzyer/readline"
)

const writeParser = `\s+([^\s]+)\s+([^\s]+)(?:\s+([^\s]+))?$`

func parseWrite(args []string) (keys []string, rows [][]float64, scores []uint64, err error) {
	if keys, err = parseKeys(args[0]); err != nil {
		return
	} else if rows, err = parseRows(args[1]); err != nil {
		return
	}
	scores, err = parseScores(args[2])
	return
}

var insertHandler = handler{
	Name:        "INSERT",
	Mnemonic:    "INSERT <KEYS> <ROWS> [SCORES]",
	Completer:   readline.PcItem("insert"),
	Parser:      regexp.MustCompile(`^(?i)(INSERT|I)` + writeParser),
	Description: "Insert the missing <KEYS> with their <ROWS> and show the stored entries, e.g. INSERT 1,2 0.1,0.2/0.3,0.4 10,20",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, rows, scores, err := parseWrite(args)
		if err != nil {
			return err
		}

		entries, exists, err := table.FindOrInsert(keys, rows, scores)
		if err != nil {
			return err
		}

		tui.Table(Output, []string{"key", "row", "score", "state"}, entriesRows(entries, exists, "found", tui.Green("inserted")))

		return nil
	},
}

var upsertHandler = handler{
	Name:        "UPSERT",
	Mnemonic:    "UPSERT <KEYS> <ROWS> [SCORES]",
	Completer:   readline.PcItem("upsert"),
	Parser:      regexp.MustCompile(`^(?i)(UPSERT|U)` + writeParser),
	Description: "Insert or overwrite <KEYS> with <ROWS>, fails if the table is full.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, rows, scores, err := parseWrite(args)
		if err != nil {
			return err
		} else if err = table.Upsert(keys, rows, scores); err != nil {
			return err
		}

		fmt.Fprintf(Output, "%d keys written\n", len(keys))

		return nil
	},
}

var evictHandler = handler{
	Name:        "EVICT",
	Mnemonic:    "EVICT <KEYS> <ROWS> [SCORES]",
	Completer:   readline.PcItem("evict"),
	Parser:      regexp.MustCompile(`^(?i)(EVICT)` + writeParser),
	Description: "Insert or overwrite <KEYS> with <ROWS>, evicting the lowest scores to make room.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, rows, scores, err := parseWrite(args)
		if err != nil {
			return err
		}

		evicted, err := table.Evict(keys, rows, scores)
		if err != nil {
			return err
		} else if len(evicted) == 0 {
			fmt.Fprintf(Output, "%d keys written, nothing evicted\n", len(keys))
			return nil
		}

		tui.Table(Output, []string{"evicted key", "row", "score"}, entriesRows(evicted, nil, "", ""))

		return nil
	},
}

var accumHandler = handler{
	Name:        "ACCUM",
	Mnemonic:    "ACCUM <KEYS> <ROWS>",
	Completer:   readline.PcItem("accum"),
	Parser:      regexp.MustCompile(`^(?i)(ACCUM|ACC)\s+([^\s]+)\s+([^\s]+)$`),
	Description: "Add <ROWS> to the rows stored for <KEYS>, missing keys are inserted.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		keys, err := parseKeys(args[0])
		if err != nil {
			return err
		}
		rows, err := parseRows(args[1])
		if err != nil {
			return err
		} else if err = table.Accum(keys, rows); err != nil {
			return err
		}

		fmt.Fprintf(Output, "%d keys accumulated\n", len(keys))

		return nil
	},
}

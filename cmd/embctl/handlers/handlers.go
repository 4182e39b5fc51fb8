package handlers

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/chzyer/readline"
)

type handlerCb func(cmd string, args []string, reader *readline.Instance, table Table) error

type handler struct {
	Parser      *regexp.Regexp
	Completer   *readline.PrefixCompleter
	Name        string
	Mnemonic    string
	Description string
	Callback    handlerCb
}

// Output is where commands print their results.
var Output io.Writer = os.Stdout

var Handlers = []handler{}
var Completers = (*readline.PrefixCompleter)(nil)

func init() {
	Handlers = []handler{
		helpHandler,
		quitHandler,
		infoHandler,
		capsHandler,
		// writes
		insertHandler,
		upsertHandler,
		evictHandler,
		accumHandler,
		// lookups
		findHandler,
		containsHandler,
		exportHandler,
		// removals
		eraseHandler,
		expireHandler,
		clearHandler,
		// persistence
		saveHandler,
		loadHandler,
	}

	tmp := []readline.PrefixCompleterInterface{}
	for _, h := range Handlers {
		if h.Completer != nil {
			tmp = append(tmp, h.Completer)
		}
	}
	Completers = readline.NewPrefixCompleter(tmp...)
}

func Dispatch(cmd string, reader *readline.Instance, table Table) error {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}

	for _, handler := range Handlers {
		match := false
		args := []string{}

		if handler.Parser != nil {
			if result := handler.Parser.FindStringSubmatch(cmd); result != nil && len(result) == handler.Parser.NumSubexp()+1 {
				cmd = result[1:][0]
				args = result[1:][1:]
				match = true
			}
		} else if strings.EqualFold(handler.Name, cmd) {
			match = true
		}

		if match {
			return handler.Callback(cmd, args, reader, table)
		}
	}

	return fmt.Errorf("command not found: %s", cmd)
}

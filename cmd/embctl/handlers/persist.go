package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/evilsocket/meepo/storage"
	"github.com/evilsocket/meepo/storage/checkpoint"

	"github.com/chzyer/readline"
	"gopkg.in/yaml.v3"
)

// checkpointConfig builds the config for SAVE and LOAD, an empty path
// leaves the backend on the one it was initialized with.
func checkpointConfig(path string, merge bool) (storage.Config, error) {
	if path == "" && !merge {
		return storage.Config{}, nil
	}

	section := map[string]interface{}{"merge": merge}
	if path != "" {
		section["path"] = path
	}

	node := &yaml.Node{}
	if err := node.Encode(map[string]interface{}{"checkpoint": section}); err != nil {
		return storage.Config{}, err
	}
	return storage.NewConfig(node), nil
}

// SaveOnExit checkpoints the table to the path configured at startup, it
// returns false when there's no such path or the backend is read-only.
func SaveOnExit(table Table, cfg storage.Config) (bool, error) {
	if !table.Supports(storage.OpSave) {
		return false, nil
	} else if _, err := checkpoint.OptionsFrom(cfg); err != nil {
		return false, nil
	}
	return true, table.Save(storage.Config{})
}

var saveHandler = handler{
	Name:        "SAVE",
	Mnemonic:    "SAVE [PATH]",
	Completer:   readline.PcItem("save"),
	Parser:      regexp.MustCompile(`^(?i)(SAVE)(?:\s+([^\s]+))?$`),
	Description: "Checkpoint the table to <PATH> or to the configured checkpoint path.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		cfg, err := checkpointConfig(args[0], false)
		if err != nil {
			return err
		} else if err = table.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(Output, "table saved\n")

		return nil
	},
}

var loadHandler = handler{
	Name:        "LOAD",
	Mnemonic:    "LOAD [PATH] [MERGE]",
	Completer:   readline.PcItem("load"),
	Parser:      regexp.MustCompile(`^(?i)(LOAD)(?:\s+([^\s]+?))?(?:\s+(MERGE))?$`),
	Description: "Restore a checkpoint from <PATH> or from the configured path, MERGE keeps the current entries.",
	Callback: func(cmd string, args []string, reader *readline.Instance, table Table) error {
		path, merge := args[0], args[1] != ""
		// LOAD MERGE alone
		if args[1] == "" && strings.EqualFold(path, "merge") {
			path, merge = "", true
		}

		cfg, err := checkpointConfig(path, merge)
		if err != nil {
			return err
		} else if err = table.Load(cfg); err != nil {
			return err
		}

		fmt.Fprintf(Output, "table loaded\n")

		return nil
	},
}

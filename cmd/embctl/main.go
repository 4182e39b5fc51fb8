package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/evilsocket/meepo/cmd/embctl/handlers"
	"github.com/evilsocket/meepo/common"
	"github.com/evilsocket/meepo/storage"
	_ "github.com/evilsocket/meepo/storage/memory"
	_ "github.com/evilsocket/meepo/storage/snapshot"

	"github.com/evilsocket/islazy/log"
	"github.com/evilsocket/islazy/str"

	"github.com/chzyer/readline"
)

const (
	prompt  = "\033[31m»\033[0m "
	history = "/tmp/embctl.tmp"
)

var (
	configFile = flag.String("config", "", "YAML configuration of the table.")
	backend    = flag.String("backend", "memory", "Storage backend to open.")
	keyType    = flag.String("key", "int64", "Key type, int64 or uint64.")
	valueType  = flag.String("dtype", "float32", "Value type: int64, int32, int8, float32, float16 or bfloat16.")
	evalString = flag.String("eval", "", "List of commands to run, divided by a semicolon.")
	logFile    = flag.String("log-file", "", "If filled, write logs to this file.")
	logDebug   = flag.Bool("debug", false, "Enable debug logs.")
	cpuProfile = flag.String("cpu-profile", "", "Write CPU profile to this file.")
	memProfile = flag.String("mem-profile", "", "Write memory profile to this file.")
)

func die(format string, args ...interface{}) {
	fmt.Printf(format, args...)
	os.Exit(1)
}

// run dispatches the semicolon separated commands of line, returns false
// when the REPL should stop.
func run(line string, reader *readline.Instance, table handlers.Table) bool {
	for _, cmd := range str.SplitBy(line, ";") {
		if err := handlers.Dispatch(cmd, reader, table); err == handlers.ErrQuit {
			return false
		} else if err != nil {
			fmt.Printf("%s\n", err)
		}
	}
	return true
}

func main() {
	flag.Parse()

	common.SetupLogging(logFile, logDebug)
	defer common.TeardownLogging()

	common.StartProfiling(cpuProfile)
	defer common.DoCleanup(cpuProfile, memProfile)

	key, err := storage.ParseDType(*keyType)
	if err != nil {
		die("%v\n", err)
	}
	value, err := storage.ParseDType(*valueType)
	if err != nil {
		die("%v\n", err)
	}

	cfg := storage.Config{}
	if *configFile != "" {
		if cfg, err = storage.LoadConfigFile(*configFile); err != nil {
			die("%v\n", err)
		}
	}

	log.Debug("opening %s<%s,%s> (%v)", *backend, key, value, storage.Backends())

	table, err := handlers.Open(*backend, key, value, cfg)
	if err != nil {
		die("%v\n", err)
	}

	common.SetupSignals(func(_ os.Signal) {
		if saved, err := handlers.SaveOnExit(table, cfg); err != nil {
			log.Error("could not save table: %v", err)
		} else if saved {
			log.Info("table saved")
		}
		common.DoCleanup(cpuProfile, memProfile)
	})

	reader, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%s<%s,%s> %s", *backend, key, value, prompt),
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    handlers.Completers,
	})
	if err != nil {
		die("%v\n", err)
	}
	defer reader.Close()

	if *evalString != "" && !run(*evalString, reader, table) {
		return
	}

	for {
		if line, err := reader.Readline(); err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		} else if !run(line, reader, table) {
			break
		}
	}
}

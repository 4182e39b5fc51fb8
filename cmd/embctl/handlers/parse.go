package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evilsocket/islazy/str"
)

// parseKeys splits a comma separated list of keys.
func parseKeys(arg string) ([]string, error) {
	keys := str.Comma(arg)
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys given")
	}
	return keys, nil
}

// parseRows parses rows separated by a slash, each one a comma separated
// list of numbers: "0.1,0.2/0.3,0.4".
func parseRows(arg string) ([][]float64, error) {
	rows := [][]float64{}
	for _, part := range str.SplitBy(arg, "/") {
		row := []float64{}
		for _, s := range str.Comma(part) {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid element %q", s)
			}
			row = append(row, f)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseScores parses an optional comma separated list of scores, an empty
// argument yields nil.
func parseScores(arg string) ([]uint64, error) {
	if arg == "" {
		return nil, nil
	}
	scores := []uint64{}
	for _, s := range str.Comma(arg) {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q", s)
		}
		scores = append(scores, n)
	}
	return scores, nil
}

func parseInt(arg string, def int) (int, error) {
	if arg == "" {
		return def, nil
	}
	return strconv.Atoi(arg)
}

func rowAsString(row []float64, limit int) string {
	tot := len(row)
	num := tot
	if limit > 0 && limit < tot {
		num = limit
	}

	strs := make([]string, num)
	for i, f := range row[:num] {
		strs[i] = strconv.FormatFloat(f, 'g', 6, 64)
	}

	s := strings.Join(strs, ",")
	if num < tot {
		s += " ..."
	}
	return s
}

// entriesRows renders entries for tui.Table, flags adds a column saying
// yes or no for each entry when not nil.
func entriesRows(entries []Entry, flags []bool, yes, no string) [][]string {
	rows := [][]string{}
	for i, e := range entries {
		row := []string{e.Key, rowAsString(e.Row, 8), strconv.FormatUint(e.Score, 10)}
		if flags != nil {
			if flags[i] {
				row = append(row, yes)
			} else {
				row = append(row, no)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

package main

import (
	"strconv"
	"strings"
)

type inputKind int

const (
	inputQuery inputKind = iota
	inputSelect
	inputRefresh
	inputQuit
	inputHelp
)

// input is one parsed line typed in watch mode.
type input struct {
	kind  inputKind
	query string
	row   int // 0-based
}

const watchHelp = `Type to filter courses by name. Commands:
  :<n>   show details of row n
  :r     refresh now
  :q     quit
  :h     this help`

// parseInput interprets a line from stdin. Anything not starting with ':' is a
// search query; an empty line clears the search.
func parseInput(line string) input {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return input{kind: inputQuery, query: line}
	}

	cmd := strings.TrimSpace(line[1:])
	switch cmd {
	case "r", "refresh":
		return input{kind: inputRefresh}
	case "q", "quit":
		return input{kind: inputQuit}
	case "", "h", "help", "?":
		return input{kind: inputHelp}
	}

	if n, err := strconv.Atoi(cmd); err == nil {
		return input{kind: inputSelect, row: n - 1}
	}
	return input{kind: inputHelp}
}

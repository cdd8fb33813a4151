/*
 * Copyright (c) 2026 CrabDB Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package main is the interactive CrabDB client shell.

Commands:
=========

	get KEY [DEPTH]    read a value, optionally resolving links DEPTH deep
	set KEY VALUE      store a value, printing the previous one
	del KEY            remove a value, printing it
	help               show help
	exit               leave the shell

Value Literals:
===============

	null               the Null object
	42, -7             Int
	"hello world"      Text
	[1, "two", null]   List
	{name: "amy", age: 30}   Map
	@other-key         Link to another key

When stdin is a terminal the shell runs on readline with history and tab
completion; when piped it reads commands line by line, which makes it
usable in scripts:

	echo 'set greeting "hi"' | crab-cli -addr localhost:7227
*/
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"crabdb/internal/banner"
	"crabdb/internal/client"
	"crabdb/internal/discovery"
	"crabdb/internal/object"
	"crabdb/internal/protocol"
)

// defaultAddr is the server address used when -addr is not given.
const defaultAddr = "localhost:7227"

func main() {
	addr := flag.String("addr", defaultAddr, "Server address (host:port)")
	discover := flag.Bool("discover", false, "Discover servers on the local network and exit")
	discoverTimeout := flag.Duration("discover-timeout", discovery.DefaultTimeout, "Discovery timeout")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crab-cli version %s\n", banner.Version)
		return
	}

	if *discover {
		runDiscover(*discoverTimeout)
		return
	}

	c, err := client.Connect(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer c.Close()

	if term.IsTerminal(int(os.Stdin.Fd())) {
		runInteractive(c, *addr)
	} else {
		runPiped(c)
	}
}

// runDiscover prints the servers answering on the local network.
func runDiscover(timeout time.Duration) {
	fmt.Printf("Looking for CrabDB servers (%s)...\n", timeout)
	servers, err := discovery.Discover(timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Discovery failed: %v\n", err)
		os.Exit(1)
	}
	if len(servers) == 0 {
		fmt.Println("No servers found.")
		return
	}
	for _, s := range servers {
		fmt.Printf("  %-40s %-24s v%s\n", s.Instance, s.Addr, s.Version)
	}
}

// historyFilePath returns where the shell keeps its history.
func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".crabdb_history")
}

// createCompleter builds tab completion for the shell commands.
func createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("get"),
		readline.PcItem("set"),
		readline.PcItem("del"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// runInteractive drives the readline loop.
func runInteractive(c *client.Client, addr string) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "crabdb> ",
		HistoryFile:       historyFilePath(),
		AutoComplete:      createCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize shell: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("Connected to %s. Type 'help' for help, 'exit' to leave.\n", addr)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}
		if quit := execute(c, line, os.Stdout); quit {
			return
		}
	}
}

// runPiped executes commands from stdin one line at a time.
func runPiped(c *client.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if quit := execute(c, scanner.Text(), os.Stdout); quit {
			return
		}
	}
}

// execute runs one shell line. It returns true when the shell should
// exit.
func execute(c *client.Client, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	cmd, rest := splitWord(line)
	switch strings.ToLower(cmd) {
	case "exit", "quit":
		return true
	case "help":
		printHelp(out)
		return false
	case "get":
		runGet(c, rest, out)
	case "set":
		runSet(c, rest, out)
	case "del", "delete":
		runDel(c, rest, out)
	default:
		fmt.Fprintf(out, "Unknown command %q. Type 'help' for help.\n", cmd)
	}
	return false
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  get KEY [DEPTH]    read a value, optionally resolving links DEPTH deep")
	fmt.Fprintln(out, "  set KEY VALUE      store a value, printing the previous one")
	fmt.Fprintln(out, "  del KEY            remove a value, printing it")
	fmt.Fprintln(out, "  exit               leave the shell")
	fmt.Fprintln(out, "Values:")
	fmt.Fprintln(out, `  null | 42 | "text" | [1, "two"] | {name: "amy"} | @other-key`)
}

func runGet(c *client.Client, args string, out io.Writer) {
	key, rest := splitWord(args)
	if key == "" {
		fmt.Fprintln(out, "Usage: get KEY [DEPTH]")
		return
	}
	depth := 0
	if rest != "" {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 || n > 255 {
			fmt.Fprintln(out, "DEPTH must be an integer between 0 and 255")
			return
		}
		depth = n
	}

	var obj object.Object
	var err error
	if depth > 0 {
		obj, err = c.GetWithLinks(key, depth)
	} else {
		obj, err = c.Get(key)
	}
	printResult(out, obj, err)
}

func runSet(c *client.Client, args string, out io.Writer) {
	key, rest := splitWord(args)
	if key == "" || strings.TrimSpace(rest) == "" {
		fmt.Fprintln(out, "Usage: set KEY VALUE")
		return
	}
	obj, err := parseValue(rest)
	if err != nil {
		fmt.Fprintf(out, "Bad value: %v\n", err)
		return
	}
	prev, err := c.Set(key, obj)
	printResult(out, prev, err)
}

func runDel(c *client.Client, args string, out io.Writer) {
	key, rest := splitWord(args)
	if key == "" || rest != "" {
		fmt.Fprintln(out, "Usage: del KEY")
		return
	}
	removed, err := c.Delete(key)
	printResult(out, removed, err)
}

// printResult renders a response or the error it came with.
func printResult(out io.Writer, obj object.Object, err error) {
	if err != nil {
		if errors.Is(err, protocol.ErrServerError) {
			fmt.Fprintln(out, "Server rejected the request.")
		} else {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return
	}
	fmt.Fprintln(out, formatObject(obj))
}

// splitWord cuts the first whitespace-separated word off s.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/tachyon-vm/tachyon/metadata"
	"github.com/tachyon-vm/tachyon/tachyon"
)

const prompt = ">> "

func main() {
	// Handle CTRL-C
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		os.Exit(0)
	}()

	cfg := tachyon.DefaultConfig()
	if os.Getenv("TACHYON_DEBUG") != "" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logger.Sync()
		cfg.Logger = logger
	}

	s := &session{
		machine: tachyon.NewMachine(cfg),
		scanner: bufio.NewScanner(os.Stdin),
	}
	s.run()
}

type session struct {
	machine *tachyon.Machine
	scanner *bufio.Scanner
}

func (s *session) run() {
	fmt.Print(prompt)

	for s.scanner.Scan() {
		line := s.scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			fmt.Print(prompt)
			continue
		}

		cmd := strings.ToUpper(parts[0])
		args := parts[1:]
		var err error

		switch cmd {
		case "DIS":
			err = s.handleDisassemble(args)
		case "MANIFEST":
			err = s.handleManifest(args)
		case "VERSION":
			s.handleVersion()
		case "HELP":
			s.handleHelp()
		case "QUIT":
			os.Exit(0)
		default:
			fmt.Fprintln(os.Stderr, errorLine(fmt.Sprintf("unknown command: %s", parts[0])))
		}

		if err != nil {
			fmt.Fprintln(os.Stderr, errorLine(err.Error()))
		}
		fmt.Print(prompt)
	}
}

func (s *session) handleDisassemble(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: DIS <path-to-bytecode>")
	}
	code, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return tachyon.Disassemble(os.Stdout, code)
}

func (s *session) handleManifest(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: MANIFEST <path-to-toml>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := metadata.LoadManifest(f)
	if err != nil {
		return err
	}
	fmt.Println(okLine(fmt.Sprintf("%s %s (edition %s)", m.Name, m.Version, m.Edition)))
	for name, dep := range m.Modules {
		fmt.Printf("  module  %-20s %s\n", name, dep.Type)
	}
	for name, dep := range m.Libraries {
		fmt.Printf("  library %-20s %s\n", name, dep.Type)
	}
	return nil
}

func (s *session) handleVersion() {
	fmt.Println(okLine(fmt.Sprintf(
		"tachyon %s (edition %s)", metadata.RuntimeVersion(), metadata.RuntimeEdition,
	)))
}

func (s *session) handleHelp() {
	helpText := `
Commands:
  DIS <path-to-bytecode>
  MANIFEST <path-to-toml>
  VERSION
  HELP
  QUIT
`
	fmt.Println(strings.TrimSpace(helpText))
}

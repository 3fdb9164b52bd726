// Command execcli submits a source file to a running execution API
// and renders the verdict in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional for the CLI, flags and env vars suffice
	_ = godotenv.Load()

	file := flag.String("file", "", "source file to execute (required)")
	lang := flag.String("lang", "python3.11", "language id, see GET /languages")
	stdin := flag.String("stdin", "", "standard input for the program")
	server := flag.String("server", envOr("EXECPIPE_SERVER", "http://localhost:8080"), "API base URL")
	token := flag.String("token", os.Getenv("EXECPIPE_TOKEN"), "bearer token")
	flag.Parse()

	if *file == "" {
		fmt.Println("Please provide a source file using the -file flag.")
		os.Exit(1)
	}
	srcCode, err := os.ReadFile(*file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", *file, err)
		os.Exit(1)
	}
	if *token == "" {
		fmt.Println("Please provide a bearer token via -token or EXECPIPE_TOKEN.")
		os.Exit(1)
	}

	client := newApiClient(*server, *token)
	m := initialModel(client, string(srcCode), *lang, *stdin)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(name string, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// Package main provides the convo CLI, a terminal chat loop over the agent
// service.
//
// Usage:
//
//	convo chat [flags]
//
// With ANTHROPIC_API_KEY set, turns are completed by the Anthropic API;
// without it the CLI runs offline with an echo completer, which still
// exercises sessions, memory compaction, and retrieval.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	chromemgo "github.com/philippgille/chromem-go"
	"github.com/spf13/cobra"

	"github.com/43xlabs/convo-go-sdk/agent"
	"github.com/43xlabs/convo-go-sdk/config"
	"github.com/43xlabs/convo-go-sdk/llm"
	"github.com/43xlabs/convo-go-sdk/memory"
	"github.com/43xlabs/convo-go-sdk/memory/embedder/cached"
	"github.com/43xlabs/convo-go-sdk/memory/embedder/mock"
	"github.com/43xlabs/convo-go-sdk/persist"
)

var (
	flagConfig    string
	flagPersona   string
	flagMaterials []string
	flagStateDir  string
	flagBadger    bool
	flagModel     string
)

var rootCmd = &cobra.Command{
	Use:           "convo",
	Short:         "Conversational test agents with tiered memory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start a session and chat on stdin. Each line is one question; an empty
line or EOF ends the session.

Reference material given with --material is chunked and indexed so answers
can draw on it. With --state-dir, memory survives restarts.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML config file (defaults apply when omitted)")
	chatCmd.Flags().StringVarP(&flagPersona, "persona", "p", "You are a helpful assistant.", "system prompt for the agent")
	chatCmd.Flags().StringArrayVarP(&flagMaterials, "material", "m", nil, "reference material file, repeatable")
	chatCmd.Flags().StringVar(&flagStateDir, "state-dir", "", "directory for persisted session state")
	chatCmd.Flags().BoolVar(&flagBadger, "badger", false, "persist state in a badger database instead of JSON files")
	chatCmd.Flags().StringVar(&flagModel, "model", "", "Anthropic model override")
	rootCmd.AddCommand(chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	completer, offline := buildCompleter()
	if offline {
		fmt.Fprintln(os.Stderr, "ANTHROPIC_API_KEY not set, running offline")
	}

	embedder, err := cached.New(mock.New(), 32<<20)
	if err != nil {
		return err
	}
	defer embedder.Close()

	snapshots, closeSnapshots, err := buildSnapshotStore()
	if err != nil {
		return err
	}
	if closeSnapshots != nil {
		defer closeSnapshots()
	}

	svc, err := agent.NewService(cfg, agent.Deps{
		Completer: completer,
		Embedder:  embedder,
		VectorDB:  chromemgo.NewDB(),
		Snapshots: snapshots,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	materials, err := readMaterials(flagMaterials)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sessionID, err := svc.Start(ctx, flagPersona, materials)
	if err != nil {
		return err
	}
	fmt.Printf("Session %s started. Ask away (empty line to quit).\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		answer, err := svc.Answer(ctx, sessionID, question)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		fmt.Println()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	stats := svc.Stats()
	fmt.Printf("Session over. Cache: %d live, %d hits, %d misses.\n",
		stats.Size, stats.Hits, stats.Misses)
	return nil
}

// buildCompleter returns the Anthropic completer when an API key is present,
// otherwise an offline echo completer so the CLI works without credentials.
func buildCompleter() (llm.Completer, bool) {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		client := anthropic.NewClient()
		opts := []llm.AnthropicOption{}
		if flagModel != "" {
			opts = append(opts, llm.WithModel(flagModel))
		}
		return llm.NewAnthropic(&client, opts...), false
	}

	return llm.CompleterFunc(func(ctx context.Context, system, prompt string) (string, error) {
		lines := strings.Split(prompt, "\n")
		last := lines[len(lines)-1]
		return fmt.Sprintf("(offline) You asked: %s", last), nil
	}), true
}

// buildSnapshotStore wires persistence per the flags. No --state-dir means
// in-process memory only.
func buildSnapshotStore() (memory.SnapshotStore, func() error, error) {
	if flagStateDir == "" {
		return nil, nil, nil
	}
	if flagBadger {
		store, err := persist.NewBadgerStore(flagStateDir)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	store, err := persist.NewFileStore(flagStateDir)
	if err != nil {
		return nil, nil, err
	}
	return store, nil, nil
}

func readMaterials(paths []string) ([]string, error) {
	materials := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read material %s: %w", path, err)
		}
		materials = append(materials, string(data))
	}
	return materials, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/quickgen/internal/prompt"
	"github.com/user/quickgen/internal/session"
	"github.com/user/quickgen/internal/types"
)

var (
	generateDiscuss  bool
	generateNoStream bool
)

func init() {
	generateCmd.Flags().BoolVar(&generateDiscuss, "discuss", false, "discuss the page instead of generating code")
	generateCmd.Flags().BoolVar(&generateNoStream, "no-stream", false, "wait for the full response instead of streaming")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <workspace> <description...>",
	Short: "Generate or refine a workspace's page from a description",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	ws, err := resolveWorkspace(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")

	ctrl, err := newController(cfg, store)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctrl.Start(ctx)
	defer ctrl.Stop()

	opts := []session.Option{
		session.WithOnComplete(func(msg *types.ChatMessage, artifact *types.GeneratedArtifact) {
			if generateNoStream {
				fmt.Fprintln(os.Stdout, msg.Content)
			} else {
				fmt.Fprintln(os.Stdout)
			}
			if artifact != nil {
				fmt.Fprintf(os.Stdout, "\nSaved generated page %s. Run `quickgen preview` to view it.\n", artifact.ID)
			}
		}),
		session.WithOnError(func(err error) {
			fmt.Fprintf(os.Stderr, "\nGeneration failed: %v\n", err)
		}),
	}
	if generateDiscuss {
		opts = append(opts, session.WithMode(prompt.ModeDiscuss))
	}
	if generateNoStream {
		opts = append(opts, session.WithoutStreaming())
	} else {
		// Updates carry the full text so far; print only the unseen tail.
		printed := 0
		opts = append(opts, session.WithOnUpdate(func(content string) {
			if len(content) > printed {
				fmt.Fprint(os.Stdout, content[printed:])
				printed = len(content)
			}
		}))
	}

	req, err := ctrl.Submit(ws, text, opts...)
	if err != nil {
		return fmt.Errorf("submit request: %w", err)
	}
	<-req.Done()
	return nil
}

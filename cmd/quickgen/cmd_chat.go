package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatHistoryCmd, chatClearCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Inspect workspace conversations",
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <workspace>",
	Short: "Print a workspace's conversation in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		ws, err := resolveWorkspace(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		history, err := store.FetchChatHistory(cmd.Context(), ws.ID)
		if err != nil {
			return fmt.Errorf("load chat history: %w", err)
		}
		if len(history) == 0 {
			fmt.Println("No messages yet.")
			return nil
		}

		for _, msg := range history {
			marker := ""
			if msg.IsError {
				marker = " [error]"
			}
			fmt.Fprintf(os.Stdout, "[%s] %s%s:\n%s\n\n",
				msg.Timestamp.Format("2006-01-02 15:04:05"),
				msg.Sender,
				marker,
				msg.Content,
			)
		}
		return nil
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear <workspace>",
	Short: "Delete a workspace's conversation, keeping the generated page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		ws, err := resolveWorkspace(cmd.Context(), store, args[0])
		if err != nil {
			return err
		}
		if err := store.ClearChatHistory(cmd.Context(), ws.ID); err != nil {
			return fmt.Errorf("clear chat history: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Cleared conversation for %s\n", ws.Name)
		return nil
	},
}

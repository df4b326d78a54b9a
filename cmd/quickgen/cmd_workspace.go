package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/quickgen/internal/state"
	"github.com/user/quickgen/internal/types"
)

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceListCmd, workspaceCreateCmd, workspaceRenameCmd, workspaceDeleteCmd, workspaceFavoriteCmd)
}

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
}

// resolveWorkspace accepts either a workspace ID or a workspace name and
// returns the matching workspace. Name matches prefer the most recently
// modified workspace, which ListWorkspaces already sorts first.
func resolveWorkspace(ctx context.Context, store *state.Store, arg string) (*types.Workspace, error) {
	workspaces, err := store.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	for _, ws := range workspaces {
		if string(ws.ID) == arg {
			return ws, nil
		}
	}
	for _, ws := range workspaces {
		if ws.Name == arg {
			return ws, nil
		}
	}
	return nil, fmt.Errorf("workspace not found: %s", arg)
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		workspaces, err := store.ListWorkspaces(cmd.Context())
		if err != nil {
			return fmt.Errorf("list workspaces: %w", err)
		}
		if len(workspaces) == 0 {
			fmt.Println("No workspaces found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFAVORITE\tPAGE\tMODIFIED")
		for _, ws := range workspaces {
			fav := ""
			if ws.Favorite {
				fav = "*"
			}
			page := ""
			if ws.GeneratedHTML != "" {
				page = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				ws.ID,
				ws.Name,
				fav,
				page,
				ws.ModifiedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		ws, err := store.CreateWorkspace(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Created workspace %s (%s)\n", ws.Name, ws.ID)
		return nil
	},
}

var workspaceRenameCmd = &cobra.Command{
	Use:   "rename <workspace> <new-name>",
	Short: "Rename a workspace",
	Args:  cobra.ExactArgs(2),
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
		if err := store.RenameWorkspace(cmd.Context(), ws.ID, args[1]); err != nil {
			return fmt.Errorf("rename workspace: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Renamed workspace %s to %s\n", ws.ID, args[1])
		return nil
	},
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete <workspace>",
	Short: "Delete a workspace and everything in it",
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
		if err := store.DeleteWorkspace(cmd.Context(), ws.ID); err != nil {
			return fmt.Errorf("delete workspace: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Deleted workspace %s (%s)\n", ws.Name, ws.ID)
		return nil
	},
}

var workspaceFavoriteCmd = &cobra.Command{
	Use:   "favorite <workspace>",
	Short: "Toggle a workspace's favorite flag",
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
		ws.Favorite = !ws.Favorite
		if err := store.SaveWorkspace(cmd.Context(), ws); err != nil {
			return fmt.Errorf("save workspace: %w", err)
		}
		if ws.Favorite {
			fmt.Fprintf(os.Stdout, "Marked %s as favorite\n", ws.Name)
		} else {
			fmt.Fprintf(os.Stdout, "Unmarked %s as favorite\n", ws.Name)
		}
		return nil
	},
}

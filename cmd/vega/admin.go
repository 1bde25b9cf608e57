package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/files"
	"github.com/oriys/vega/internal/store"
)

// withStore runs fn against the remote store with a bounded context.
func withStore(fn func(ctx context.Context, s *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, client, err := getStore(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return fn(ctx, s)
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage user records",
	}
	cmd.AddCommand(usersListCmd(), usersCreateCmd(), usersDeleteCmd())
	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List users, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				users, err := s.ListUsers(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tSTEAM_ID\tCREATED")
				for _, u := range users {
					steam := "-"
					if u.SteamID != nil {
						steam = *u.SteamID
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						u.ID, u.Username, u.Email, steam, u.CreatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
}

func usersCreateCmd() *cobra.Command {
	var (
		email   string
		steamID string
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CreateUserRequest{Username: args[0], Email: email}
			if steamID != "" {
				req.SteamID = &steamID
			}
			if err := req.Validate(); err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				id, err := s.CreateUser(ctx, req.Username, req.Email, req.SteamID)
				if err != nil {
					return err
				}
				fmt.Printf("created user %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&steamID, "steam-id", "", "Steam ID")
	cmd.MarkFlagRequired("email")

	return cmd
}

func usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("user id must be numeric: %q", args[0])
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				deleted, err := s.DeleteUser(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("user %d not found", id)
				}
				fmt.Printf("deleted user %d\n", id)
				return nil
			})
		},
	}
}

func appsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Inspect the apps catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List apps, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, s *store.Store) error {
				apps, err := s.ListApps(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "APP_ID\tNAME\tTYPE\tCREATED")
				for _, a := range apps {
					name, typ := "-", "-"
					if a.Name != nil {
						name = *a.Name
					}
					if a.Type != nil {
						typ = *a.Type
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						a.AppID, name, typ, a.CreatedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	})

	return cmd
}

func filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect stored files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls <app_id>",
		Short: "List an app's files, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID := args[0]
			if err := domain.ValidateAppID(appID); err != nil {
				return err
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				list, err := s.ListFiles(ctx, appID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tFILENAME\tTYPE\tSIZE\tUPLOADED")
				for _, f := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
						f.ID, f.Filename, f.FileType, f.Size, f.UploadedAt.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	})

	return cmd
}

func fetchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <app_id>",
		Short: "Download all of an app's files into a local zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID := args[0]
			if err := domain.ValidateAppID(appID); err != nil {
				return err
			}
			if output == "" {
				output = files.ArchiveName(appID)
			}
			return withStore(func(ctx context.Context, s *store.Store) error {
				list, err := s.ListFilesWithContent(ctx, appID)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					return fmt.Errorf("no files found for app %s", appID)
				}

				out, err := os.Create(output)
				if err != nil {
					return err
				}
				n, err := files.BuildArchive(out, list)
				if closeErr := out.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				fmt.Printf("wrote %s (%d files, %d bytes)\n", output, len(list), n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default app_<id>_files.zip)")

	return cmd
}

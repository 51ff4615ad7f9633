package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/algorithmia/pkg/algorithmia"
)

// dataCommand creates the data command with its subcommands.
func (c *CLI) dataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage files and directories in the data store",
		Long: `Manage files and directories in the Algorithmia data store.

Paths use the data:// scheme, e.g. data://.my/photos/cat.jpg. The prefix may
be omitted.`,
	}

	cmd.AddCommand(c.dataListCommand())
	cmd.AddCommand(c.dataCatCommand())
	cmd.AddCommand(c.dataPutCommand())
	cmd.AddCommand(c.dataRemoveCommand())
	cmd.AddCommand(c.dataMkdirCommand())
	cmd.AddCommand(c.dataExistsCommand())

	return cmd
}

// dataURI adds the data:// scheme to bare paths.
func dataURI(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	return algorithmia.DataScheme + strings.TrimLeft(arg, "/")
}

func (c *CLI) dataListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls <directory>",
		Aliases: []string{"list"},
		Short:   "List a directory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := client.Dir(dataURI(args[0])).List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, e := range entries {
				printEntry(w, e.Name, e.Kind == algorithmia.KindDir, e.Size, e.LastModified)
			}
			return nil
		},
	}
}

func (c *CLI) dataCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "Print a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := client.File(dataURI(args[0])).Bytes(cmd.Context())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func (c *CLI) dataPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-file> <destination>",
		Short: "Upload a file",
		Long: `Upload a local file. When the destination ends with "/" the file keeps its
local name inside that directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			local, dest := args[0], dataURI(args[1])
			if strings.HasSuffix(dest, "/") {
				dest += filepath.Base(local)
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			if err := client.File(dest).PutFile(cmd.Context(), local); err != nil {
				return err
			}
			prog.done("Uploaded " + local)
			printSuccess(cmd.OutOrStdout(), "Uploaded %s", StyleHighlight.Render(dest))
			return nil
		},
	}
}

func (c *CLI) dataRemoveCommand() *cobra.Command {
	var dir, force bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			uri := dataURI(args[0])
			if dir {
				err = client.Dir(uri).Delete(cmd.Context(), force)
			} else {
				err = client.File(uri).Delete(cmd.Context())
			}
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", StyleHighlight.Render(uri))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dir, "dir", "d", false, "delete a directory")
	cmd.Flags().BoolVar(&force, "force", false, "delete a directory even if it is not empty")
	return cmd
}

func (c *CLI) dataMkdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <directory>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			uri := dataURI(args[0])
			if err := client.Dir(uri).Create(cmd.Context()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Created %s", StyleHighlight.Render(uri))
			return nil
		},
	}
}

func (c *CLI) dataExistsCommand() *cobra.Command {
	var dir bool

	cmd := &cobra.Command{
		Use:   "exists <path>",
		Short: "Report whether a file or directory exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, err := c.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			uri := dataURI(args[0])
			var ok bool
			if dir {
				ok, err = client.Dir(uri).Exists(cmd.Context())
			} else {
				ok, err = client.File(uri).Exists(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dir, "dir", "d", false, "check a directory")
	return cmd
}

package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ValentinKolb/sprefs/cmd/util"
	prefslib "github.com/ValentinKolb/sprefs/lib/prefs"
	"github.com/ValentinKolb/sprefs/lib/serializer"
	"github.com/spf13/cobra"
)

var (
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints the configuration and engine statistics of the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := prefslib.Handle()
			if err != nil {
				return err
			}
			info := ns.Info()

			fmt.Print(util.GetCLIConfig().String())
			fmt.Println()
			fmt.Println("NAMESPACE FILE")
			fmt.Printf("  %-22s: %s\n", "Resolved Name", ns.Name())
			fmt.Printf("  %-22s: %s\n", "Path", ns.Path())
			fmt.Printf("  %-22s: %s (%s)\n", "Mode", ns.Mode(), ns.Mode().Perm())
			if st, err := os.Stat(ns.Path()); err == nil {
				fmt.Printf("  %-22s: %d bytes\n", "File Size", st.Size())
			} else {
				fmt.Printf("  %-22s: not written yet\n", "File Size")
			}
			fmt.Println()
			fmt.Println("ENGINE")
			fmt.Printf("  %-22s: %s\n", "Type", info.DbType)
			fmt.Printf("  %-22s: %d\n", "Entries", info.Entries)
			fmt.Printf("  %-22s: %d bytes\n", "Size", info.SizeBytes)
			fmt.Printf("  %-22s: %v\n", "Features", info.SupportedFeatures)
			fmt.Printf("  %-22s: %+v\n", "Metadata", info.Metadata)
			return nil
		},
	}
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Writes all entries as json, toml or yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			if format == "" {
				format = formatFromPath(output)
			}

			dumper, err := serializer.NewDumpSerializer(format)
			if err != nil {
				return err
			}
			ns, err := prefslib.Handle()
			if err != nil {
				return err
			}
			data, err := ns.Export(dumper)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Printf("exported %s to %s\n", ns.Name(), output)
			return nil
		},
	}
	importCmd = &cobra.Command{
		Use:   "import [file]",
		Short: "Reads entries from a json, toml or yaml export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, _ := cmd.Flags().GetString("format")
			replace, _ := cmd.Flags().GetBool("replace")
			if format == "" {
				format = formatFromPath(path)
			}

			dumper, err := serializer.NewDumpSerializer(format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read import: %w", err)
			}
			ns, err := prefslib.Handle()
			if err != nil {
				return err
			}
			n, err := ns.Import(data, dumper, replace)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d entries into %s\n", n, ns.Name())
			return nil
		},
	}
)

func init() {
	exportCmd.Flags().String("format", "", util.WrapString("Export format (json, toml, yaml), derived from --output if empty"))
	exportCmd.Flags().StringP("output", "o", "", util.WrapString("Output file, stdout if empty"))

	importCmd.Flags().String("format", "", util.WrapString("Import format (json, toml, yaml), derived from the file extension if empty"))
	importCmd.Flags().Bool("replace", false, util.WrapString("Remove all existing entries before importing"))
}

// formatFromPath derives the dump format from a file extension, json by default
func formatFromPath(path string) string {
	switch ext := strings.TrimPrefix(filepath.Ext(path), "."); ext {
	case "toml", "yaml", "yml":
		return ext
	default:
		return "json"
	}
}

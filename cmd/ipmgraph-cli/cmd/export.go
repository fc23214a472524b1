package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ipmgraph/internal/adapters/rdf"
	"ipmgraph/internal/application/commands"
)

var (
	exportFormat   string
	exportCompress bool
	exportOutput   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Serialize the object store as RDF",
	Long: `Write every triple in the store as Turtle or N-Triples. With --output
the format and compression are taken from the file name unless given.

Examples:
  ipmgraph-cli export
  ipmgraph-cli export --format ntriples
  ipmgraph-cli export -o graph.ttl.zst`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		format := exportFormat
		compress := exportCompress || w.Config.Export.Compress

		var out io.Writer = os.Stdout
		if exportOutput != "" {
			if f, zst, err := rdf.FormatFromPath(exportOutput); err == nil {
				if format == "" {
					format = string(f)
				}
				compress = compress || zst
			}
			file, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}

		enc, err := w.Encoder(format, compress)
		if err != nil {
			return err
		}
		result, err := commands.NewExportCommand(w.Store, enc, out).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if exportOutput != "" {
			fmt.Printf("%s to %s\n", result.Message, exportOutput)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "",
		"output format: "+strings.Join(rdf.Formats(), ", ")+" (default from config)")
	exportCmd.Flags().BoolVarP(&exportCompress, "compress", "z", false, "zstd-compress the output")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

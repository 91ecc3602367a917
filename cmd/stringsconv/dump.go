package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
	"howett.net/plist"

	"github.com/loopcontext/stringsconv"
	"github.com/loopcontext/stringsconv/internal/config"
	"github.com/loopcontext/stringsconv/internal/plistsrc"
)

// dumpConfig holds flags for the dump command.
type dumpConfig struct {
	target     string
	format     string
	decoder    string
	plutilPath string
}

func (a *app) newDumpCmd() *cobra.Command {
	var dc dumpConfig

	cmd := &cobra.Command{
		Use:   "dump -t TARGET",
		Short: "Print the decoded contents of a compiled .strings file",
		Long: `Dump decodes a .strings property list and prints its table sorted by key,
without touching the file. Formats: json (default), yaml, xml (XML plist),
strings (plain-text .strings entries).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEssentialFile(cmd, dc.target, "Target"); err != nil {
				return err
			}
			kind, err := config.ParseDecoderKind(dc.decoder)
			if err != nil {
				return err
			}
			cfg := config.Default()
			cfg.Decoder = kind
			cfg.PlutilPath = dc.plutilPath

			table, err := a.newDecoder(cfg).Decode(cmd.Context(), dc.target)
			if err != nil {
				return fmt.Errorf("decode target: %w", err)
			}
			out, err := renderTable(table, dc.format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&dc.target, "target", "t", "", "Compiled .strings file to decode (required)")
	f.StringVarP(&dc.format, "format", "f", "json", "Output format: json, yaml, xml or strings")
	f.StringVar(&dc.decoder, "decoder", string(config.DecoderPlist), "How to decode the target: plist (built in) or plutil")
	f.StringVar(&dc.plutilPath, "plutil", "plutil", "plutil executable used by --decoder=plutil")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func sortedKeys(table stringsconv.Table) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderTable(table stringsconv.Table, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		out, err := json.MarshalIndent(map[string]string(table), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(out, '\n'), nil
	case "yaml":
		ms := make(yaml.MapSlice, 0, len(table))
		for _, k := range sortedKeys(table) {
			ms = append(ms, yaml.MapItem{Key: k, Value: table[k]})
		}
		out, err := yaml.Marshal(ms)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return out, nil
	case "xml":
		out, err := plistsrc.Marshal(table, plist.XMLFormat)
		if err != nil {
			return nil, fmt.Errorf("marshal plist: %w", err)
		}
		return out, nil
	case "strings":
		var b strings.Builder
		for _, k := range sortedKeys(table) {
			b.WriteString(stringsconv.FormatLine(k, table[k]))
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml, xml or strings)", format)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/loopcontext/stringsconv"
	"github.com/loopcontext/stringsconv/internal/atomicfile"
	"github.com/loopcontext/stringsconv/internal/config"
	"github.com/loopcontext/stringsconv/internal/logging"
	"github.com/loopcontext/stringsconv/internal/textenc"
)

// convertConfig holds flags for the convert command.
type convertConfig struct {
	master     string
	target     string
	out        string
	configPath string
	decoder    string
	plutilPath string
	encoding   string
	marker     string
	strict     bool
	verbose    bool
}

func (a *app) newConvertCmd() *cobra.Command {
	var cc convertConfig

	cmd := &cobra.Command{
		Use:   "convert -m MASTER -t TARGET",
		Short: "Convert a binary .strings file to plain text, sorted like a master file",
		Long: `Convert reads the target .strings file (a binary property list), orders its keys
after the master plain-text .strings file and replaces the target with the
plain-text result.

Master keys missing from the target are skipped with a warning. Target keys
missing from the master are appended after an "/* Unsorted */" marker, sorted
by key.`,
		Example: `  stringsconv convert -m en.lproj/ResearchKit.strings -t es.lproj/ResearchKit.strings

  # whole project, using en.lproj as master
  for dir in Localized/*.lproj; do
    [ "$dir" = Localized/en.lproj ] && continue
    stringsconv convert -m Localized/en.lproj/Localizable.strings -t "$dir/Localizable.strings"
  done`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEssentialFile(cmd, cc.master, "Master"); err != nil {
				return err
			}
			if err := checkEssentialFile(cmd, cc.target, "Target"); err != nil {
				return err
			}
			cfg, err := cc.resolve(cmd)
			if err != nil {
				return err
			}
			a.logger = logging.New(a.stderr, cfg.Verbose)
			_, err = a.runConvert(cmd.Context(), &cc, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cc.master, "master", "m", "", "Master plain text .strings file (required)")
	f.StringVarP(&cc.target, "target", "t", "", "Target binary plist .strings file to convert to plain text (required)")
	f.StringVarP(&cc.out, "out", "o", "", "Write the result here instead of replacing the target")
	f.StringVar(&cc.configPath, "config", "", "Config file (default: "+config.DefaultFileName+" if present)")
	f.StringVar(&cc.decoder, "decoder", string(config.DecoderPlist), "How to decode the target: plist (built in) or plutil")
	f.StringVar(&cc.plutilPath, "plutil", "plutil", "plutil executable used by --decoder=plutil")
	f.StringVar(&cc.encoding, "encoding", string(textenc.Auto), "Master file encoding: auto, utf-8, utf-16, utf-16le, utf-16be")
	f.StringVar(&cc.marker, "marker", stringsconv.DefaultUnsortedMarker, "Line written before keys missing from the master")
	f.BoolVar(&cc.strict, "strict", false, "Exit with status 1 when keys are missing or lines are malformed")
	f.BoolVarP(&cc.verbose, "verbose", "v", false, "Log merge details")
	_ = cmd.MarkFlagRequired("master")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// checkEssentialFile prints the not-found message and usage, like a missing argument.
func checkEssentialFile(cmd *cobra.Command, path string, tag string) error {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s .strings file not found: %s\n\n", tag, path)
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return errReported
}

// resolve layers explicitly set flags over the config file.
func (cc *convertConfig) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cc.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("decoder") {
		if cfg.Decoder, err = config.ParseDecoderKind(cc.decoder); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("encoding") {
		enc, err := textenc.ParseEncoding(cc.encoding)
		if err != nil {
			return config.Config{}, err
		}
		cfg.MasterEncoding = config.Encoding(enc)
	}
	if flags.Changed("plutil") {
		cfg.PlutilPath = cc.plutilPath
	}
	if flags.Changed("marker") {
		cfg.UnsortedMarker = cc.marker
	}
	if flags.Changed("strict") {
		cfg.Strict = cc.strict
	}
	if flags.Changed("verbose") {
		cfg.Verbose = cc.verbose
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) runConvert(ctx context.Context, cc *convertConfig, cfg config.Config) (stringsconv.Report, error) {
	fmt.Fprintf(a.stdout, "Converting: %s\n", cc.target)

	table, err := a.newDecoder(cfg).Decode(ctx, cc.target)
	if err != nil {
		return stringsconv.Report{}, fmt.Errorf("decode target: %w", err)
	}

	master, err := os.Open(cc.master)
	if err != nil {
		return stringsconv.Report{}, fmt.Errorf("open master: %w", err)
	}
	defer master.Close()

	outPath := cc.out
	if outPath == "" {
		outPath = cc.target
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(outPath); err == nil {
		perm = info.Mode().Perm()
	}

	merger := stringsconv.NewMerger(stringsconv.Config{
		UnsortedMarker: cfg.UnsortedMarker,
		Observer:       logging.NewObserver(a.logger),
	})
	var report stringsconv.Report
	err = atomicfile.Write(outPath, perm, func(w io.Writer) error {
		var mergeErr error
		report, mergeErr = merger.Merge(textenc.NewReader(master, textenc.Encoding(cfg.MasterEncoding)), table, w)
		return mergeErr
	})
	if err != nil {
		return report, fmt.Errorf("write %s: %w", outPath, err)
	}
	logging.LogReport(a.logger, outPath, report)
	fmt.Fprintln(a.stdout, "...done")

	if cfg.Strict && !report.Clean() {
		return report, fmt.Errorf("strict: %d missing key(s), %d malformed line(s) in %s",
			len(report.MissingKeys), len(report.MalformedLines), cc.master)
	}
	return report, nil
}

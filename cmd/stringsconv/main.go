package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loopcontext/stringsconv/internal/buildinfo"
	"github.com/loopcontext/stringsconv/internal/config"
	"github.com/loopcontext/stringsconv/internal/plistsrc"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

// app carries the process-level dependencies so tests can swap them.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	newDecoder func(cfg config.Config) plistsrc.Decoder
	logger     *zap.Logger
}

func defaultDecoder(cfg config.Config) plistsrc.Decoder {
	if cfg.Decoder == config.DecoderPlutil {
		return plistsrc.NewPlutilDecoder(cfg.PlutilPath)
	}
	return plistsrc.NewPlistDecoder()
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, newDecoder: defaultDecoder}
	os.Exit(a.execute(os.Args[1:]))
}

func (a *app) execute(args []string) int {
	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(a.stderr, "stringsconv: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stringsconv",
		Short: "stringsconv - convert compiled .strings resources back to plain text",
		Long: `stringsconv converts a binary property-list .strings file into a plain-text
.strings file, ordering its keys after a master plain-text file (typically
en.lproj/Localizable.strings). Comments and blank lines of the master are kept;
keys only the target knows are appended after an "Unsorted" marker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.AddCommand(a.newConvertCmd(), a.newDumpCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

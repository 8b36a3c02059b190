package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const tailBlockSize = 64 * 1024

func newLogsCmd(ctx *context) *cobra.Command {
	var follow bool
	var lines int
	cmd := &cobra.Command{
		Use:   "logs <service>",
		Short: "Print the log file of a managed service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor()
			if err != nil {
				return err
			}
			path, err := sup.LogPath(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s has no log output yet\n", args[0])
					return nil
				}
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			if err := printTail(out, f, lines); err != nil {
				return err
			}
			if !follow {
				return nil
			}
			return followFile(cmd, out, f)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "F", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of trailing lines to print (0 for the whole file)")
	return cmd
}

// printTail writes the last n lines of f and leaves the file position at
// the end so a follower picks up only new output.
func printTail(out io.Writer, f *os.File, n int) error {
	if n <= 0 {
		_, err := io.Copy(out, f)
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	offset := size - tailBlockSize
	if offset < 0 {
		offset = 0
	}
	block := make([]byte, size-offset)
	if _, err := f.ReadAt(block, offset); err != nil && err != io.EOF {
		return err
	}

	if _, err := out.Write(lastLines(block, n)); err != nil {
		return err
	}
	_, err = f.Seek(size, io.SeekStart)
	return err
}

func lastLines(block []byte, n int) []byte {
	trimmed := bytes.TrimRight(block, "\n")
	if len(trimmed) == 0 {
		return nil
	}
	idx := len(trimmed)
	for i := 0; i < n; i++ {
		next := bytes.LastIndexByte(trimmed[:idx], '\n')
		if next < 0 {
			return block
		}
		idx = next
	}
	return block[idx+1:]
}

// followFile polls for new output until the command context is cancelled.
func followFile(cmd *cobra.Command, out io.Writer, f *os.File) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
			info, err := f.Stat()
			if err != nil {
				return err
			}
			pos, err := f.Seek(0, io.SeekCurrent)
			if err != nil {
				return err
			}
			if info.Size() < pos {
				// Log was truncated; start over from the top.
				if _, err := f.Seek(0, io.SeekStart); err != nil {
					return err
				}
			}
			if _, err := io.Copy(out, f); err != nil {
				return err
			}
		}
	}
}

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/marketpulse/indexq/core"
)

var _ Output = (*File)(nil)

// File writes the whole result set to a file. The name "-" selects w,
// which defaults to stdout.
type File struct {
	fileName  string
	formatter core.Formatter
	log       *slog.Logger
	stdout    io.Writer
}

func NewFile(fileName string, formatter core.Formatter, logger *slog.Logger) *File {
	return &File{
		fileName:  fileName,
		formatter: formatter,
		log:       logger,
		stdout:    os.Stdout,
	}
}

// WithWriter replaces stdout as the destination of "-".
func (fo *File) WithWriter(w io.Writer) *File {
	fo.stdout = w
	return fo
}

func (fo *File) Write(rs *core.ResultSet) error {
	out, err := rs.Format(fo.formatter, 0, -1)
	if err != nil {
		return fmt.Errorf("rs.Format: %w", err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}

	if fo.fileName == "-" || fo.fileName == "" {
		if _, err := fo.stdout.Write(out); err != nil {
			return fmt.Errorf("failed writing to stdout: %w", err)
		}
		return nil
	}

	file, err := os.Create(fo.fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(out); err != nil {
		return fmt.Errorf("failed writing %s: %w", fo.fileName, err)
	}

	fo.log.Info("result saved",
		slog.String("file", fo.fileName),
		slog.Int("rows", rs.Len()),
	)
	return nil
}

package branches

import (
	"fmt"
	"io"

	"github.com/temirov/stale-branches/internal/utils"
)

// Reporter emits human-readable progress lines.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes through a flushing wrapper of writer.
func NewWriterReporter(writer io.Writer) Reporter {
	return writerReporter{writer: utils.NewFlushingWriter(writer)}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}

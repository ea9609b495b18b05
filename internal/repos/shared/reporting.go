package shared

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const lineTerminatorConstant = "\n"

// Reporter emits human-readable lines, such as registration results, to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
	mutex  *sync.Mutex
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer, or standard output when none is given.
// Every call emits exactly one newline-terminated line and calls from several goroutines never interleave.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer, mutex: &sync.Mutex{}}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, lineTerminatorConstant) {
		line += lineTerminatorConstant
	}

	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	_, _ = io.WriteString(reporter.writer, line)
}

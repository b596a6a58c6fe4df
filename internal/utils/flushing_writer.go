package utils

import (
	"io"
	"sync"
)

// FlushingWriter serializes writes and flushes the destination after each one
// when it buffers, so narration lines appear as soon as they are printed.
type FlushingWriter struct {
	mutex       sync.Mutex
	destination io.Writer
	flush       func() error
}

// NewFlushingWriter wraps writer. A nil writer yields io.Discard and a
// FlushingWriter is returned as is.
func NewFlushingWriter(writer io.Writer) io.Writer {
	switch typed := writer.(type) {
	case nil:
		return io.Discard
	case *FlushingWriter:
		return typed
	case interface{ Flush() error }:
		return &FlushingWriter{destination: writer, flush: typed.Flush}
	default:
		return &FlushingWriter{destination: writer}
	}
}

// Write forwards data and flushes. A flush failure is reported even when the write succeeded.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.destination.Write(data)
	if writeError != nil || writer.flush == nil {
		return written, writeError
	}
	return written, writer.flush()
}

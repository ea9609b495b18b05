package utils

import (
	"io"
	"sync"
)

// SerializedOutput is the destination shared by every repository task of one run. Writes are
// serialized, buffered destinations are flushed after each write, and the first failure is kept so
// that a closed pipe stops all later report output.
type SerializedOutput struct {
	mutex        sync.Mutex
	destination  io.Writer
	failure      error
	bytesWritten int64
}

// NewSerializedOutput wraps destination in a SerializedOutput. Wrapping an existing SerializedOutput
// returns it unchanged and a nil destination discards output.
func NewSerializedOutput(destination io.Writer) *SerializedOutput {
	if existing, alreadyWrapped := destination.(*SerializedOutput); alreadyWrapped {
		return existing
	}
	if destination == nil {
		destination = io.Discard
	}
	return &SerializedOutput{destination: destination}
}

// Write implements io.Writer.
func (output *SerializedOutput) Write(data []byte) (int, error) {
	output.mutex.Lock()
	defer output.mutex.Unlock()

	if output.failure != nil {
		return 0, output.failure
	}

	written, writeError := output.destination.Write(data)
	output.bytesWritten += int64(written)
	if writeError == nil {
		if flusher, flushable := output.destination.(interface{ Flush() error }); flushable {
			writeError = flusher.Flush()
		}
	}
	if writeError != nil {
		output.failure = writeError
	}
	return written, writeError
}

// Err returns the first write or flush failure.
func (output *SerializedOutput) Err() error {
	output.mutex.Lock()
	defer output.mutex.Unlock()
	return output.failure
}

// BytesWritten reports how many bytes reached the destination.
func (output *SerializedOutput) BytesWritten() int64 {
	output.mutex.Lock()
	defer output.mutex.Unlock()
	return output.bytesWritten
}

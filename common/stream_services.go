package common

import (
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

const (
	// timeout before a write on the stream is considered failed
	C_STREAM_TIMEOUT = 10 * time.Second

	// a stream without any message for this long is dropped
	C_STREAM_IDLE_TIMEOUT = 3 * time.Minute

	// largest accepted frame, above the 20MB block reply cap
	C_MAX_MESSAGE_SIZE = 32 * 1024 * 1024

	frameHeaderSize = 4
)

var ErrMessageTooLarge = errors.New("message size overflow")

// Stream is a bidirectional byte stream with deadlines, net.Conn satisfies it.
type Stream interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

var _ Stream = net.Conn(nil)

// Reads one length prefixed message from the stream.
func ReadMessageFromStream(stream Stream) ([]byte, error) {
	err := stream.SetReadDeadline(time.Now().Add(C_STREAM_IDLE_TIMEOUT))
	if err != nil {
		return nil, errors.Wrap(err, "failed to set read deadline")
	}
	var head [frameHeaderSize]byte
	if _, err := io.ReadFull(stream, head[:]); err != nil {
		return nil, wrapStreamError(err, "failed to read message length")
	}
	size := binary.BigEndian.Uint32(head[:])
	if size > C_MAX_MESSAGE_SIZE {
		return nil, errors.Wrapf(ErrMessageTooLarge, "got %d bytes", size)
	}
	msg := make([]byte, size)
	if _, err := io.ReadFull(stream, msg); err != nil {
		return nil, wrapStreamError(err, "failed to read message from stream")
	}
	countMessage("received", len(msg))
	return msg, nil
}

// Writes the message to the stream behind its length.
func WriteMessageToStream(stream Stream, msg []byte) error {
	if len(msg) > C_MAX_MESSAGE_SIZE {
		return errors.Wrapf(ErrMessageTooLarge, "got %d bytes", len(msg))
	}
	err := stream.SetWriteDeadline(time.Now().Add(C_STREAM_TIMEOUT))
	if err != nil {
		return errors.Wrap(err, "failed to set write deadline")
	}
	var head [frameHeaderSize]byte
	binary.BigEndian.PutUint32(head[:], uint32(len(msg)))
	if _, err := stream.Write(head[:]); err != nil {
		return wrapStreamError(err, "failed to write message length")
	}
	if len(msg) == 0 {
		countMessage("sent", len(msg))
		return nil
	}
	if _, err := stream.Write(msg); err != nil {
		return wrapStreamError(err, "failed to write message to stream")
	}
	countMessage("sent", len(msg))
	return nil
}

func wrapStreamError(err error, msg string) error {
	if errors.Is(err, io.EOF) {
		// the stream is closed
		return err
	}
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return errors.Wrap(err, "stream deadline exceeded")
	}
	return errors.Wrap(err, msg)
}

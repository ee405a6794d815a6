package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// maxChannelLen bounds the channel name in a frame header.
const maxChannelLen = 255

// writeFrame writes a frame to the connection with the format:
// - 1 byte:  channel name length
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: channel name
// - M bytes: data payload
func writeFrame(conn net.Conn, channel string, requestID uint64, data []byte) error {
	if len(channel) == 0 || len(channel) > maxChannelLen {
		return fmt.Errorf("invalid channel name length: %d", len(channel))
	}

	header := make([]byte, 13)
	header[0] = byte(len(channel))
	binary.BigEndian.PutUint64(header[1:9], requestID)
	binary.BigEndian.PutUint32(header[9:13], uint32(len(data)))

	b := net.Buffers{header, []byte(channel), data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from the connection using the provided buffer.
// If the buffer is too small, it allocates a new temporary buffer for the
// data.
func readFrame(conn net.Conn, buf []byte) (string, uint64, []byte, error) {
	if buf == nil || len(buf) < 13+maxChannelLen {
		buf = make([]byte, 13+maxChannelLen)
	}

	// Read fixed header
	if _, err := io.ReadFull(conn, buf[:13]); err != nil {
		return "", 0, nil, err
	}

	channelLen := int(buf[0])
	requestID := binary.BigEndian.Uint64(buf[1:9])
	contentLength := binary.BigEndian.Uint32(buf[9:13])

	if channelLen == 0 {
		return "", 0, nil, fmt.Errorf("frame with empty channel name")
	}

	// Read channel name
	if _, err := io.ReadFull(conn, buf[:channelLen]); err != nil {
		return "", 0, nil, err
	}
	channel := string(buf[:channelLen])

	if contentLength == 0 {
		return channel, requestID, []byte{}, nil
	}

	// Check if buffer is large enough for data
	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	if _, err := io.ReadFull(conn, buf[:contentLength]); err != nil {
		return "", 0, nil, err
	}

	return channel, requestID, buf[:contentLength], nil
}

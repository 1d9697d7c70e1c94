package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// maxFrameLine bounds a single payload line. A full map with a few thousand
// entities stays well under this.
const maxFrameLine = 16 * 1024 * 1024

// FrameReader reads "<payload>\n.\n" frames.
type FrameReader struct {
	br *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &FrameReader{br: br}
	}
	return &FrameReader{br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadFrame returns the payload line of the next frame. It returns io.EOF
// only when the stream ends cleanly between frames.
func (fr *FrameReader) ReadFrame() (string, error) {
	payload, err := fr.readLine()
	if err != nil {
		if err == io.EOF && payload == "" {
			return "", io.EOF
		}
		if err == io.EOF {
			return "", Framingf("payload", "stream ended mid-line")
		}
		return "", err
	}

	sentinel, err := fr.readLine()
	if err != nil {
		if err == io.EOF {
			return "", Framingf("sentinel", "stream ended before sentinel: %v", io.ErrUnexpectedEOF)
		}
		return "", err
	}
	if sentinel != Sentinel {
		return "", Framingf("sentinel", "expected %q, got %q", Sentinel, truncate(sentinel, 64))
	}
	return payload, nil
}

func (fr *FrameReader) readLine() (string, error) {
	var sb strings.Builder
	for {
		chunk, err := fr.br.ReadSlice('\n')
		sb.Write(chunk)
		if sb.Len() > maxFrameLine {
			return "", Framingf("payload", "line exceeds %d bytes", maxFrameLine)
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == io.EOF {
			return sb.String(), io.EOF
		}
		return "", err
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

type flusher interface {
	Flush() error
}

// FrameWriter writes frames and flushes after each one.
type FrameWriter struct {
	bw *bufio.Writer
	// dst is flushed too when it buffers on its own (e.g. a wrapped bufio.Writer).
	dst io.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{bw: bufio.NewWriterSize(w, 64*1024), dst: w}
}

func (fw *FrameWriter) WriteFrame(payload string) error {
	if strings.Contains(payload, "\n") {
		return Framingf("payload", "payload contains a newline")
	}
	if _, err := fw.bw.WriteString(payload); err != nil {
		return err
	}
	if _, err := fw.bw.WriteString("\n" + Sentinel + "\n"); err != nil {
		return err
	}
	if err := fw.bw.Flush(); err != nil {
		return err
	}
	if f, ok := fw.dst.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// EncodeFrame renders a complete frame as bytes, for message-based transports.
func EncodeFrame(payload string) ([]byte, error) {
	if strings.Contains(payload, "\n") {
		return nil, Framingf("payload", "payload contains a newline")
	}
	return []byte(payload + "\n" + Sentinel + "\n"), nil
}

// DecodeFrame parses exactly one complete frame.
func DecodeFrame(b []byte) (string, error) {
	fr := NewFrameReader(strings.NewReader(string(b)))
	payload, err := fr.ReadFrame()
	if err == io.EOF {
		return "", Framingf("frame", "empty frame")
	}
	if err != nil {
		return "", err
	}
	if rest, _ := fr.br.Peek(1); len(rest) > 0 {
		return "", Framingf("frame", "trailing data after sentinel")
	}
	return payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package llm

import (
	"errors"
	"io"
	"strings"
)

// Collect drains s and returns the concatenated text. The stream is closed
// before returning.
func Collect(s Stream) (string, error) {
	defer s.Close()

	var b strings.Builder
	for {
		delta, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(delta)
	}
}

// sliceStream replays fixed chunks. Used by the mock provider.
type sliceStream struct {
	chunks []string
	usage  Usage
	err    error
	closed bool
}

func (s *sliceStream) Recv() (string, error) {
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *sliceStream) Usage() Usage { return s.usage }

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

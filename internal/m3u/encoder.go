package m3u

import (
	"bufio"
	"fmt"
	"io"
)

// Encoder accumulates playlist entries and writes them as an extended M3U document.
type Encoder struct {
	entries []*Entry
}

func NewEncoder() *Encoder {
	return &Encoder{entries: []*Entry{}}
}

func (e *Encoder) Add(entry *Entry) {
	e.entries = append(e.entries, entry)
}

// Len returns the number of entries added so far.
func (e *Encoder) Len() int {
	return len(e.entries)
}

func (e *Encoder) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprint(bw, "#EXTM3U\n"); err != nil {
		return err
	}

	for _, entry := range e.entries {
		if err := entry.encode(bw); err != nil {
			return err
		}
	}

	return bw.Flush()
}

package m3u

import (
	"fmt"
	"io"
	"strings"
)

// UnknownDuration is written for live entries.
const UnknownDuration = -1

type Entry struct {
	Title    string
	URI      string
	Duration int
	TVGTags  *TVGTags
}

func (en *Entry) encode(w io.Writer) error {
	duration := en.Duration
	if duration <= 0 {
		duration = UnknownDuration
	}

	if _, err := fmt.Fprintf(w, "#EXTINF:%d", duration); err != nil {
		return err
	}

	if en.TVGTags != nil {
		if err := en.TVGTags.encode(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", singleLine(en.Title), singleLine(en.URI)); err != nil {
		return err
	}

	return nil
}

// singleLine keeps a value from breaking the line-oriented format.
func singleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

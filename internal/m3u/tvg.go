package m3u

import (
	"fmt"
	"io"
	"strings"
)

type TVGTags struct {
	ID         string
	Name       string
	Logo       string
	GroupTitle string
}

func (t *TVGTags) encode(w io.Writer) error {
	attrs := []struct{ key, value string }{
		{"tvg-id", t.ID},
		{"tvg-name", t.Name},
		{"tvg-logo", t.Logo},
		{"group-title", t.GroupTitle},
	}

	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, " %s=\"%s\"", a.key, attrValue(a.value)); err != nil {
			return err
		}
	}

	return nil
}

func attrValue(s string) string {
	return strings.ReplaceAll(singleLine(s), `"`, "'")
}

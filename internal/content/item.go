package content

import "strings"

// Stream is one playable source of a content item.
type Stream struct {
	URL   string
	Title string
	Name  string
}

// Item is a piece of addon content (usually a live channel) that ends up as one
// or more playlist entries. Poster is the image reference written as the entry
// logo; the logo pipeline may overwrite it with a better one.
type Item struct {
	ID          string
	Title       string
	Type        string
	Year        string
	Genre       string
	Language    string
	Streams     []Stream
	Poster      string
	Description string
	IMDBRating  string
	Duration    int
}

// NewItem creates an Item with the given id and title.
// Both are trimmed; ErrEmptyID and ErrEmptyTitle are returned when blank.
func NewItem(id, title string) (Item, error) {
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return Item{}, ErrEmptyID
	}

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return Item{}, ErrEmptyTitle
	}

	return Item{ID: trimmedID, Title: trimmedTitle}, nil
}

// PlayableStreams returns the streams that carry a URL.
func (i Item) PlayableStreams() []Stream {
	var out []Stream
	for _, s := range i.Streams {
		if strings.TrimSpace(s.URL) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a copy of the items slice whose Streams slices are not shared
// with the original.
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Streams = append([]Stream(nil), it.Streams...)
		out[i] = it
	}
	return out
}

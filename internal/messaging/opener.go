package messaging

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// LinkRecorder is an Opener for callers that cannot launch apps themselves,
// such as the REST API or a terminal. It reports custom app schemes as
// unavailable, so a WhatsApp dispatcher ends up recording the web link, and
// keeps every link it accepted for the caller to hand on.
type LinkRecorder struct {
	mu    sync.Mutex
	links []string
}

func (r *LinkRecorder) Open(_ context.Context, link string) error {
	if !strings.HasPrefix(link, "https://") && !strings.HasPrefix(link, "http://") {
		return ErrAppUnavailable
	}
	r.mu.Lock()
	r.links = append(r.links, link)
	r.mu.Unlock()
	return nil
}

// Links returns the accepted links in the order they were opened.
func (r *LinkRecorder) Links() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links...)
}

// Last returns the most recently accepted link, or "" if none.
func (r *LinkRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.links) == 0 {
		return ""
	}
	return r.links[len(r.links)-1]
}

// WriterOpener prints web links to w, one per line.
type WriterOpener struct {
	W io.Writer
}

func (o WriterOpener) Open(_ context.Context, link string) error {
	if !strings.HasPrefix(link, "https://") && !strings.HasPrefix(link, "http://") {
		return ErrAppUnavailable
	}
	_, err := fmt.Fprintln(o.W, link)
	return err
}

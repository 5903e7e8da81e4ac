package chrome

import (
	"context"
	"net"
	"net/http"
	"net/url"
)

const probePage = `<!doctype html>
<html><head><meta charset="utf-8"><title>prism</title></head><body></body></html>`

// pageServer serves the blank probe page on a loopback port. Loopback origins
// are secure contexts, which the permission and media-device APIs require.
type pageServer struct {
	listener net.Listener
	server   *http.Server
	done     chan struct{}
}

func newPageServer() (*pageServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &pageServer{
		listener: ln,
		done:     make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	s.server = &http.Server{Handler: mux}
	go func() {
		s.server.Serve(ln)
		close(s.done)
	}()
	return s, nil
}

// URL returns the probe page address.
func (s *pageServer) URL() *url.URL {
	return &url.URL{
		Scheme: "http",
		Host:   s.listener.Addr().String(),
		Path:   "/",
	}
}

// Close shuts the server down and waits for the serve loop to exit.
func (s *pageServer) Close(ctx context.Context) error {
	err := s.server.Close()
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return err
}

func (s *pageServer) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Write([]byte(probePage))
}

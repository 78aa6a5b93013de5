package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/alpharx/pkg/framework"
	"github.com/robotalks/alpharx/pkg/msgs"
)

// DefaultPath is where the stream is served.
const DefaultPath = "/packets"

// WriteTimeout drops clients which can't keep up.
const WriteTimeout = time.Second

// Server broadcasts events to all connected clients. Clients only
// listen, anything they send is discarded.
type Server struct {
	Addr string
	Path string

	clients map[*Conn]struct{}
	lock    sync.Mutex
}

// NewServer creates a Server listening on addr.
func NewServer(addr string) *Server {
	return &Server{Addr: addr, Path: DefaultPath, clients: make(map[*Conn]struct{})}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

// Handler returns the http.Handler serving the stream.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.Path, websocket.Handler(s.serveConn))
	return mux
}

func (s *Server) serveConn(ws *websocket.Conn) {
	ws.PayloadType = websocket.BinaryFrame
	conn := New(ws)
	s.lock.Lock()
	s.clients[conn] = struct{}{}
	s.lock.Unlock()
	glog.V(2).Infof("websocket client %s connected", ws.Request().RemoteAddr)
	for {
		if _, err := conn.ReadPacket(); err != nil {
			break
		}
	}
	s.remove(conn)
	glog.V(2).Infof("websocket client %s disconnected", ws.Request().RemoteAddr)
}

func (s *Server) remove(conn *Conn) {
	s.lock.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.lock.Unlock()
	if ok {
		conn.Close()
	}
}

// SendEvent implements rx.Publisher. A failing client is dropped, the
// event still reaches the others.
func (s *Server) SendEvent(ctx context.Context, msg msgs.Message) error {
	data, err := msgs.Encode(msg, 0)
	if err != nil {
		return err
	}
	s.lock.Lock()
	conns := make([]*Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.lock.Unlock()
	var errs fx.AggregatedError
	for _, conn := range conns {
		(*websocket.Conn)(conn).SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := conn.WritePacket(data); err != nil {
			errs.Add(err)
			s.remove(conn)
		}
	}
	return errs.Aggregate()
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	glog.Infof("websocket listening on %s%s", ln.Addr(), s.Path)
	server := &http.Server{Handler: s.Handler()}
	err = fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		s.closeAll()
	}, func() error {
		return server.Serve(ln)
	})
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) closeAll() {
	s.lock.Lock()
	conns := s.clients
	s.clients = make(map[*Conn]struct{})
	s.lock.Unlock()
	for conn := range conns {
		conn.Close()
	}
}

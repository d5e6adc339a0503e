package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/feltworks/holdem/internal/ai"
	"github.com/feltworks/holdem/internal/config"
	"github.com/feltworks/holdem/internal/history"
)

// Server accepts WebSocket clients and hosts the configured tables.
type Server struct {
	cfg      *config.Config
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]bool
	tables      map[string]*Table
}

// NewServer builds a server and its tables from configuration.
func NewServer(cfg *config.Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
		tables:      make(map[string]*Table),
	}

	var writer history.Writer = history.NoOpWriter{}
	if cfg.History.Enabled {
		writer = history.NewFileWriter(cfg.History.Directory)
	}

	for _, tableCfg := range cfg.Tables {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		table, err := NewTable(tableCfg, writer, rng, logger)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tableCfg.Name, err)
		}
		for _, botCfg := range cfg.BotsForTable(tableCfg.Name) {
			if err := table.AddBot(botCfg.Name, ai.Style(botCfg.Style), botCfg.BuyIn); err != nil {
				return nil, fmt.Errorf("bot %s: %w", botCfg.Name, err)
			}
		}
		s.tables[tableCfg.Name] = table
	}

	return s, nil
}

// Run serves HTTP and drives all table runners until the context ends.
func (s *Server) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{Addr: s.cfg.ListenAddress(), Handler: mux}

	for _, table := range s.tables {
		table := table
		group.Go(func() error { return table.Run(ctx) })
	}

	group.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.ListenAddress())
		err := httpServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeConnections()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// Table returns the named table, or nil.
func (s *Server) Table(id string) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[id]
}

// ListTables describes all hosted tables.
func (s *Server) ListTables() []TableInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]TableInfo, 0, len(s.tables))
	for _, table := range s.tables {
		infos = append(infos, table.Info())
	}
	return infos
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client connected", "total", total)

	client.Start()

	go func() {
		<-client.ctx.Done()
		s.dropConnection(client)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) dropConnection(client *Connection) {
	s.mu.Lock()
	delete(s.connections, client)
	total := len(s.connections)
	s.mu.Unlock()

	// unseat the player so the table does not wait on a dead connection
	if playerID, tableID := client.PlayerID(), client.TableID(); playerID != "" && tableID != "" {
		if table := s.Table(tableID); table != nil {
			_ = table.Leave(playerID)
		}
	}
	_ = client.Close()
	s.logger.Info("client disconnected", "total", total)
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

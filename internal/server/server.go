// Package server is the long-lived MCP stdio adapter. It owns one open
// store for its whole lifetime and registers one tool per core operation;
// writes go through the busy-retry wrapper and the identity resolver.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jaakkos/blackboard/internal/app"
	"github.com/jaakkos/blackboard/internal/identity"
)

const serverName = "bb"

const instructionsText = `Shared project blackboard for coordinating multiple agents.

Call bb_identify once with your agent id before any write (unless the
server was started with a fixed identity). Post findings and questions
with bb_post_message, keep your presence fresh with bb_set_status, and
register produced files with bb_register_artifact. Attach references
({where, what, ref}) to link messages and artifacts to tickets, files,
or other messages; bb_find_refs finds everything linked to one target.`

// Server wires the core service, the identity resolver, and the mcp-go
// host together.
type Server struct {
	svc    *app.Service
	ids    *identity.Resolver
	logger *log.Logger
	mcp    *mcpserver.MCPServer
}

// New builds the MCP server and registers every tool.
func New(svc *app.Service, ids *identity.Resolver, logger *log.Logger, version string) *Server {
	s := &Server{svc: svc, ids: ids, logger: logger}

	hooks := &mcpserver.Hooks{}
	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		if message != nil {
			logger.Printf("Tool call: %s", message.Params.Name)
		}
	})

	s.mcp = mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithInstructions(instructionsText),
		mcpserver.WithHooks(hooks),
	)

	s.registerIdentify()
	s.registerStatusTools()
	s.registerMessagingTools()
	s.registerArtifactTools()
	s.registerFindRefs()
	s.registerSummary()

	return s
}

// Run serves stdio until ctx is cancelled or the client disconnects. The
// change watcher runs alongside and pushes notifications when another
// process appends messages.
func (s *Server) Run(ctx context.Context, dbPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := newChangeWatcher(s.svc, dbPath, s.notifyNewMessages, s.logger)
	go watcher.Start(ctx)
	defer watcher.Stop()

	s.logger.Println("Stdio ready")
	stdio := mcpserver.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// notifyNewMessages pushes a blackboard_update notification to every
// connected client when the message log has grown.
func (s *Server) notifyNewMessages(maxID int64) {
	s.mcp.SendNotificationToAllClients("notifications/blackboard_update", map[string]any{
		"max_message_id": maxID,
	})
	s.logger.Printf("Pushed blackboard_update (max_message_id=%d)", maxID)
}

// touchCaller refreshes the caller's last_seen on read tools, when an
// identity is resolved. Failures only log; reads never fail on touch.
func (s *Server) touchCaller() {
	id, ok := s.ids.Resolve()
	if !ok {
		return
	}
	if err := app.Retry(func() error { return s.svc.Touch(id) }); err != nil {
		s.logger.Printf("Touch %s failed: %v", id, err)
	}
}

// jsonResult marshals v as the tool's text payload.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// SetupLogger creates a logger writing to the log file and, when stderr is
// an interactive terminal, to stderr as well. Never stdout: that carries
// the MCP protocol stream.
func SetupLogger(logFilePath string) *log.Logger {
	var writers []io.Writer

	stderrIsTerminal := false
	if info, err := os.Stderr.Stat(); err == nil {
		stderrIsTerminal = (info.Mode() & os.ModeCharDevice) != 0
	}

	hasLogFile := false
	lower := strings.ToLower(logFilePath)
	if lower != "none" && lower != "off" && logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err == nil {
			f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
				hasLogFile = true
			} else {
				fmt.Fprintf(os.Stderr, "[bb-mcp] Warning: cannot open log file %s: %v\n", logFilePath, err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "[bb-mcp] Warning: cannot create log dir %s: %v\n", filepath.Dir(logFilePath), err)
		}
	}

	if stderrIsTerminal || !hasLogFile {
		writers = append(writers, os.Stderr)
	}

	return log.New(io.MultiWriter(writers...), "[bb-mcp] ", log.LstdFlags)
}

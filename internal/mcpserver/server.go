package mcpserver

import (
	"net/http"

	"github.com/akolanti/CourseChatAPI/internal/rag"
	"github.com/akolanti/CourseChatAPI/internal/rag/retriever"
	"github.com/akolanti/CourseChatAPI/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

// Server exposes the course QA pipeline over the Model Context Protocol so
// agent frontends can search course material and ask questions directly.
type Server struct {
	ragService rag.Service
	retriever  *retriever.Retriever
	server     *mcp.Server
	logger     *logger_i.Logger
}

func NewServer(ragService rag.Service, r *retriever.Retriever) *Server {
	impl := &mcp.Implementation{
		Name:    "course-chat",
		Version: Version,
	}

	s := &Server{
		ragService: ragService,
		retriever:  r,
		server:     mcp.NewServer(impl, nil),
		logger:     logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s
}

// HTTPHandler returns the streamable HTTP transport, mounted by the main
// router under /mcp.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

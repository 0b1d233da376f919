package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledgergate-backend/models"
	"ledgergate-backend/services"
	"ledgergate-backend/topic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the mcp-go server with our business logic
type MCPServer struct {
	mcpServer  *server.MCPServer
	topicSvc   *services.TopicService
	chatSvc    *services.ChatService
	licenseSvc *services.LicenseService
}

// NewMCPServer creates a new MCP server using the mcp-go library
func NewMCPServer(topicSvc *services.TopicService, chatSvc *services.ChatService, licenseSvc *services.LicenseService) *MCPServer {
	mcpServer := server.NewMCPServer(
		"Ledgergate MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		mcpServer:  mcpServer,
		topicSvc:   topicSvc,
		chatSvc:    chatSvc,
		licenseSvc: licenseSvc,
	}

	s.registerTools()

	return s
}

// GetMCPServer returns the underlying MCP server for transport setup
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// registerTools registers all MCP tools with the server
func (s *MCPServer) registerTools() {
	s.registerGetQuotaTool()
	s.registerGetLatestMessageTool()
	s.registerListMessagesTool()
	s.registerSendChatMessageTool()
	s.registerCreateProjectTool()
	s.registerMintLicenseTool()
}

// registerGetQuotaTool creates a tool for reading a topic's message allowance
func (s *MCPServer) registerGetQuotaTool() {
	tool := mcp.NewTool("get_quota",
		mcp.WithDescription("Get the message allowance state for a topic, derived from its on-ledger records"),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("ID of the topic feed")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topicID, err := request.RequireString("topic_id")
		if err != nil {
			return errorResult(NewMissingFieldError("get_quota", "topic_id")), nil
		}

		state, err := s.topicSvc.GetQuota(ctx, topicID)
		if err != nil {
			if errors.Is(err, topic.ErrProjectNotFound) {
				return errorResult(NewProjectNotFoundError("get_quota", topicID)), nil
			}
			return errorResult(NewUpstreamError("get_quota", "mirror node")), nil
		}

		result := map[string]interface{}{
			"topic_id":           topicID,
			"total_allowance":    state.TotalAllowance,
			"messages_used":      state.MessagesUsed,
			"remaining_messages": state.RemainingMessages,
		}

		return mcp.NewToolResultText(fmt.Sprintf("Quota for topic %s:\n\n%+v", topicID, result)), nil
	})
}

// registerGetLatestMessageTool creates a tool for reading the newest raw
// entry on a topic feed
func (s *MCPServer) registerGetLatestMessageTool() {
	tool := mcp.NewTool("get_latest_message",
		mcp.WithDescription("Get the newest raw entry on a topic feed without replaying its history"),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("ID of the topic feed")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topicID, err := request.RequireString("topic_id")
		if err != nil {
			return errorResult(NewMissingFieldError("get_latest_message", "topic_id")), nil
		}

		entry, err := s.topicSvc.GetLatestEntry(ctx, topicID)
		if err != nil {
			return errorResult(NewUpstreamError("get_latest_message", "mirror node")), nil
		}
		if entry == nil {
			return mcp.NewToolResultText(fmt.Sprintf("Topic %s has no messages", topicID)), nil
		}

		result := map[string]interface{}{
			"sequence_number":     entry.SequenceNumber,
			"consensus_timestamp": entry.ConsensusTimestamp,
		}

		return mcp.NewToolResultText(fmt.Sprintf("Latest entry on topic %s:\n\n%+v", topicID, result)), nil
	})
}

// registerListMessagesTool creates a tool for listing a topic's chat records
func (s *MCPServer) registerListMessagesTool() {
	tool := mcp.NewTool("list_messages",
		mcp.WithDescription("List the decoded chat messages recorded on a topic feed"),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("ID of the topic feed")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of messages to return (newest kept)")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		topicID, err := request.RequireString("topic_id")
		if err != nil {
			return errorResult(NewMissingFieldError("list_messages", "topic_id")), nil
		}

		resp, err := s.topicSvc.GetMessages(ctx, topicID)
		if err != nil {
			return errorResult(NewUpstreamError("list_messages", "mirror node")), nil
		}

		messages := resp.Messages
		if limit := int(toInt64(args["limit"])); limit > 0 && limit < len(messages) {
			messages = messages[len(messages)-limit:]
		}

		result := map[string]interface{}{
			"messages":    messages,
			"total_count": len(messages),
		}

		return mcp.NewToolResultText(fmt.Sprintf("Found %d messages:\n\n%+v", len(messages), result)), nil
	})
}

// registerSendChatMessageTool creates a tool for a quota-gated chat turn
func (s *MCPServer) registerSendChatMessageTool() {
	tool := mcp.NewTool("send_chat_message",
		mcp.WithDescription("Send a question to the AI assistant and record the turn on the topic feed. Fails when the message allowance is exhausted."),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("ID of the topic feed")),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question to ask")),
		mcp.WithString("user_id", mcp.Description("Identifier of the asking user")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fields, verr := requiredStrings("send_chat_message", args, "topic_id", "question")
		if verr != nil {
			return errorResult(verr), nil
		}
		topicID := fields["topic_id"]

		turn, err := s.chatSvc.SendMessage(ctx, topicID, fields["question"], toString(args["user_id"]))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrQuotaExhausted):
				return errorResult(NewQuotaExhaustedError("send_chat_message", topicID)), nil
			case errors.Is(err, topic.ErrProjectNotFound):
				return errorResult(NewProjectNotFoundError("send_chat_message", topicID)), nil
			default:
				return errorResult(NewUpstreamError("send_chat_message", "ledger gateway")), nil
			}
		}

		result := map[string]interface{}{
			"answer":             turn.Answer,
			"remaining_messages": turn.RemainingMessages,
			"record_id":          turn.ID,
		}

		return mcp.NewToolResultText(fmt.Sprintf("Chat turn recorded:\n\n%+v", result)), nil
	})
}

// registerCreateProjectTool creates a tool for appending a project creation record
func (s *MCPServer) registerCreateProjectTool() {
	tool := mcp.NewTool("create_project",
		mcp.WithDescription("Append a project creation record to a topic feed, seeding its chat allowance"),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("ID of the topic feed")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
		mcp.WithNumber("chat_count", mcp.Description("Initial chat allowance for the project")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fields, verr := requiredStrings("create_project", args, "topic_id", "name")
		if verr != nil {
			return errorResult(verr), nil
		}

		req := models.CreateProjectRequest{TopicID: fields["topic_id"], Name: fields["name"]}
		if count := int(toInt64(args["chat_count"])); count > 0 {
			req.ChatCount = &count
		}

		receipt, err := s.topicSvc.RecordProject(ctx, req)
		if err != nil {
			return errorResult(NewUpstreamError("create_project", "ledger gateway")), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Project recorded:\n\n%+v", receipt)), nil
	})
}

// registerMintLicenseTool creates a tool for minting a license NFT
func (s *MCPServer) registerMintLicenseTool() {
	tool := mcp.NewTool("mint_license",
		mcp.WithDescription("Mint a license NFT for a project and record it on the topic feed"),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("ID of the topic feed")),
		mcp.WithString("account_id", mcp.Required(), mcp.Description("Ledger account receiving the license")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("ID of the licensed project")),
		mcp.WithString("metadata_uri", mcp.Description("Optional metadata URI for the token")),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		fields, verr := requiredStrings("mint_license", args, "topic_id", "account_id", "project_id")
		if verr != nil {
			return errorResult(verr), nil
		}

		license, err := s.licenseSvc.MintLicense(ctx, models.MintLicenseRequest{
			TopicID:     fields["topic_id"],
			AccountID:   fields["account_id"],
			ProjectID:   fields["project_id"],
			MetadataURI: toString(args["metadata_uri"]),
		})
		if err != nil {
			return errorResult(NewUpstreamError("mint_license", "ledger gateway")), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("License minted:\n\n%+v", license)), nil
	})
}

// errorResult renders an error for the tool response, carrying the code and
// HTTP status so agent callers can branch without parsing prose. Errors
// outside the taxonomy are reported as internal.
func errorResult(err error) *mcp.CallToolResult {
	if _, ok := IsToolError(err); !ok {
		if _, isValidation := err.(*ValidationError); !isValidation {
			err = NewInternalError("", err.Error())
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s (HTTP %d)", err.Error(), GetHTTPStatusFromError(err)))
}

// requiredStrings pulls required string arguments, collecting every missing
// or blank one into a single validation error.
func requiredStrings(tool string, args map[string]interface{}, names ...string) (map[string]string, *ValidationError) {
	verr := NewValidationError(tool, "Missing required parameters")
	out := make(map[string]string, len(names))
	for _, name := range names {
		val, ok := args[name].(string)
		if !ok || strings.TrimSpace(val) == "" {
			verr.AddFieldError(name, args[name], "Required string parameter", true)
			continue
		}
		out[name] = val
	}
	if verr.HasErrors() {
		return nil, verr
	}
	return out, nil
}

// Helper function to convert interface{} to string
func toString(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// Helper function to convert interface{} to int64
func toInt64(val interface{}) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

package controller

import "errors"

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrGetSessions        = errors.New("failed to get chat sessions")
	ErrSessionNotFound    = errors.New("session not found")
	ErrGetSessionMessages = errors.New("failed to get session messages")
	ErrDeleteSession      = errors.New("failed to delete a chat session")
	ErrExportSession      = errors.New("failed to export a chat session")

	ErrCreateMCPServer   = errors.New("failed to create mcp server")
	ErrGetMCPServers     = errors.New("failed to get mcp servers")
	ErrMCPServerNotFound = errors.New("mcp server not found")
	ErrUpdateMCPServer   = errors.New("failed to update mcp server")
	ErrDeleteMCPServer   = errors.New("failed to delete mcp server")
	ErrRefreshMCPTools   = errors.New("failed to refresh mcp tools")
	ErrGetMCPTools       = errors.New("failed to get mcp tools")

	ErrUpgradeConnection = errors.New("failed to upgrade connection")
)

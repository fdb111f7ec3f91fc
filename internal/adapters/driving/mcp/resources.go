package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for fixpath resources.
	uriScheme = "fixpath://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stores",
		Name:        "stores",
		Description: "Repair documentation stores built by analyses and manual uploads",
		MIMEType:    "application/json",
	}, s.handleStoresResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "stores/{storeId}",
		Name:        "store",
		Description: "Metadata of a single store",
		MIMEType:    "application/json",
	}, s.handleStoreResource)
}

// handleStoresResource returns every store, newest first.
func (s *Server) handleStoresResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Retrieval == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	stores, err := s.ports.Retrieval.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	if stores == nil {
		stores = []domain.Store{}
	}

	data, err := json.MarshalIndent(stores, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stores: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleStoreResource returns a single store's metadata.
func (s *Server) handleStoreResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Retrieval == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// fixpath://stores/{storeId}
	storeID := extractStoreID(req.Params.URI)
	if storeID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stores, err := s.ports.Retrieval.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	for i := range stores {
		if stores[i].ID != storeID {
			continue
		}
		data, err := json.MarshalIndent(stores[i], "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshalling store: %w", err)
		}
		return jsonResult(req.Params.URI, string(data)), nil
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractStoreID extracts the store ID from a URI like fixpath://stores/{storeId}.
func extractStoreID(uri string) string {
	const prefix = uriScheme + "stores/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

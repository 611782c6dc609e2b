package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/reviewkit/core/protocol"
	"github.com/tailored-agentic-units/reviewkit/tools"
)

// InvokeResult is the decoded InvokeTool response.
type InvokeResult struct {
	tools.Result
	InvocationID string `json:"invocation_id"`
}

// Client calls a remote ToolService.
type Client struct {
	list   *connect.Client[structpb.Struct, structpb.Struct]
	invoke *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient targets the server at baseURL. A nil httpClient uses
// http.DefaultClient.
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		list:   connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+ListToolsProcedure),
		invoke: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+InvokeToolProcedure),
	}
}

// ListTools returns the remote tool definitions.
func (c *Client) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	resp, err := c.list.CallUnary(ctx, connect.NewRequest(&structpb.Struct{}))
	if err != nil {
		return nil, err
	}

	b, err := resp.Msg.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}

	var out struct {
		Tools []protocol.Tool `json:"tools"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	return out.Tools, nil
}

// InvokeTool calls the named tool with JSON arguments. Empty args are sent
// as an empty object.
func (c *Client) InvokeTool(ctx context.Context, name string, args json.RawMessage) (InvokeResult, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	argStruct := &structpb.Struct{}
	if err := argStruct.UnmarshalJSON(args); err != nil {
		return InvokeResult{}, fmt.Errorf("arguments must be a JSON object: %w", err)
	}

	msg := &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":      structpb.NewStringValue(name),
		"arguments": structpb.NewStructValue(argStruct),
	}}

	resp, err := c.invoke.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return InvokeResult{}, err
	}

	fields := resp.Msg.GetFields()
	return InvokeResult{
		Result: tools.Result{
			Content: fields["content"].GetStringValue(),
			IsError: fields["is_error"].GetBoolValue(),
		},
		InvocationID: fields["invocation_id"].GetStringValue(),
	}, nil
}

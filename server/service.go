package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/reviewkit/observability"
	"github.com/tailored-agentic-units/reviewkit/tools"
)

// ToolService procedures. Messages are google.protobuf.Struct values, so no
// generated code is needed on either side.
const (
	ServiceName         = "reviewkit.v1.ToolService"
	ListToolsProcedure  = "/" + ServiceName + "/ListTools"
	InvokeToolProcedure = "/" + ServiceName + "/InvokeTool"
)

// InvocationIDHeader carries the id assigned to each InvokeTool call.
const InvocationIDHeader = "X-Invocation-Id"

type toolService struct {
	registry *tools.Registry
	observer observability.Observer
}

func (s *toolService) handlers() map[string]http.Handler {
	return map[string]http.Handler{
		ListToolsProcedure:  connect.NewUnaryHandler(ListToolsProcedure, s.listTools),
		InvokeToolProcedure: connect.NewUnaryHandler(InvokeToolProcedure, s.invokeTool),
	}
}

// listTools responds with {"tools": [{name, description, parameters}, ...]}.
func (s *toolService) listTools(_ context.Context, _ *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	b, err := json.Marshal(map[string]any{"tools": s.registry.List()})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("encode tools: %w", err))
	}

	msg := &structpb.Struct{}
	if err := msg.UnmarshalJSON(b); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("encode tools: %w", err))
	}
	return connect.NewResponse(msg), nil
}

// invokeTool expects {"name": string, "arguments": object|string} and
// responds with {"content", "is_error", "invocation_id"}.
func (s *toolService) invokeTool(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	name := req.Msg.GetFields()["name"].GetStringValue()
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name is required"))
	}

	args, err := rawArguments(req.Msg.GetFields()["arguments"])
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	id := uuid.NewString()
	ctx = observability.WithInvocationID(ctx, id)

	observability.Emit(ctx, s.observer, observability.Event{
		Type:   EventInvoke,
		Level:  observability.LevelInfo,
		Source: "server.ToolService",
		Data:   map[string]any{"name": name, "peer": req.Peer().Addr},
	})

	result, err := s.registry.Execute(ctx, name, args)
	if err != nil {
		return nil, toConnectError(err)
	}

	msg, err := structpb.NewStruct(map[string]any{
		"content":       result.Content,
		"is_error":      result.IsError,
		"invocation_id": id,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := connect.NewResponse(msg)
	resp.Header().Set(InvocationIDHeader, id)
	return resp, nil
}

func rawArguments(v *structpb.Value) (json.RawMessage, error) {
	switch kind := v.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return json.RawMessage(`{}`), nil
	case *structpb.Value_StringValue:
		return json.RawMessage(kind.StringValue), nil
	case *structpb.Value_StructValue:
		b, err := kind.StructValue.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode arguments: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("arguments must be an object or a JSON string")
	}
}

func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, tools.ErrInvalidArguments):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, tools.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

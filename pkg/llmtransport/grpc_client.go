package llmtransport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/codeready-toolchain/aav3/pkg/aaverr"
)

// generateMethod is the fully-qualified RPC name dialed on the LLM
// service. The service itself lives outside this module; only the wire
// shape (generateRequest/generateChunk, JSON-encoded) is owned here.
const generateMethod = "/aav3.llm.v1.LLMService/Generate"

var generateStreamDesc = &grpc.StreamDesc{
	StreamName:    "Generate",
	ServerStreams: true,
}

// GRPCLLMClient is the production LLMClient: a server-streaming gRPC call
// to a locally-reachable LLM gateway, grounded on the
// grpc.NewClient-plus-insecure-credentials dial pattern
// (pkg/llm/client.go), generalized to a pluggable JSON encoding.Codec in
// place of the generated protobuf messages a full vendor SDK would use.
type GRPCLLMClient struct {
	conn      *grpc.ClientConn
	model     string
	maxTokens int
}

// NewGRPCLLMClient dials addr and returns a ready client. maxTokens is the
// default applied when a Call does not override it with WithMaxTokens; a
// non-positive value falls back to defaultMaxTokens.
func NewGRPCLLMClient(addr, model string, maxTokens int) (*GRPCLLMClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, aaverr.New(aaverr.KindLLMTransport, "", fmt.Sprintf("dial llm service at %s", addr), err)
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &GRPCLLMClient{conn: conn, model: model, maxTokens: maxTokens}, nil
}

// Call implements LLMClient.
func (c *GRPCLLMClient) Call(ctx context.Context, systemPrompt, userPrompt string, timeout time.Duration, opts ...CallOption) (string, error) {
	cfg := resolveCallConfig(c.maxTokens, opts)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stream, err := c.conn.NewStream(cctx, generateStreamDesc, generateMethod, grpc.CallContentSubtype(jsonCodecName))
	if err != nil {
		return "", classifyErr(err)
	}

	req := &generateRequest{
		Model:        c.model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    cfg.maxTokens,
	}
	if err := stream.SendMsg(req); err != nil {
		return "", classifyErr(err)
	}
	if err := stream.CloseSend(); err != nil {
		return "", classifyErr(err)
	}

	var out strings.Builder
	for {
		var chunk generateChunk
		err := stream.RecvMsg(&chunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", classifyErr(err)
		}
		if chunk.Error != "" {
			return "", aaverr.New(aaverr.KindLLMTransport, "", "llm service reported an error: "+chunk.Error, nil)
		}
		out.WriteString(chunk.Content)
		if chunk.Done {
			break
		}
	}

	return strings.TrimSpace(out.String()), nil
}

// Close implements LLMClient.
func (c *GRPCLLMClient) Close() error {
	return c.conn.Close()
}

// classifyErr maps a gRPC status code to the aaverr.ErrorKind the
// Orchestrator's retry policy switches on (spec.md §7).
func classifyErr(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return aaverr.New(aaverr.KindLLMTransport, "", "llm transport error", err)
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return aaverr.New(aaverr.KindLLMTimeout, "", "llm call timed out", err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return aaverr.New(aaverr.KindLLMAuth, "", "llm call rejected on auth", err)
	case codes.Canceled:
		return aaverr.New(aaverr.KindCancelled, "", "llm call cancelled", err)
	default:
		return aaverr.New(aaverr.KindLLMTransport, "", "llm transport error: "+st.Message(), err)
	}
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/outcome"
)

// The outcome service speaks google.protobuf.Struct in both directions:
//
//	request:  {"issue_id": 144}
//	response: {"outcomes": [{"census": {"0": 1.5}, "policies": {"No Internet": "adds"}}]}
const (
	outcomeServiceName = "censusmax.OutcomeService"
	getOutcomesMethod  = "/" + outcomeServiceName + "/GetOutcomes"
)

// #region client
type outcomeServiceClient interface {
	GetOutcomes(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type grpcOutcomeClient struct {
	cc grpc.ClientConnInterface
}

func (c *grpcOutcomeClient) GetOutcomes(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getOutcomesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GRPCProvider fetches predictions from a remote outcome service.
type GRPCProvider struct {
	conn   *grpc.ClientConn
	client outcomeServiceClient
}

// NewGRPCProvider connects to the outcome service at addr. Extra dial options
// are appended after the default insecure transport credentials.
func NewGRPCProvider(addr string, opts ...grpc.DialOption) (*GRPCProvider, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCProvider{
		conn:   conn,
		client: &grpcOutcomeClient{cc: conn},
	}, nil
}

// NewGRPCProviderWithService wraps an injected service client.
// Used for testing without a real connection.
func NewGRPCProviderWithService(svc outcomeServiceClient) *GRPCProvider {
	return &GRPCProvider{client: svc}
}

// Close shuts down the connection.
func (p *GRPCProvider) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// Outcomes implements Provider. A NotFound status maps to ErrNoData.
func (p *GRPCProvider) Outcomes(ctx context.Context, issueID int) ([]outcome.Outcome, error) {
	req, err := structpb.NewStruct(map[string]any{"issue_id": issueID})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := p.client.GetOutcomes(ctx, req)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("issue %d: %w", issueID, ErrNoData)
		}
		return nil, fmt.Errorf("get outcomes rpc: %w", err)
	}
	outs, err := decodeOutcomes(resp)
	if err != nil {
		return nil, fmt.Errorf("issue %d: %w", issueID, err)
	}
	if len(outs) == 0 {
		return nil, fmt.Errorf("issue %d: %w", issueID, ErrNoData)
	}
	return outs, nil
}

// #endregion client

// #region server
// OutcomeServer is the server API of the outcome service.
type OutcomeServer interface {
	GetOutcomes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// ProviderServer exposes any Provider over gRPC.
type ProviderServer struct {
	Provider Provider
}

// GetOutcomes implements OutcomeServer.
func (s *ProviderServer) GetOutcomes(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	v, ok := in.GetFields()["issue_id"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "issue_id is required")
	}
	issueID := int(v.GetNumberValue())
	outs, err := s.Provider.Outcomes(ctx, issueID)
	if errors.Is(err, ErrNoData) {
		return nil, status.Errorf(codes.NotFound, "no outcomes for issue %d", issueID)
	}
	if err != nil {
		log.Printf("[OUTCOMES] issue %d: %v", issueID, err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return encodeOutcomes(outs)
}

// RegisterOutcomeServer registers srv on s.
func RegisterOutcomeServer(s grpc.ServiceRegistrar, srv OutcomeServer) {
	s.RegisterService(&outcomeServiceDesc, srv)
}

var outcomeServiceDesc = grpc.ServiceDesc{
	ServiceName: outcomeServiceName,
	HandlerType: (*OutcomeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOutcomes", Handler: getOutcomesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "censusmax/outcomes.proto",
}

func getOutcomesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OutcomeServer).GetOutcomes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getOutcomesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OutcomeServer).GetOutcomes(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion server

// #region codec
func encodeOutcomes(outs []outcome.Outcome) (*structpb.Struct, error) {
	list := make([]any, 0, len(outs))
	for _, o := range outs {
		c := make(map[string]any, len(o.Census))
		for d, v := range o.Census {
			c[strconv.Itoa(int(d))] = v
		}
		p := make(map[string]any, len(o.Policies))
		for name, change := range o.Policies {
			p[name] = change.String()
		}
		list = append(list, map[string]any{"census": c, "policies": p})
	}
	resp, err := structpb.NewStruct(map[string]any{"outcomes": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode outcomes: %v", err)
	}
	return resp, nil
}

func decodeOutcomes(resp *structpb.Struct) ([]outcome.Outcome, error) {
	values := resp.GetFields()["outcomes"].GetListValue().GetValues()
	outs := make([]outcome.Outcome, 0, len(values))
	for i, v := range values {
		row := v.GetStructValue()
		o := outcome.New()
		for key, val := range row.GetFields()["census"].GetStructValue().GetFields() {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("decode outcome %d: census key %q: %w", i, key, err)
			}
			if _, ok := val.GetKind().(*structpb.Value_NumberValue); !ok {
				return nil, fmt.Errorf("decode outcome %d: census %q is not a number", i, key)
			}
			o.Census[census.Dimension(id)] = val.GetNumberValue()
		}
		for name, val := range row.GetFields()["policies"].GetStructValue().GetFields() {
			if _, ok := val.GetKind().(*structpb.Value_StringValue); !ok {
				return nil, fmt.Errorf("decode outcome %d: policy %q is not a string", i, name)
			}
			change, err := outcome.ParsePolicyChange(val.GetStringValue())
			if err != nil {
				return nil, fmt.Errorf("decode outcome %d: %w", i, err)
			}
			o.Policies[name] = change
		}
		outs = append(outs, o)
	}
	return outs, nil
}

// #endregion codec

package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/service"
)

// JSONCodecName is the content-subtype the OrderQuery service is spoken in.
const JSONCodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type GetOrderRequest struct {
	ID string `json:"id"`
}

type ListTransactionsRequest struct {
	ItemID string `json:"itemId"`
}

type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type OrderQueryServer interface {
	GetOrder(ctx context.Context, req *GetOrderRequest) (*domain.OrderView, error)
	ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error)
}

const (
	orderQueryService          = "shop.v1.OrderQuery"
	orderQueryGetOrder         = "/" + orderQueryService + "/GetOrder"
	orderQueryListTransactions = "/" + orderQueryService + "/ListTransactions"
)

var OrderQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: orderQueryService,
	HandlerType: (*OrderQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "ListTransactions", Handler: listTransactionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/v1/order_query",
}

func RegisterOrderQueryServer(s grpc.ServiceRegistrar, srv OrderQueryServer) {
	s.RegisterService(&OrderQueryServiceDesc, srv)
}

func getOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderQueryServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: orderQueryGetOrder}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderQueryServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listTransactionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListTransactionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderQueryServer).ListTransactions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: orderQueryListTransactions}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderQueryServer).ListTransactions(ctx, req.(*ListTransactionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type GRPCHandler struct {
	orders OrderService
	ledger LedgerService
	logger logrus.FieldLogger
}

func NewGRPCHandler(orders OrderService, ledger LedgerService, logger logrus.FieldLogger) *GRPCHandler {
	return &GRPCHandler{orders: orders, ledger: ledger, logger: logger}
}

func (h *GRPCHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*domain.OrderView, error) {
	view, err := h.orders.GetOrderView(ctx, req.ID)
	if err != nil {
		h.logger.WithError(err).WithField("order_id", req.ID).Error("failed to fetch order")
		return nil, status.Error(codes.Internal, "Failed to fetch order")
	}
	return view, nil
}

func (h *GRPCHandler) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	txs, err := h.ledger.ListTransactions(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, service.ErrMissingItemID) {
			return nil, status.Error(codes.InvalidArgument, "Missing itemId")
		}
		h.logger.WithError(err).WithField("item_id", req.ItemID).Error("failed to fetch transactions")
		return nil, status.Error(codes.Internal, "Failed to fetch transactions")
	}
	return &ListTransactionsResponse{Transactions: txs}, nil
}

// UnaryLogInterceptor logs every unary call with its outcome.
func UnaryLogInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		}).Info("handled rpc")
		return resp, err
	}
}

// OrderQueryClient calls the OrderQuery service over a JSON-coded connection.
type OrderQueryClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderQueryClient(cc grpc.ClientConnInterface) *OrderQueryClient {
	return &OrderQueryClient{cc: cc}
}

func (c *OrderQueryClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*domain.OrderView, error) {
	out := new(domain.OrderView)
	if err := c.cc.Invoke(ctx, orderQueryGetOrder, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderQueryClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	out := new(ListTransactionsResponse)
	if err := c.cc.Invoke(ctx, orderQueryListTransactions, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
}

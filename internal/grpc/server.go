package grpc

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"arithapi/internal/calculator"
	"arithapi/internal/metrics"
	"arithapi/internal/models"
	"arithapi/internal/service"
)

const ServiceName = "arithmetic.Arithmetic"

// Имена методов gRPC для каждой операции
var methodNames = map[calculator.Operation]string{
	calculator.Add:      "Add",
	calculator.Subtract: "Subtract",
	calculator.Multiply: "Multiply",
	calculator.Divide:   "Divide",
}

// FullMethod возвращает полное имя метода, например /arithmetic.Arithmetic/Add
func FullMethod(op calculator.Operation) string {
	return "/" + ServiceName + "/" + methodNames[op]
}

// ArithmeticServer - серверная часть сервиса arithmetic.Arithmetic
type ArithmeticServer interface {
	Evaluate(ctx context.Context, op calculator.Operation, req *json.RawMessage) (*models.ArithmeticResponse, error)
}

// CalculatorServer реализует gRPC сервер для вычисления
type CalculatorServer struct {
	svc     *service.Service
	metrics *metrics.Collector
	log     *zap.SugaredLogger
}

// NewCalculatorServer создает новый экземпляр gRPC сервера
func NewCalculatorServer(svc *service.Service, collector *metrics.Collector, log *zap.SugaredLogger) *CalculatorServer {
	if log == nil {
		log = zap.S()
	}
	return &CalculatorServer{
		svc:     svc,
		metrics: collector,
		log:     log.With("module", "grpc"),
	}
}

// Evaluate выполняет операцию; ошибки ввода возвращаются как InvalidArgument
// с тем же текстом, что и в HTTP-ответе.
func (s *CalculatorServer) Evaluate(ctx context.Context, op calculator.Operation, req *json.RawMessage) (*models.ArithmeticResponse, error) {
	start := time.Now()

	resp, err := s.svc.Evaluate(op, *req)
	s.metrics.Observe(metrics.TransportGRPC, op.String(), service.Outcome(err), time.Since(start))

	if err != nil {
		message := s.svc.Message(err)
		s.log.Infow("Запрос отклонён", "operation", op, "reason", err.Error(), "message", message)
		return nil, status.Error(codes.InvalidArgument, message)
	}

	return &resp, nil
}

func unaryHandler(op calculator.Operation) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(json.RawMessage)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(ArithmeticServer).Evaluate(ctx, op, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(op),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.(ArithmeticServer).Evaluate(ctx, op, req.(*json.RawMessage))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc описывает сервис без сгенерированного кода: сообщения идут через JSON-кодек
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ArithmeticServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodNames[calculator.Add], Handler: unaryHandler(calculator.Add)},
		{MethodName: methodNames[calculator.Subtract], Handler: unaryHandler(calculator.Subtract)},
		{MethodName: methodNames[calculator.Multiply], Handler: unaryHandler(calculator.Multiply)},
		{MethodName: methodNames[calculator.Divide], Handler: unaryHandler(calculator.Divide)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arithmetic",
}

// LoggingInterceptor пишет строку лога на каждый вызов
func LoggingInterceptor(log *zap.SugaredLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Infow("gRPC вызов",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// NewServer создаёт grpc.Server с зарегистрированным сервисом
func NewServer(calc *CalculatorServer, opts ...grpc.ServerOption) *grpc.Server {
	// Настройки для keepalive и размеров сообщений
	defaults := []grpc.ServerOption{
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.MaxRecvMsgSize(1 << 16),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     time.Minute,
			MaxConnectionAge:      5 * time.Minute,
			MaxConnectionAgeGrace: 20 * time.Second,
			Time:                  20 * time.Second,
			Timeout:               10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(calc.log)),
	}

	s := grpc.NewServer(append(defaults, opts...)...)
	s.RegisterService(&ServiceDesc, calc)
	return s
}

// StartServer запускает gRPC сервер на address и блокируется до остановки
func StartServer(address string, s *grpc.Server) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	zap.S().With("module", "grpc").Infof("gRPC сервер запущен на %s", address)
	return s.Serve(lis)
}

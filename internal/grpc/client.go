package grpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"arithapi/internal/calculator"
	"arithapi/internal/models"
)

// CalculatorClient представляет gRPC клиент сервиса arithmetic.Arithmetic
type CalculatorClient struct {
	conn *grpc.ClientConn
}

// NewCalculatorClient создает новый экземпляр gRPC клиента. Дополнительные
// опции добавляются после стандартных (например, dialer для тестов).
func NewCalculatorClient(ctx context.Context, serverAddr string, opts ...grpc.DialOption) (*CalculatorClient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
		grpc.WithBlock(),
	}

	conn, err := grpc.DialContext(ctx, serverAddr, append(defaults, opts...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", serverAddr)
	}

	return &CalculatorClient{conn: conn}, nil
}

// Close закрывает соединение с сервером
func (c *CalculatorClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Calculate вызывает операцию с двумя числовыми операндами
func (c *CalculatorClient) Calculate(ctx context.Context, op calculator.Operation, num1, num2 calculator.Number) (*models.ArithmeticResponse, error) {
	body, err := json.Marshal(models.ArithmeticRequest{Num1: num1, Num2: num2})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}
	return c.CalculateRaw(ctx, op, body)
}

// CalculateRaw отправляет тело запроса как есть; проверку выполняет сервер
func (c *CalculatorClient) CalculateRaw(ctx context.Context, op calculator.Operation, body json.RawMessage) (*models.ArithmeticResponse, error) {
	if !op.Valid() {
		return nil, errors.Wrapf(calculator.ErrUnknownOperation, "%q", string(op))
	}

	var resp models.ArithmeticResponse
	if err := c.conn.Invoke(ctx, FullMethod(op), &body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

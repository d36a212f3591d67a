package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc/status"

	"arithapi/internal/calculator"
	"arithapi/internal/grpc"
)

// Использование: client [--addr host:port] <add|subtract|multiply|divide> <num1> <num2>
func main() {
	fs := pflag.NewFlagSet("client", pflag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:5001", "gRPC server address")
	timeout := fs.Duration("timeout", 5*time.Second, "call timeout")
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: client [--addr host:port] <add|subtract|multiply|divide> <num1> <num2>")
		os.Exit(2)
	}

	op, err := calculator.ParseOperation(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Неизвестная операция: %v\n", err)
		os.Exit(2)
	}

	// Операнды передаются как JSON-литералы: 10, 2.5, "3"
	body, err := json.Marshal(map[string]json.RawMessage{
		"num1": json.RawMessage(args[1]),
		"num2": json.RawMessage(args[2]),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Операнды должны быть JSON-значениями: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := grpc.NewCalculatorClient(ctx, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Не удалось подключиться к %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer client.Close()

	resp, err := client.CalculateRaw(ctx, op, body)
	if err != nil {
		out, _ := json.Marshal(map[string]string{"error": status.Convert(err).Message()})
		fmt.Println(string(out))
		os.Exit(1)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка сериализации ответа: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

package main

import (
	"context"

	"github.com/evensen/daybook/internal/cli"
)

func main() {
	ctx := context.Background()
	cli.Main(ctx)
}

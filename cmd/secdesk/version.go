package main

import (
	"context"
	"fmt"

	"github.com/secdesk/secdesk"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(secdesk.Version)
	return nil
}

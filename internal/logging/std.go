package logging

import (
	"context"
	"fmt"
	"strings"
)

type printAdapter struct {
	log Logger
}

// StdLogger adapts a Logger to the Print-style interface expected by
// request-logging middleware. Lines are emitted at info level.
func StdLogger(log Logger) interface{ Print(v ...any) } {
	return printAdapter{log: log}
}

func (p printAdapter) Print(v ...any) {
	p.log.Info(context.Background(), strings.TrimSpace(fmt.Sprint(v...)))
}

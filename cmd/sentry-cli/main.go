package main

import (
	"sentry-itest/cmd/sentry-cli/commands"
	"sentry-itest/lib/osutil"
)

func main() {
	ctx, stop := osutil.SignalContext()
	defer stop()
	commands.ExecuteContext(ctx)
}

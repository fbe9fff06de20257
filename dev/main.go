package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	devenv "sentry-itest/dev/env"
)

const sentryConfigTemplate = `{
	// the dashboard the live tests log into
	base_url: "http://localhost:9500",
	username: "admin",
	password: "admin",
	// a project that already exists on the dashboard
	project_slug: "default",
	project_id: "1",
}
`

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	path, err := devenv.ResolvePath("<dev_state>/" + devenv.SentryTestConfigFile)
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("sentry config already exists at", path)
		return nil
	}

	fmt.Println("writing sentry config to", path)
	return os.WriteFile(path, []byte(sentryConfigTemplate), 0600)
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/venta-admin/internal/cli"
	"github.com/jrsteele09/venta-admin/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			exitCode = cli.ExitError
		}
	}()

	c := config.New()
	if len(args) == 0 || args[0] == "login" {
		displayAppname(c.GetAppName())
	}

	app, err := cli.NewApp(c)
	if err != nil {
		log.Printf("Error starting %s: %s\n", c.GetAppName(), err)
		return cli.ExitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx, args)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(os.Stderr, myFigure.String())
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/wippyai/js-runtime/bridge"
	"github.com/wippyai/js-runtime/runtime"
)

func main() {
	var (
		scriptFile  = flag.String("script", "", "Path to a JavaScript file to run")
		expr        = flag.String("e", "", "Expression to evaluate")
		deferred    = flag.Bool("deferred", false, "Use the deferred (job-queued) resolution strategy")
		timeout     = flag.Duration("timeout", 30*time.Second, "Evaluation timeout")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*deferred, *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *scriptFile == "" && *expr == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -script <file.js> [-deferred]")
		fmt.Fprintln(os.Stderr, "       run -e <expression>")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*scriptFile, *expr, *deferred, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scriptFile, expr string, deferred bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rt, err := newRuntime(ctx, deferred)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	src := expr
	if scriptFile != "" {
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		src = string(data)
	}

	v, err := rt.Eval(ctx, src)
	if err != nil {
		return err
	}

	// Promise results are awaited; plain values pass through.
	result, err := rt.Await(ctx, v)
	if err != nil {
		return err
	}
	if result != nil {
		fmt.Printf("%v\n", result)
	}
	return nil
}

func newRuntime(ctx context.Context, deferred bool) (*runtime.Runtime, error) {
	opts := []runtime.Option{}
	if deferred {
		opts = append(opts, runtime.WithStrategy(bridge.Deferred))
	}
	return runtime.New(ctx, opts...)
}

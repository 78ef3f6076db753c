// Command sprint is the detector acquisition process entry point:
// sprint <acq_time_seconds> [-v]
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/behrlich/sprint3/internal/metrics"
	"github.com/behrlich/sprint3/internal/orchestrator"
)

func main() {
	acqTime, verbose, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Println("Error parsing command line arguments!")
		fmt.Println("Should take the form:")
		fmt.Println("sprint <acq_time_seconds> [-v (for verbose)]")
		os.Exit(1)
	}

	fmt.Printf("Acquisition Time Setting = %d s\n", acqTime)
	fmt.Printf("Print statements %s\n", onOff(verbose))

	m := metrics.NewMetrics()

	// SIGUSR1 dumps a metrics snapshot rather than goroutine stacks; there's
	// no blocked-syscall class of bug here worth a stack trace.
	dumpCh := make(chan os.Signal, 1)
	signal.Notify(dumpCh, syscall.SIGUSR1)
	go func() {
		for range dumpCh {
			fmt.Fprintln(os.Stderr, m.Snapshot().String())
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- orchestrator.Run(acqTime, verbose, m) }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		// orchestrator.Run owns the full lifetime of this process; a
		// received signal here means the operator wants out before the
		// acquisition retry loop would otherwise return.
		fmt.Fprintln(os.Stderr, "received shutdown signal")
		os.Exit(0)
	}
}

func parseArgs(args []string) (acqTime int, verbose bool, err error) {
	if len(args) < 1 {
		return 0, false, fmt.Errorf("missing acq_time_seconds")
	}
	acqTime, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, false, err
	}
	verbose = len(args) > 1
	return acqTime, verbose, nil
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

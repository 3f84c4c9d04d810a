// Command lwe-estimate reports the bit security of an LWE parameter set.
//
//	lwe-estimate 1024 12289 --s-dist '{"name": "Binary"}' \
//	    --e-dist '{"name": "DiscreteGaussian", "stddev": 3.2}' --m 100000 --exact
//
// The attack-cost search is done by the Sage lattice-estimator, which must
// be installed (or checked out under --estimator-path). Every flag can also
// be set through the environment as LWE_ESTIMATE_<FLAG>, e.g.
// LWE_ESTIMATE_ESTIMATOR_PATH, and from a .env file in the working directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
)

const progName = "lwe-estimate"

var log = logging.MustGetLogger(progName)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, newSageEstimator)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, newEstimator estimatorFactory) int {
	cmd := newRootCmd(stdout, stderr, newEstimator)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func startLogging(w io.Writer, verbose bool) {
	backend := logging.NewLogBackend(w, progName+": ", 0)
	formatter := logging.MustStringFormatter("%{level:-8s} %{module:-14s} | %{message}")
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, formatter))
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.WARNING, "")
	}
	logging.SetBackend(leveled)
}

// Command enrolscan scores district enrolment risk from CSV extracts and
// renders report artifacts.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/enrolscan/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands render their own coded error output before returning an
	// ExitError; anything else (usage mistakes, unknown flags) has not
	// been printed yet.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}

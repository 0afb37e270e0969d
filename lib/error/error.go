/*package error contains simple functions for reporting fatal bhforce errors.
Both functions log through logrus and exit with a non-zero status, so that a
batch scheduler running bhforce sees the failure.
*/
package error

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// ExitCode is the status bhforce exits with after a fatal error.
const ExitCode = 1

// exit is swapped out by tests.
var exit = os.Exit

// External reports an error and kills the program. It should be used when an
// error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as the
// standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	log.Errorf("bhforce exited early with the following error:\n"+format, a...)
	exit(ExitCode)
}

// Internal reports an error along with a stack trace and kills the program.
// It should be used when the error requires a code dive to fix. It has the
// same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	log.WithField("stack", string(debug.Stack())).Errorf(
		"bhforce exited early with the following internal error:\n%s",
		fmt.Sprintf(format, a...),
	)
	exit(ExitCode)
}

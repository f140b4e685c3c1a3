package control

import (
	"os"
	"time"
)

// terminateProcess exits the process shortly after the kill response
// has had a chance to flush.
func terminateProcess() {
	time.Sleep(100 * time.Millisecond)
	os.Exit(0)
}

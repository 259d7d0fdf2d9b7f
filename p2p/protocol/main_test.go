package protocol

import (
	"io"
	"os"
	"testing"

	"github.com/hacash/node/log"
)

func TestMain(m *testing.M) {
	// Comment out below to see log output while testing
	log.Global.SetOutput(io.Discard)
	os.Exit(m.Run())
}

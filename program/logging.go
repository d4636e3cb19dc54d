package program

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("memo-program", "github.com/unive3sal/memo/program")

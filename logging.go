package memo

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("memo", "github.com/unive3sal/memo")

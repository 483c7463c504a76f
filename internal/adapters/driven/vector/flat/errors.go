package flat

import "errors"

var errIndexClosed = errors.New("vector index closed")

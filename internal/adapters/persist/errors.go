package persist

import "errors"

// Sentinel errors for the checkpoint pipeline.
var (
	ErrQueueClosed   = errors.New("record queue is closed")
	ErrCorruptRecord = errors.New("corrupt checkpoint record")
	ErrUnknownField  = errors.New("unknown field in checkpoint record")
)

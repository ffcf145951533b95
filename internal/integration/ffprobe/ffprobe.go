package ffprobe

import "time"

const (
	name = "ffprobe"
	// Network mounts and sleeping drives are slow to answer the first probe.
	timeout = 60 * time.Second
)

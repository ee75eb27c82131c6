package playback

import "errors"

var ErrClosed = errors.New("playback: controller closed")

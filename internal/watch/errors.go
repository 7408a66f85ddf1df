// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package watch

import "fmt"

// ProtocolError is a notification the pipeline cannot process: an envelope
// of the wrong kind, a declared size other than one, a size that disagrees
// with the items present, or an unparseable rating key.
type ProtocolError struct {
	Type   string
	Size   int
	Items  int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s (type=%q size=%d items=%d)", e.Reason, e.Type, e.Size, e.Items)
}

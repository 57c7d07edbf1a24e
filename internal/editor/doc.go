// Package editor implements non-destructive photo editing sessions.
//
// A Session wraps one decoded image buffer. Transform operations mutate
// the buffer in place and return the session so calls chain fluently;
// the first failing operation sticks and every later call is a no-op
// until a terminal (CommitOverwrite, CommitAsNew, Preview) surfaces the
// recorded error. After a terminal the session is finished and rejects
// further operations.
//
// CommitOverwrite re-encodes the buffer into the asset's existing file
// and marks its thumbnail stale; CommitAsNew writes a brand-new private
// asset derived from the source and schedules full reprocessing for it.
// Preview renders a bounded base64 JPEG without persisting anything.
package editor

package server

import "github.com/Advansoftware/m3utostrm/internal/broadcast"

// playlistProgressEvent reports playlist walk progress to subscribers.
func playlistProgressEvent(title string, processed, total int) broadcast.Event {
	return broadcast.Event{
		Type: "playlist_progress",
		Data: map[string]any{
			"title":     title,
			"processed": processed,
			"total":     total,
		},
	}
}

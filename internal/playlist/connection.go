package playlist

import (
	"errors"
	"io"
	"net"
	"strings"

	"github.com/Advansoftware/m3utostrm/internal/utils"
)

// ConnResult reports the outcome of a playlist connection test. Reason is a
// human-readable explanation, set on both success and failure.
type ConnResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

// TestConnection checks that url actually serves playlist-shaped content: the
// response body must open with the playlist header marker. Failures come back
// as a structured result, never as an error.
func TestConnection(url string) ConnResult {
	client := utils.NewHTTPClient(utils.HTTPClientConfig{Timeout: FetchTimeout})
	resp, err := client.Get(url)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ConnResult{Reason: "connection timed out"}
		}
		return ConnResult{Reason: "could not connect to server"}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ConnResult{Reason: "server returned status " + resp.Status}
	}
	// The header marker sits in the first bytes of any valid playlist; no need
	// to pull the whole body.
	head := make([]byte, 1024)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ConnResult{Reason: "error reading response body"}
	}
	if !strings.HasPrefix(strings.TrimSpace(string(head[:n])), HeaderMarker) {
		return ConnResult{Reason: "URL does not serve a valid M3U playlist"}
	}
	return ConnResult{OK: true, Reason: "connection established"}
}

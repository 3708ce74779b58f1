package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

const defaultTimerSeconds = 300

// handleTimer runs the cooking countdown over a websocket. The server ticks
// once a second with the remaining seconds; the client may send "reset" to
// restart, or an integer to add that many seconds. The connection closes when
// the countdown hits zero or the client goes away.
func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	seconds, err := strconv.Atoi(r.URL.Query().Get("seconds"))
	if err != nil || seconds <= 0 {
		seconds = defaultTimerSeconds
	}

	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		slog.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	commands := make(chan string)
	done := make(chan struct{}) // closed by the writer so a pending send can't strand the reader
	go func() {
		defer close(commands)
		for {
			msg, err := wsutil.ReadClientText(conn)
			if err != nil {
				return
			}
			select {
			case commands <- string(msg):
			case <-done:
				return
			}
		}
	}()

	go func() {
		defer conn.Close()
		defer close(done)
		initial := seconds
		remaining := seconds
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case cmd, ok := <-commands:
				if !ok {
					return
				}
				if cmd == "reset" {
					remaining = initial
				} else if n, err := strconv.Atoi(cmd); err == nil && n > 0 {
					remaining += n
				}
			case <-ticker.C:
				remaining--
				if err := wsutil.WriteServerText(conn, []byte(strconv.Itoa(max(remaining, 0)))); err != nil {
					return
				}
				if remaining <= 0 {
					_ = wsutil.WriteServerText(conn, []byte("done"))
					return
				}
			}
		}
	}()
}

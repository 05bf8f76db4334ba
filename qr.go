package main

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// shareURL builds the externally reachable link for a room, preferring
// the configured public URL over whatever host the request came in on.
func shareURL(cfg *Config, scheme, host, code string) string {
	base := strings.TrimSuffix(cfg.publicURL, "/")
	if base == "" {
		base = scheme + "://" + host + cfg.prefix
	}
	return base + "/room/" + code
}

// serveRoomQR renders a PNG QR code of a room's share URL, for handing
// the room to phones across the table.
func serveRoomQR(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")

		if _, ok := reg.getRoom(code); !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(shareURL(cfg, requestScheme(r), r.Host, code), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

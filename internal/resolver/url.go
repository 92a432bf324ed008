package resolver

import (
	"net/url"
	"regexp"
	"strings"
)

// parseLoose parses raw, retrying with an https:// prefix when the scheme
// is missing ("youtu.be/abc").
func parseLoose(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err == nil && (u.Scheme == "" || u.Host == "") {
		if u2, e2 := url.Parse("https://" + raw); e2 == nil {
			u = u2
		}
	}
	if err != nil || u == nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// isYouTubeHost reports whether host belongs to YouTube.
func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i != -1 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be", "youtube-nocookie.com":
		return true
	}
	return false
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// youTubeVideoID returns the video ID a YouTube URL points at. Only watch,
// shorts, embed, v, live and youtu.be links count; home, feed and channel
// pages return false.
func youTubeVideoID(u *url.URL) (string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch {
	case host == "youtu.be":
		id = segs[0]
	case segs[0] == "watch" && len(segs) == 1:
		id = u.Query().Get("v")
	case len(segs) >= 2:
		switch segs[0] {
		case "shorts", "embed", "v", "live":
			id = segs[1]
		}
	}
	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

package webinars

import "regexp"

var (
	youtubePattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/)|youtu\.be/)([A-Za-z0-9_-]+)`)
	vimeoPattern   = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
)

// EmbedURL rewrites YouTube and Vimeo watch-page URLs into their embeddable player form.
// Any other URL is returned unchanged.
func EmbedURL(raw string) string {
	if m := youtubePattern.FindStringSubmatch(raw); m != nil {
		return "https://www.youtube.com/embed/" + m[1] + "?autoplay=0&rel=0"
	}
	if m := vimeoPattern.FindStringSubmatch(raw); m != nil {
		return "https://player.vimeo.com/video/" + m[1] + "?autoplay=0"
	}
	return raw
}

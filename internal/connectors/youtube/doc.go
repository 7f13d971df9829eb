// Package youtube implements the caption provider for YouTube videos.
//
// Track listings and video details come from a single `yt-dlp -J` probe per
// video; caption files are then downloaded over HTTP. All outbound traffic
// shares one token-bucket rate limiter that backs off after 429 responses.
package youtube

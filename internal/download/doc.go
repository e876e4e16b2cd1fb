// Package download fetches source videos onto local disk.
//
// Each platform has its own Downloader: TikTok resolves the share URL into a
// direct media URL through a resolver API and streams the file down; Twitter
// shells out to yt-dlp, which also yields the tweet text as the source
// caption. The Dispatcher picks the downloader for an item's source.
package download

package domain

// Article is a raw (title, url, text) tuple produced by an external
// source before embedding and storage.
type Article struct {
	Title   string
	URL     string
	Content string
}

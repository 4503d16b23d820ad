package model

// ReviewComment is an inline comment ready to be published on a pull request.
// It is built fresh for every run and never persisted.
type ReviewComment struct {
	Path string
	Body string
	Line int // 0 means no line anchor.
}

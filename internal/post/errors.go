package post

import "errors"

var (
	ErrNotFound = errors.New("post not found")

	// ErrForbidden is returned when someone other than the author tries to delete a post.
	ErrForbidden = errors.New("not the owner of this post")

	ErrInvalidPost = errors.New("invalid post")

	// ErrUnknownUploader means the authenticated principal has no user row.
	ErrUnknownUploader = errors.New("uploader not found")
)

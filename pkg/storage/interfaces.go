package storage

import "io"

type StorageService interface {
	Upload(key string, reader io.Reader, contentType string) (string, error)
	Delete(key string) error
	PublicURL(key string) string
}

type ImageService interface {
	UploadFromURL(sourceURL string) (string, error) // returns imageID
	Delete(imageID string) error
	GetPublicURL(imageID string) string
}

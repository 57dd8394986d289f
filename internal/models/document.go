package models

// Document is an uploaded file held in memory for the duration of one ingestion.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

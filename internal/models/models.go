// Package models holds the data passed between pipeline stages.
package models

import (
	"image"
	"time"
)

// Format is the declared format tag of a submitted document
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// SourceDocument is an uploaded document. Data must not be modified once read.
type SourceDocument struct {
	Name   string
	Format Format
	Data   []byte
}

// PhotoImage is a decoded still photo together with its original bytes
type PhotoImage struct {
	Image  image.Image
	Data   []byte
	Format string // "png" or "jpeg"
}

// Ext returns the file extension matching the photo's encoding
func (p *PhotoImage) Ext() string {
	if p.Format == "png" {
		return ".png"
	}
	return ".jpg"
}

// AudioClip is a synthesized speech file owned by one pipeline run
type AudioClip struct {
	Path     string
	Duration time.Duration
}

// GeneratedVideo is an MP4 produced by a video backend
type GeneratedVideo struct {
	Path     string
	HasAudio bool
}

// Request is one generation request; keys address the blob store
type Request struct {
	ID          string `json:"id" yaml:"id"`
	DocumentKey string `json:"document_key" yaml:"document"`
	PhotoKey    string `json:"photo_key" yaml:"photo"`
	Language    string `json:"language,omitempty" yaml:"language"`
}

// VideoRecord is what the record store persists for a finished request
type VideoRecord struct {
	RequestID   string    `json:"request_id" dynamodbav:"requestId"`
	DocumentKey string    `json:"document_key" dynamodbav:"documentKey"`
	PhotoKey    string    `json:"photo_key" dynamodbav:"photoKey"`
	VideoKey    string    `json:"video_key" dynamodbav:"videoKey"`
	Backend     string    `json:"backend" dynamodbav:"backend"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"createdAt"`
}

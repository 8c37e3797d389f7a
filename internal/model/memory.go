// Package model defines the records owned by the store: the settings
// singleton, memories and plans.
package model

import (
	"errors"
	"fmt"
)

// MaxMedia is the most media references a memory may carry.
const MaxMedia = 9

// MemoryType classifies what a memory holds.
type MemoryType string

const (
	MemoryText  MemoryType = "text"
	MemoryVoice MemoryType = "voice"
	MemoryImage MemoryType = "image"
	MemoryMixed MemoryType = "mixed"
)

// ValidMemoryTypes are the allowed memory types.
var ValidMemoryTypes = map[MemoryType]bool{
	MemoryText:  true,
	MemoryVoice: true,
	MemoryImage: true,
	MemoryMixed: true,
}

// Memory is one entry of the memory gallery.
type Memory struct {
	ID      string     `json:"id"`
	Date    string     `json:"date"`
	Title   string     `json:"title"`
	Type    MemoryType `json:"type,omitempty"`
	Content string     `json:"content"`
	Images  []string   `json:"images"`
	// MediaURL is the single-media field of older records.
	MediaURL string   `json:"mediaUrl,omitempty"`
	Tags     []string `json:"tags"`
}

// Media returns the memory's media references, falling back to the legacy
// single reference when the list is empty.
func (m *Memory) Media() []string {
	if len(m.Images) > 0 {
		return m.Images
	}
	if m.MediaURL != "" {
		return []string{m.MediaURL}
	}
	return nil
}

// HasMedia reports whether ref is one of the memory's media references.
func (m *Memory) HasMedia(ref string) bool {
	if m.MediaURL == ref {
		return true
	}
	for _, img := range m.Images {
		if img == ref {
			return true
		}
	}
	return false
}

// WithoutMedia returns a copy of m with ref removed from both the list and
// the legacy field. The memory itself survives even when no media is left.
func (m Memory) WithoutMedia(ref string) Memory {
	images := make([]string, 0, len(m.Images))
	for _, img := range m.Images {
		if img != ref {
			images = append(images, img)
		}
	}
	m.Images = images
	if m.MediaURL == ref {
		m.MediaURL = ""
	}
	return m
}

// Validate checks the fields the store relies on.
func (m *Memory) Validate() error {
	if m.ID == "" {
		return errors.New("memory id is required")
	}
	if len(m.Images) > MaxMedia {
		return fmt.Errorf("memory %s has %d media references (max %d)", m.ID, len(m.Images), MaxMedia)
	}
	if m.Type != "" && !ValidMemoryTypes[m.Type] {
		return fmt.Errorf("invalid memory type %q (valid: text, voice, image, mixed)", m.Type)
	}
	return nil
}

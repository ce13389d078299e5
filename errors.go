package main

import (
	"errors"
	"fmt"
)

// Stage names the part of a run that failed
type Stage string

const (
	StagePrecondition Stage = "precondition"
	StageGeneration   Stage = "generation"
	StageParse        Stage = "parse"
	StageRender       Stage = "render"
	StageSitemap      Stage = "sitemap"
	StagePublish      Stage = "publish"
)

// StagedError is implemented by every fatal run error
type StagedError interface {
	error
	Stage() Stage
}

// PreconditionError means the run could not start: missing credential, prompt or template
type PreconditionError struct {
	Message string
	Err     error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PreconditionError) Unwrap() error { return e.Err }
func (e *PreconditionError) Stage() Stage  { return StagePrecondition }

// GenerationError wraps a failed or empty model call
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
func (e *GenerationError) Stage() Stage  { return StageGeneration }

// ParseError keeps the raw model output so it can be inspected after the run
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) Stage() Stage  { return StageParse }

// OutputConflictError refuses to overwrite an already published article
type OutputConflictError struct {
	Path string
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("article already exists at %s", e.Path)
}

func (e *OutputConflictError) Stage() Stage { return StageRender }

// SitemapError means the existing sitemap cannot be safely extended
type SitemapError struct {
	Path string
	Err  error
}

func (e *SitemapError) Error() string {
	return fmt.Sprintf("sitemap %s: %v", e.Path, e.Err)
}

func (e *SitemapError) Unwrap() error { return e.Err }
func (e *SitemapError) Stage() Stage  { return StageSitemap }

// PublishError is a failed write; Restored reports whether earlier writes were rolled back
type PublishError struct {
	Path     string
	Restored bool
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("writing %s (rolled back: %t): %v", e.Path, e.Restored, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
func (e *PublishError) Stage() Stage  { return StagePublish }

// StageOf returns the failing stage of err, or "" when err is not a run error
func StageOf(err error) Stage {
	var se StagedError
	if errors.As(err, &se) {
		return se.Stage()
	}
	return ""
}

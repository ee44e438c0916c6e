package models

import "errors"

// Sentinel errors shared across the ingestion pipeline. Handlers map these
// to client-facing statuses; anything else is a server-side failure.
var (
	// ErrCameraNotFound is returned when an event references a camera
	// that does not exist in the relational store.
	ErrCameraNotFound = errors.New("camera not found")

	// ErrImageDecode is returned when an uploaded payload cannot be
	// decoded into a pixel grid.
	ErrImageDecode = errors.New("cannot decode image")
)

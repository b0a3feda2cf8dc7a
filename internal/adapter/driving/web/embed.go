package web

import "embed"

// StaticFS holds the form's client-side validation script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS

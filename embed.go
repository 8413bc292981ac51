package place2b

import "embed"

// StaticAssets contains the stylesheet served under /static/.
//
//go:embed static/*
var StaticAssets embed.FS

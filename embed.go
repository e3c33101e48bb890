package clubsite

import (
	"embed"
	"io/fs"
)

// EmbeddedAssets holds the stylesheet and icon served under /public/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func embeddedAssets() fs.FS {
	sub, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		panic(err)
	}
	return sub
}

func assetNames() []string {
	entries, err := fs.ReadDir(EmbeddedAssets, "embedded")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
